package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-portal-client/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClient_Login_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user@example.com", req.Email)

		json.NewEncoder(w).Encode(models.LoginResponse{
			Token: "tok-123",
			User:  &models.Principal{ID: "u1", Name: "User"},
		})
	})

	reply, err := client.Login(context.Background(), "user@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", reply.Token)
	require.NotNil(t, reply.User)
	assert.Equal(t, "u1", reply.User.ID)
}

func TestClient_Login_RejectedMessagePreserved(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Email atau password salah"})
	})

	_, err := client.Login(context.Background(), "user@example.com", "wrong")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Email atau password salah", apiErr.Message)
}

func TestClient_VerifyAdmin(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/auth/verify", r.URL.Path)
		assert.Equal(t, "Bearer admin-tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"admin": map[string]any{"id": "a1", "name": "Admin", "email": "a@example.com"},
		})
	})

	p, err := client.VerifyAdmin(context.Background(), "admin-tok")

	require.NoError(t, err)
	assert.Equal(t, "a1", p.ID)
	assert.True(t, p.IsAdmin)
}

func TestClient_VerifyAdmin_NonOK(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
	})

	_, err := client.VerifyAdmin(context.Background(), "stale")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_VerifyAdmin_MalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	})

	_, err := client.VerifyAdmin(context.Background(), "tok")

	assert.Error(t, err)
}

func TestClient_CreateTransaction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment/create", r.URL.Path)
		assert.Equal(t, "Bearer user-tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "event-1", req["event_id"])

		json.NewEncoder(w).Encode(map[string]any{
			"order_id":       "ORDER123",
			"event_id":       "event-1",
			"payment_status": "pending",
			"redirect_url":   "https://gateway.example.com/pay/ORDER123",
		})
	})

	txn, err := client.CreateTransaction(context.Background(), "user-tok", "event-1")

	require.NoError(t, err)
	assert.Equal(t, "ORDER123", txn.OrderID)
	assert.Equal(t, models.PaymentPending, txn.PaymentStatus)
	assert.NotEmpty(t, txn.RedirectURL)
}

func TestClient_TransactionReads_UseDistinctEndpoints(t *testing.T) {
	var paths []string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"order_id":       "ORDER123",
			"payment_status": "paid",
		})
	})

	_, err := client.CheckTransactionStatus(context.Background(), "tok", "ORDER123")
	require.NoError(t, err)
	_, err = client.GetTransactionByOrderID(context.Background(), "tok", "ORDER123")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/payment/status/ORDER123",
		"/payment/transaction/ORDER123",
	}, paths)
}

func TestClient_CancelTransaction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment/cancel/ORDER123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"order_id":       "ORDER123",
			"payment_status": "cancelled",
		})
	})

	txn, err := client.CancelTransaction(context.Background(), "tok", "ORDER123")

	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, txn.PaymentStatus)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second)
	_, err := client.CheckTransactionStatus(context.Background(), "tok", "ORDER123")

	assert.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are not backend rejections")
}
