package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"event-portal-client/models"
	"event-portal-client/utils"

	"github.com/google/uuid"
)

// Error is a non-2xx reply from the platform backend. The message is the
// backend's own wording so direct user actions (login) can surface it
// verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: backend replied %d: %s", e.StatusCode, e.Message)
}

// Client talks to the event-platform REST backend. Everything the portal
// knows about events, sessions and payments comes through here.
type Client struct {
	// baseURL is the base url of the platform backend.
	baseURL string

	// hc is the http client.
	hc *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// Login authenticates an end user. POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return c.login(ctx, "/auth/login", email, password)
}

// AdminLogin authenticates a back-office admin. POST /admin/auth/login.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return c.login(ctx, "/admin/auth/login", email, password)
}

func (c *Client) login(ctx context.Context, path, email, password string) (*models.LoginResponse, error) {
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: json.Marshal: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("login: %v", err)
	}

	var reply models.LoginResponse
	if err := c.do(req, &reply); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if reply.Token == "" {
		return nil, fmt.Errorf("login: empty token in reply")
	}
	return &reply, nil
}

// VerifyAdmin validates an admin bearer token. GET /admin/auth/verify.
func (c *Client) VerifyAdmin(ctx context.Context, token string) (*models.Principal, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("verifyAdmin: %v", err)
	}
	req.Header.Set("Authorization", bearer(token))

	var reply struct {
		Admin *models.Principal `json:"admin"`
	}
	if err := c.do(req, &reply); err != nil {
		return nil, fmt.Errorf("verifyAdmin: %w", err)
	}
	if reply.Admin == nil {
		return nil, fmt.Errorf("verifyAdmin: malformed reply: no admin record")
	}
	reply.Admin.IsAdmin = true
	return reply.Admin, nil
}

// CreateTransaction opens a payment transaction for the given event.
// POST /payment/create. The reply may carry a gateway redirect URL.
func (c *Client) CreateTransaction(ctx context.Context, token, eventID string) (*models.Transaction, error) {
	body, err := json.Marshal(map[string]string{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("createTransaction: json.Marshal: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/payment/create", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("createTransaction: %v", err)
	}
	req.Header.Set("Authorization", bearer(token))
	// The backend de-duplicates double-submits on this key.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var txn models.Transaction
	if err := c.do(req, &txn); err != nil {
		return nil, fmt.Errorf("createTransaction: %w", err)
	}
	return &txn, nil
}

// CheckTransactionStatus returns the authoritative, gateway-synced status.
// GET /payment/status/:orderId.
func (c *Client) CheckTransactionStatus(ctx context.Context, token, orderID string) (*models.Transaction, error) {
	return c.getTransaction(ctx, token, "/payment/status/"+url.PathEscape(orderID), "checkTransactionStatus")
}

// GetTransactionByOrderID returns the last known transaction record without
// forcing a gateway sync. GET /payment/transaction/:orderId.
func (c *Client) GetTransactionByOrderID(ctx context.Context, token, orderID string) (*models.Transaction, error) {
	return c.getTransaction(ctx, token, "/payment/transaction/"+url.PathEscape(orderID), "getTransactionByOrderID")
}

func (c *Client) getTransaction(ctx context.Context, token, path, op string) (*models.Transaction, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	req.Header.Set("Authorization", bearer(token))

	var txn models.Transaction
	if err := c.do(req, &txn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &txn, nil
}

// CancelTransaction requests cancellation. POST /payment/cancel/:orderId.
func (c *Client) CancelTransaction(ctx context.Context, token, orderID string) (*models.Transaction, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/payment/cancel/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("cancelTransaction: %v", err)
	}
	req.Header.Set("Authorization", bearer(token))

	var txn models.Transaction
	if err := c.do(req, &txn); err != nil {
		return nil, fmt.Errorf("cancelTransaction: %w", err)
	}
	return &txn, nil
}

// MyTransactions lists the authenticated user's transactions.
// GET /payment/my-transactions.
func (c *Client) MyTransactions(ctx context.Context, token string) ([]models.Transaction, error) {
	return c.listTransactions(ctx, token, "/payment/my-transactions", "myTransactions")
}

// AdminTransactions lists every transaction. GET /payment/admin/all.
func (c *Client) AdminTransactions(ctx context.Context, token string) ([]models.Transaction, error) {
	return c.listTransactions(ctx, token, "/payment/admin/all", "adminTransactions")
}

func (c *Client) listTransactions(ctx context.Context, token, path, op string) ([]models.Transaction, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	req.Header.Set("Authorization", bearer(token))

	var txns []models.Transaction
	if err := c.do(req, &txns); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return txns, nil
}

// AdminStatistics returns the payment aggregates for the admin dashboard.
// GET /payment/admin/statistics.
func (c *Client) AdminStatistics(ctx context.Context, token string) (*models.PaymentStatistics, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/payment/admin/statistics", nil)
	if err != nil {
		return nil, fmt.Errorf("adminStatistics: %v", err)
	}
	req.Header.Set("Authorization", bearer(token))

	var stats models.PaymentStatistics
	if err := c.do(req, &stats); err != nil {
		return nil, fmt.Errorf("adminStatistics: %w", err)
	}
	return &stats, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	}
	if err != nil {
		return nil, fmt.Errorf("http.NewReq: %v", err)
	}

	refID, _ := utils.GenerateCode(4)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", refID)
	return req, nil
}

// do executes the request and decodes the JSON reply into out. Non-2xx
// replies become *Error carrying the backend's message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var reply struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&reply)
		msg := reply.Message
		if msg == "" {
			msg = reply.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}
	return nil
}

func bearer(token string) string {
	return "Bearer " + token
}
