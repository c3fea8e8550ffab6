package services

import (
	"context"
	"fmt"
	"log/slog"

	"event-portal-client/internal/status"
	"event-portal-client/internal/store"
	"event-portal-client/models"
	"event-portal-client/monitoring"
	"event-portal-client/utils"
)

// PaymentBackend is the slice of the platform backend the payment flow
// needs. *api.Client satisfies it.
type PaymentBackend interface {
	CreateTransaction(ctx context.Context, token, eventID string) (*models.Transaction, error)
	CheckTransactionStatus(ctx context.Context, token, orderID string) (*models.Transaction, error)
	GetTransactionByOrderID(ctx context.Context, token, orderID string) (*models.Transaction, error)
	CancelTransaction(ctx context.Context, token, orderID string) (*models.Transaction, error)
	MyTransactions(ctx context.Context, token string) ([]models.Transaction, error)
}

// TokenSource yields the bearer token for backend calls. *SessionService
// satisfies it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// OutcomeScreen is the gateway return target: the success screen needs the
// up-to-the-second gateway-synced status, the error screen only the last
// known record.
type OutcomeScreen string

const (
	ScreenSuccess OutcomeScreen = "success"
	ScreenError   OutcomeScreen = "error"
)

// Outcome is what an outcome screen renders. Stale means the authoritative
// fetch failed and the transaction (if any) came from the cached snapshot;
// the screen stays in its loading-failed state and never fabricates a
// terminal status.
type Outcome struct {
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Terminal    bool                `json:"terminal"`
	Stale       bool                `json:"stale"`
}

// PaymentService drives a transaction attempt from creation through the
// external gateway redirect to a terminal status. The client holds no
// independent source of truth for paymentStatus: every outcome render is a
// pure read of server-authoritative state, which makes ResolveOutcome
// naturally idempotent.
type PaymentService struct {
	kv      store.KV
	backend PaymentBackend
	tokens  TokenSource

	// breaker guards the gateway-synced status checks.
	breaker *utils.CircuitBreaker
}

func NewPaymentService(kv store.KV, backend PaymentBackend, tokens TokenSource) *PaymentService {
	return &PaymentService{
		kv:      kv,
		backend: backend,
		tokens:  tokens,
		breaker: utils.NewCircuitBreaker("payment-status"),
	}
}

// Checkout creates a transaction for the authenticated user and the given
// event. The snapshot is cached before the caller navigates to the gateway
// so the outcome page can render optimistically after the redirect back.
func (s *PaymentService) Checkout(ctx context.Context, eventID string) (*models.Transaction, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.backend.CreateTransaction(ctx, token, eventID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	s.cache(ctx, txn)
	return txn, nil
}

// ResolveOutcome reconstructs the outcome purely from the order id plus a
// backend read; no in-memory continuity from before the gateway redirect is
// assumed. An empty order id is the malformed/direct-navigation case and is
// reported as ErrMissingOrderID for the handler to translate per screen.
func (s *PaymentService) ResolveOutcome(ctx context.Context, orderID string, screen OutcomeScreen) (*Outcome, error) {
	if orderID == "" {
		return nil, status.ErrMissingOrderID
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var txn *models.Transaction
	fetchErr := s.breaker.Execute(func() error {
		var err error
		if screen == ScreenSuccess {
			txn, err = s.backend.CheckTransactionStatus(ctx, token, orderID)
		} else {
			txn, err = s.backend.GetTransactionByOrderID(ctx, token, orderID)
		}
		return err
	})
	if fetchErr != nil {
		slog.Warn("payment: status fetch failed", "order_id", orderID, "screen", screen, "error", fetchErr)
		monitoring.TrackStatusCheck(string(screen), "failed")
		// Fall back to the cached snapshot for an optimistic render; the
		// error still reaches the handler so a non-fatal notice shows.
		cached := s.cached(ctx, orderID)
		return &Outcome{Transaction: cached, Stale: true}, fmt.Errorf("resolveOutcome: %w", fetchErr)
	}

	monitoring.TrackStatusCheck(string(screen), string(txn.PaymentStatus))
	s.cache(ctx, txn)
	return &Outcome{Transaction: txn, Terminal: txn.PaymentStatus.IsTerminal()}, nil
}

// Cancel requests cancellation; on success the transaction is terminal
// locally and no further polling happens.
func (s *PaymentService) Cancel(ctx context.Context, orderID string) (*models.Transaction, error) {
	if orderID == "" {
		return nil, status.ErrMissingOrderID
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.backend.CancelTransaction(ctx, token, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}

	s.cache(ctx, txn)
	return txn, nil
}

// History lists the authenticated user's transactions.
func (s *PaymentService) History(ctx context.Context) ([]models.Transaction, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.backend.MyTransactions(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return txns, nil
}

// ApplyGatewayNotification refreshes the cached snapshot from an async
// gateway push. Only terminal statuses are applied; the backend read stays
// authoritative for everything the screens render.
func (s *PaymentService) ApplyGatewayNotification(ctx context.Context, orderID string, st models.PaymentStatus) {
	if orderID == "" || !st.IsTerminal() {
		return
	}
	txn := s.cached(ctx, orderID)
	if txn == nil {
		return
	}
	txn.PaymentStatus = st
	s.cache(ctx, txn)
	slog.Info("payment: snapshot updated from gateway notification", "order_id", orderID, "status", st)
}

func (s *PaymentService) cache(ctx context.Context, txn *models.Transaction) {
	if txn == nil || txn.OrderID == "" {
		return
	}
	if err := store.SetJSON(ctx, s.kv, store.KeyTransaction+txn.OrderID, txn); err != nil {
		slog.Warn("payment: snapshot cache failed", "order_id", txn.OrderID, "error", err)
	}
}

func (s *PaymentService) cached(ctx context.Context, orderID string) *models.Transaction {
	var txn models.Transaction
	if err := store.GetJSON(ctx, s.kv, store.KeyTransaction+orderID, &txn); err != nil {
		return nil
	}
	return &txn
}
