package handlers

import (
	"errors"
	"net/http"

	"event-portal-client/internal/status"
	"event-portal-client/models"
	"event-portal-client/services"

	"github.com/labstack/echo/v5"
)

type PaymentHandler struct {
	payments *services.PaymentService
	sessions *services.SessionService
}

func NewPaymentHandler(payments *services.PaymentService, sessions *services.SessionService) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		sessions: sessions,
	}
}

// Checkout - create a transaction and hand the browser to the gateway.
// The snapshot is cached before the redirect so the outcome page can render
// optimistically once the gateway sends the user back.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	var req struct {
		EventID string `json:"event_id"`
	}
	if err := c.Bind(&req); err != nil || req.EventID == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Invalid request"})
	}

	txn, err := h.payments.Checkout(c.Request().Context(), req.EventID)
	if err != nil {
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Could not create transaction"})
	}

	// Already-paid transactions never bounce through the gateway again.
	if txn.RedirectURL != "" && txn.PaymentStatus != models.PaymentPaid {
		return c.Redirect(http.StatusSeeOther, txn.RedirectURL)
	}
	return c.JSON(http.StatusOK, txn)
}

// Success - gateway return target for completed payments. A missing
// order_id is direct navigation: bounce home with a notice instead of
// rendering a bogus outcome.
func (h *PaymentHandler) Success(c echo.Context) error {
	orderID := c.QueryParam("order_id")

	outcome, err := h.payments.ResolveOutcome(c.Request().Context(), orderID, services.ScreenSuccess)
	if err != nil {
		if errors.Is(err, status.ErrMissingOrderID) {
			return c.Redirect(http.StatusSeeOther, "/?notice=missing-payment-reference")
		}
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		// Fetch failure is non-fatal: render the stale snapshot (if any)
		// with a dismissable notice, never a fabricated terminal status.
		return c.JSON(http.StatusOK, map[string]any{
			"outcome": outcome,
			"notice":  "Could not confirm payment status, please retry",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"outcome": outcome})
}

// Error - gateway return target for failed payments. Missing order_id
// renders a generic failure with no transaction detail.
func (h *PaymentHandler) Error(c echo.Context) error {
	orderID := c.QueryParam("order_id")

	outcome, err := h.payments.ResolveOutcome(c.Request().Context(), orderID, services.ScreenError)
	if err != nil {
		if errors.Is(err, status.ErrMissingOrderID) {
			return c.JSON(http.StatusOK, map[string]any{
				"message": "Payment was not completed",
			})
		}
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"outcome": outcome,
			"notice":  "Could not load transaction details",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"outcome": outcome})
}

// Cancel - user-initiated cancellation; terminal locally on success
func (h *PaymentHandler) Cancel(c echo.Context) error {
	orderID := c.QueryParam("order_id")

	txn, err := h.payments.Cancel(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, status.ErrMissingOrderID) {
			return c.JSON(http.StatusBadRequest, map[string]any{"message": "order_id is required"})
		}
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Could not cancel transaction"})
	}

	return c.JSON(http.StatusOK, txn)
}

// History - the authenticated user's transactions
func (h *PaymentHandler) History(c echo.Context) error {
	txns, err := h.payments.History(c.Request().Context())
	if err != nil {
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Could not load transactions"})
	}
	return c.JSON(http.StatusOK, txns)
}
