package handlers

import (
	"context"
	"net/http"

	"event-portal-client/models"
	"event-portal-client/services"

	"github.com/labstack/echo/v5"
)

// AdminBackend is the admin slice of the platform backend. *api.Client
// satisfies it.
type AdminBackend interface {
	AdminTransactions(ctx context.Context, token string) ([]models.Transaction, error)
	AdminStatistics(ctx context.Context, token string) (*models.PaymentStatistics, error)
}

type AdminHandler struct {
	backend  AdminBackend
	sessions *services.SessionService
}

func NewAdminHandler(backend AdminBackend, sessions *services.SessionService) *AdminHandler {
	return &AdminHandler{
		backend:  backend,
		sessions: sessions,
	}
}

func (h *AdminHandler) adminToken(c echo.Context) (string, bool) {
	p := h.sessions.Principal()
	if p == nil || !p.IsAdmin {
		return "", false
	}
	token, err := h.sessions.AccessToken(c.Request().Context())
	if err != nil {
		return "", false
	}
	return token, true
}

// GetTransactions - every transaction, admin bearer pass-through
func (h *AdminHandler) GetTransactions(c echo.Context) error {
	token, ok := h.adminToken(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]any{"message": "Admin access required"})
	}

	txns, err := h.backend.AdminTransactions(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Could not load transactions"})
	}
	return c.JSON(http.StatusOK, txns)
}

// GetStatistics - payment aggregates for the dashboard
func (h *AdminHandler) GetStatistics(c echo.Context) error {
	token, ok := h.adminToken(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]any{"message": "Admin access required"})
	}

	stats, err := h.backend.AdminStatistics(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Could not load statistics"})
	}
	return c.JSON(http.StatusOK, stats)
}
