package handlers

import (
	"context"
	"errors"
	"net/http"

	"event-portal-client/internal/api"
	"event-portal-client/internal/status"
	"event-portal-client/models"
	"event-portal-client/services"

	"github.com/labstack/echo/v5"
)

type AuthHandler struct {
	sessions *services.SessionService
}

func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login - end-user login
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, h.sessions.Login)
}

// AdminLogin - back-office login, starts the bounded session window
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, h.sessions.AdminLogin)
}

func (h *AuthHandler) login(c echo.Context, fn func(ctx context.Context, email, password string) (*models.Principal, error)) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Invalid request"})
	}

	p, err := fn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// The backend's own message is surfaced verbatim to the form.
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": apiErr.Message})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"message": "Login unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"principal": p,
		"session":   h.sessions.Info(),
	})
}

// Logout - idempotent session teardown
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"message": "Logged out"})
}

// GetSession - session snapshot for the front-end (state, countdown, warning)
func (h *AuthHandler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Info())
}

// Reverify - re-runs verification to reset the countdown window
func (h *AuthHandler) Reverify(c echo.Context) error {
	if err := h.sessions.Reverify(c.Request().Context()); err != nil {
		if errors.Is(err, status.ErrTokenMissing) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Not authenticated"})
		}
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Verification failed"})
	}
	return c.JSON(http.StatusOK, h.sessions.Info())
}
