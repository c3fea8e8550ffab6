package handlers

import (
	"net/http"

	"event-portal-client/models"
	"event-portal-client/services"

	"github.com/labstack/echo/v5"
)

type ViewHandler struct {
	views *services.ViewService
}

func NewViewHandler(views *services.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// GetView - current navigation state
func (h *ViewHandler) GetView(c echo.Context) error {
	return c.JSON(http.StatusOK, h.views.State())
}

// Restore - front-end mount: reload persisted state, schedule scroll restore
func (h *ViewHandler) Restore(c echo.Context) error {
	return c.JSON(http.StatusOK, h.views.Restore(c.Request().Context()))
}

// Navigate - view and/or entity transition
func (h *ViewHandler) Navigate(c echo.Context) error {
	var req struct {
		View     string  `json:"view"`
		EntityID *string `json:"entity_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Invalid request"})
	}

	ctx := c.Request().Context()

	// An entity-only update leaves view and scroll untouched.
	if req.View == "" {
		if req.EntityID == nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"message": "Nothing to navigate to"})
		}
		return c.JSON(http.StatusOK, h.views.SetEntity(ctx, *req.EntityID))
	}

	view := models.View(req.View)
	if !view.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Unknown view"})
	}

	if req.EntityID != nil {
		return c.JSON(http.StatusOK, h.views.SetViewAndEntity(ctx, view, *req.EntityID))
	}
	return c.JSON(http.StatusOK, h.views.SetView(ctx, view))
}

// CaptureScroll - snapshot the scroll offset before navigating away
func (h *ViewHandler) CaptureScroll(c echo.Context) error {
	var req struct {
		Offset int `json:"offset"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "Invalid request"})
	}
	return c.JSON(http.StatusOK, h.views.CaptureScroll(c.Request().Context(), req.Offset))
}

// Reset - back to defaults, persisted
func (h *ViewHandler) Reset(c echo.Context) error {
	return c.JSON(http.StatusOK, h.views.Reset(c.Request().Context()))
}

// Clear - delete the persisted record entirely
func (h *ViewHandler) Clear(c echo.Context) error {
	return c.JSON(http.StatusOK, h.views.Clear(c.Request().Context()))
}
