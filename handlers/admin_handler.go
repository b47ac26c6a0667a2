package handlers

import (
	"net/http"
	"time"

	"temple-system/services"

	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	store *services.RecordStore
}

func NewAdminHandler(store *services.RecordStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// Dashboard returns the aggregate counters for the admin landing page.
func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	if err := requireRole(e, "admin"); err != nil {
		return err
	}

	stats, err := h.store.Dashboard(e.Request.Context(), time.Now())
	if err != nil {
		return apiError(err, "Failed to load dashboard")
	}
	return e.JSON(http.StatusOK, stats)
}
