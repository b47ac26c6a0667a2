package handlers

import (
	"net/http"

	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TempleHandler struct {
	temples services.TempleStore
	queue   *services.QueueService
}

func NewTempleHandler(temples services.TempleStore, queue *services.QueueService) *TempleHandler {
	return &TempleHandler{temples: temples, queue: queue}
}

// ListTemples returns every active temple.
func (h *TempleHandler) ListTemples(e *core.RequestEvent) error {
	temples, err := h.temples.ActiveTemples(e.Request.Context())
	if err != nil {
		return apiError(err, "Failed to load temples")
	}
	return e.JSON(http.StatusOK, map[string]any{"temples": temples})
}

// GetTemple returns one temple with its current queue length.
func (h *TempleHandler) GetTemple(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Temple ID required", nil)
	}
	ctx := e.Request.Context()

	temple, err := h.temples.TempleByID(ctx, id)
	if err != nil {
		return apiError(err, "Failed to load temple")
	}

	queueLength := 0
	if queueStatus, err := h.queue.GetQueueStatus(ctx, id); err == nil {
		queueLength = queueStatus.TotalInQueue
	}

	return e.JSON(http.StatusOK, map[string]any{
		"temple":       temple,
		"queue_length": queueLength,
	})
}
