package handlers

import (
	"net/http"

	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type QueueHandler struct {
	queue *services.QueueService
}

func NewQueueHandler(queue *services.QueueService) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// GetQueueStatus returns a temple's live queue ordered by position.
func (h *QueueHandler) GetQueueStatus(e *core.RequestEvent) error {
	templeID := e.Request.PathValue("templeId")
	if templeID == "" {
		return apis.NewBadRequestError("Temple ID required", nil)
	}

	queueStatus, err := h.queue.GetQueueStatus(e.Request.Context(), templeID)
	if err != nil {
		return apiError(err, "Failed to load queue")
	}
	return e.JSON(http.StatusOK, queueStatus)
}

// JoinQueue puts the caller's booking into the live queue.
func (h *QueueHandler) JoinQueue(e *core.RequestEvent) error {
	var req struct {
		BookingID string `json:"booking_id" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	entry, err := h.queue.JoinQueue(e.Request.Context(), req.BookingID, e.Auth.Id)
	if err != nil {
		return apiError(err, "Failed to join queue")
	}
	return e.JSON(http.StatusOK, entry)
}

// MyPosition returns the caller's current position at a temple. The cached
// value is served when fresh; otherwise the entry is looked up.
func (h *QueueHandler) MyPosition(e *core.RequestEvent) error {
	templeID := e.Request.URL.Query().Get("temple_id")
	bookingID := e.Request.URL.Query().Get("booking_id")
	if templeID == "" || bookingID == "" {
		return apis.NewBadRequestError("temple_id and booking_id required", nil)
	}
	ctx := e.Request.Context()

	if position := h.queue.CachedPosition(ctx, templeID, e.Auth.Id); position > 0 {
		return e.JSON(http.StatusOK, map[string]any{
			"position":       position,
			"estimated_wait": h.queue.EstimateWait(position),
		})
	}

	entry, err := h.queue.EntryForBooking(ctx, bookingID)
	if err != nil {
		return apiError(err, "Failed to load queue position")
	}
	return e.JSON(http.StatusOK, map[string]any{
		"position":       entry.Position,
		"estimated_wait": entry.EstimatedWait,
		"status":         entry.Status,
	})
}

// AdvanceQueue completes the front of a temple's queue. Staff only.
func (h *QueueHandler) AdvanceQueue(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	templeID := e.Request.PathValue("templeId")
	if templeID == "" {
		return apis.NewBadRequestError("Temple ID required", nil)
	}

	queueStatus, err := h.queue.AdvanceQueue(e.Request.Context(), templeID)
	if err != nil {
		return apiError(err, "Failed to advance queue")
	}
	return e.JSON(http.StatusOK, queueStatus)
}

// LeaveQueue removes the caller's entry from the live queue.
func (h *QueueHandler) LeaveQueue(e *core.RequestEvent) error {
	var req struct {
		EntryID string `json:"entry_id" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	if err := h.queue.LeaveQueue(e.Request.Context(), req.EntryID); err != nil {
		return apiError(err, "Failed to leave queue")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Left the queue"})
}

// RejoinQueue re-enters a previously left entry at the tail.
func (h *QueueHandler) RejoinQueue(e *core.RequestEvent) error {
	var req struct {
		BookingID string `json:"booking_id" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	entry, err := h.queue.RejoinQueue(e.Request.Context(), req.BookingID)
	if err != nil {
		return apiError(err, "Failed to rejoin queue")
	}
	return e.JSON(http.StatusOK, entry)
}
