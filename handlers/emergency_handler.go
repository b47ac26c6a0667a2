package handlers

import (
	"net/http"

	"temple-system/models"
	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EmergencyHandler struct {
	emergencies *services.EmergencyService
}

func NewEmergencyHandler(emergencies *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencies: emergencies}
}

type createEmergencyRequest struct {
	Type        string `json:"type" validate:"required,oneof=medical security assistance other"`
	Description string `json:"description" validate:"required,min=5"`
	Location    string `json:"location" validate:"required"`
}

// CreateEmergency files a help request for the authenticated visitor.
func (h *EmergencyHandler) CreateEmergency(e *core.RequestEvent) error {
	var req createEmergencyRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	emergency := &models.EmergencyRequest{
		UserID:      e.Auth.Id,
		Type:        models.EmergencyType(req.Type),
		Description: req.Description,
		Location:    req.Location,
	}
	if err := h.emergencies.Create(e.Request.Context(), emergency); err != nil {
		return apiError(err, "Failed to create emergency request")
	}

	return e.JSON(http.StatusCreated, emergency)
}

// PendingEmergencies lists open requests most urgent first. Staff only.
func (h *EmergencyHandler) PendingEmergencies(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	pending, err := h.emergencies.PendingSorted(e.Request.Context())
	if err != nil {
		return apiError(err, "Failed to load emergencies")
	}
	return e.JSON(http.StatusOK, map[string]any{"emergencies": pending})
}

// AssignEmergency claims a pending request for the calling responder.
func (h *EmergencyHandler) AssignEmergency(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Emergency ID required", nil)
	}

	emergency, err := h.emergencies.Assign(e.Request.Context(), id, e.Auth.Id)
	if err != nil {
		return apiError(err, "Failed to assign emergency")
	}
	return e.JSON(http.StatusOK, emergency)
}

// ResolveEmergency closes a request with the responder's note.
func (h *EmergencyHandler) ResolveEmergency(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Emergency ID required", nil)
	}

	var req struct {
		Response string `json:"response" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	emergency, err := h.emergencies.Resolve(e.Request.Context(), id, e.Auth.Id, req.Response)
	if err != nil {
		return apiError(err, "Failed to resolve emergency")
	}
	return e.JSON(http.StatusOK, emergency)
}

// EmergencyStats returns dashboard counters. Staff only.
func (h *EmergencyHandler) EmergencyStats(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	stats, err := h.emergencies.Stats(e.Request.Context())
	if err != nil {
		return apiError(err, "Failed to load stats")
	}
	return e.JSON(http.StatusOK, stats)
}
