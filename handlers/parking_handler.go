package handlers

import (
	"net/http"

	"temple-system/models"
	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ParkingHandler struct {
	parking *services.ParkingService
}

func NewParkingHandler(parking *services.ParkingService) *ParkingHandler {
	return &ParkingHandler{parking: parking}
}

type createSlotRequest struct {
	SlotNumber string `json:"slot_number" validate:"required"`
	Zone       string `json:"zone" validate:"required"`
	Type       string `json:"type" validate:"omitempty,oneof=regular handicapped vip two-wheeler four-wheeler"`
}

// CreateSlot registers a new parking slot. Admin only.
func (h *ParkingHandler) CreateSlot(e *core.RequestEvent) error {
	if err := requireRole(e, "admin"); err != nil {
		return err
	}

	var req createSlotRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	slot := &models.ParkingSlot{
		SlotNumber: req.SlotNumber,
		Zone:       req.Zone,
		Type:       models.ParkingSlotType(req.Type),
	}
	if err := h.parking.CreateSlot(e.Request.Context(), slot); err != nil {
		return apiError(err, "Failed to create parking slot")
	}
	return e.JSON(http.StatusCreated, slot)
}

// ListSlots returns parking slots; ?available=true filters to free ones.
func (h *ParkingHandler) ListSlots(e *core.RequestEvent) error {
	onlyAvailable := e.Request.URL.Query().Get("available") == "true"

	slots, err := h.parking.Slots(e.Request.Context(), onlyAvailable)
	if err != nil {
		return apiError(err, "Failed to load parking slots")
	}
	return e.JSON(http.StatusOK, map[string]any{"slots": slots})
}

// UpdateSlot flips one slot's occupancy. Staff only.
func (h *ParkingHandler) UpdateSlot(e *core.RequestEvent) error {
	if err := requireRole(e, "admin", "volunteer"); err != nil {
		return err
	}

	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Slot ID required", nil)
	}

	var req struct {
		IsOccupied    bool   `json:"is_occupied"`
		VehicleNumber string `json:"vehicle_number"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	slot, err := h.parking.SetOccupancy(e.Request.Context(), id, req.IsOccupied, req.VehicleNumber)
	if err != nil {
		return apiError(err, "Failed to update parking slot")
	}
	return e.JSON(http.StatusOK, slot)
}

// BulkUpdate applies a batch of camera-detected occupancy changes. Rate
// limited instead of authenticated, like the heatmap ingest.
func (h *ParkingHandler) BulkUpdate(e *core.RequestEvent) error {
	var req struct {
		Updates []services.SlotUpdate `json:"updates" validate:"required,min=1"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	applied, skipped, err := h.parking.BulkUpdate(e.Request.Context(), req.Updates)
	if err != nil {
		return apiError(err, "Failed to apply parking updates")
	}
	return e.JSON(http.StatusOK, map[string]any{"applied": applied, "skipped": skipped})
}

// Occupancy summarizes every zone.
func (h *ParkingHandler) Occupancy(e *core.RequestEvent) error {
	occupancy, err := h.parking.Occupancy(e.Request.Context())
	if err != nil {
		return apiError(err, "Failed to load occupancy")
	}
	return e.JSON(http.StatusOK, map[string]any{"zones": occupancy})
}
