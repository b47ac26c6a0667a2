package handlers

import (
	"net/http"
	"strconv"

	"temple-system/models"
	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CrowdHandler struct {
	crowd *services.CrowdService
}

func NewCrowdHandler(crowd *services.CrowdService) *CrowdHandler {
	return &CrowdHandler{crowd: crowd}
}

// IngestHeatmap accepts one frame from the CV pipeline. The route is rate
// limited instead of authenticated; cameras do not hold user tokens.
func (h *CrowdHandler) IngestHeatmap(e *core.RequestEvent) error {
	var frame models.CrowdHeatmap
	if err := e.BindBody(&frame); err != nil {
		return apis.NewBadRequestError("Invalid heatmap payload", err)
	}
	if len(frame.Zones) == 0 {
		return apis.NewBadRequestError("Heatmap needs at least one zone", nil)
	}

	stored, err := h.crowd.IngestHeatmap(e.Request.Context(), &frame)
	if err != nil {
		return apiError(err, "Failed to ingest heatmap")
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"id":              stored.ID,
		"rush_status":     stored.OverallRushStatus,
		"people_count":    stored.OverallPeopleCount,
		"alert_triggered": stored.AlertTriggered,
	})
}

// CurrentHeatmap returns the latest frame.
func (h *CrowdHandler) CurrentHeatmap(e *core.RequestEvent) error {
	frame, err := h.crowd.CurrentHeatmap(e.Request.Context())
	if err != nil {
		return apiError(err, "Failed to load heatmap")
	}
	return e.JSON(http.StatusOK, frame)
}

// ZoneHistory returns one zone's samples over ?hours (default 24).
func (h *CrowdHandler) ZoneHistory(e *core.RequestEvent) error {
	zoneID := e.Request.PathValue("zoneId")
	if zoneID == "" {
		return apis.NewBadRequestError("Zone ID required", nil)
	}
	hours, _ := strconv.Atoi(e.Request.URL.Query().Get("hours"))

	history, err := h.crowd.ZoneHistory(e.Request.Context(), zoneID, hours)
	if err != nil {
		return apiError(err, "Failed to load zone history")
	}
	return e.JSON(http.StatusOK, map[string]any{"zone_id": zoneID, "history": history})
}

// Analytics returns peak and hourly averages over ?hours (default 24).
func (h *CrowdHandler) Analytics(e *core.RequestEvent) error {
	hours, _ := strconv.Atoi(e.Request.URL.Query().Get("hours"))

	analytics, err := h.crowd.Analytics(e.Request.Context(), hours)
	if err != nil {
		return apiError(err, "Failed to compute analytics")
	}
	return e.JSON(http.StatusOK, analytics)
}

type thresholdsRequest struct {
	Warning  int `json:"warning" validate:"required,min=1"`
	High     int `json:"high" validate:"required,gtfield=Warning"`
	Critical int `json:"critical" validate:"required,gtfield=High"`
}

// ConfigureThresholds overrides one zone's alert cut lines. Admin only.
func (h *CrowdHandler) ConfigureThresholds(e *core.RequestEvent) error {
	if err := requireRole(e, "admin"); err != nil {
		return err
	}

	zoneID := e.Request.PathValue("zoneId")
	if zoneID == "" {
		return apis.NewBadRequestError("Zone ID required", nil)
	}

	var req thresholdsRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	err := h.crowd.ConfigureThresholds(e.Request.Context(), zoneID, models.ZoneThresholds{
		Warning:  req.Warning,
		High:     req.High,
		Critical: req.Critical,
	})
	if err != nil {
		return apiError(err, "Failed to store thresholds")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Thresholds updated", "zone_id": zoneID})
}
