package handlers

import (
	"net/http"

	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type GuardHandler struct {
	bookings *services.BookingService
}

func NewGuardHandler(bookings *services.BookingService) *GuardHandler {
	return &GuardHandler{bookings: bookings}
}

// VerifyQR checks a scanned QR payload at the gate. Guard or admin only.
func (h *GuardHandler) VerifyQR(e *core.RequestEvent) error {
	if err := requireRole(e, "guard", "admin"); err != nil {
		return err
	}

	var req struct {
		QRData string `json:"qr_data" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	result, err := h.bookings.VerifyEntry(e.Request.Context(), req.QRData)
	if err != nil {
		return apiError(err, "Verification failed")
	}
	return e.JSON(http.StatusOK, result)
}

// VerifyToken is the manual fallback when the scanner cannot read a code.
func (h *GuardHandler) VerifyToken(e *core.RequestEvent) error {
	if err := requireRole(e, "guard", "admin"); err != nil {
		return err
	}

	var req struct {
		TokenNumber string `json:"token_number" validate:"required"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	result, err := h.bookings.VerifyToken(e.Request.Context(), req.TokenNumber)
	if err != nil {
		return apiError(err, "Verification failed")
	}
	return e.JSON(http.StatusOK, result)
}
