package handlers

import (
	"net/http"
	"time"

	"temple-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	TempleID         string `json:"temple_id" validate:"required"`
	VisitDate        string `json:"visit_date" validate:"required,datetime=2006-01-02"`
	TimeSlot         string `json:"time_slot" validate:"required"`
	NumberOfVisitors int    `json:"number_of_visitors" validate:"omitempty,min=1,max=10"`
}

// CreateBooking issues a new entry token for the authenticated visitor.
func (h *BookingHandler) CreateBooking(e *core.RequestEvent) error {
	var req createBookingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return apis.NewBadRequestError("Validation failed", err)
	}

	visitDate, err := time.ParseInLocation("2006-01-02", req.VisitDate, time.Local)
	if err != nil {
		return apis.NewBadRequestError("Invalid visit date", err)
	}

	booking, err := h.bookings.CreateBooking(e.Request.Context(), services.CreateBookingInput{
		UserID:           e.Auth.Id,
		TempleID:         req.TempleID,
		VisitDate:        visitDate,
		TimeSlot:         req.TimeSlot,
		NumberOfVisitors: req.NumberOfVisitors,
	})
	if err != nil {
		return apiError(err, "Failed to create booking")
	}

	return e.JSON(http.StatusCreated, booking)
}

// MyBookings lists the authenticated visitor's bookings, newest first.
func (h *BookingHandler) MyBookings(e *core.RequestEvent) error {
	bookings, err := h.bookings.BookingsByUser(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return apiError(err, "Failed to load bookings")
	}
	return e.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}

// GetBooking returns one of the visitor's bookings.
func (h *BookingHandler) GetBooking(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Booking ID required", nil)
	}

	booking, err := h.bookings.BookingByID(e.Request.Context(), id, e.Auth.Id)
	if err != nil {
		return apiError(err, "Failed to load booking")
	}
	return e.JSON(http.StatusOK, booking)
}

// CancelBooking cancels an active booking and drops its queue entry.
func (h *BookingHandler) CancelBooking(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Booking ID required", nil)
	}

	if err := h.bookings.CancelBooking(e.Request.Context(), id, e.Auth.Id); err != nil {
		return apiError(err, "Failed to cancel booking")
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Booking cancelled"})
}
