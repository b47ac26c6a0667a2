package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"temple-system/config"
	"temple-system/internal/status"
	"temple-system/models"
	"temple-system/utils"
)

// BookingService issues entry tokens and hands same-day bookings to the
// queue service. A booking succeeds or fails on its own: QR rendering, SMS
// and the queue join are side channels and never unwind a stored booking.
type BookingService struct {
	bookings BookingStore
	temples  TempleStore
	queue    *QueueService
	notifier *NotificationService
	contacts ContactResolver
	config   *config.Config
}

func NewBookingService(bookings BookingStore, temples TempleStore, queue *QueueService, notifier *NotificationService, contacts ContactResolver, cfg *config.Config) *BookingService {
	return &BookingService{
		bookings: bookings,
		temples:  temples,
		queue:    queue,
		notifier: notifier,
		contacts: contacts,
		config:   cfg,
	}
}

// CreateBookingInput is the validated request for a new entry token.
type CreateBookingInput struct {
	UserID           string
	TempleID         string
	VisitDate        time.Time
	TimeSlot         string
	NumberOfVisitors int
}

// CreateBooking validates the slot, checks capacity, stores the booking and
// auto-queues it when the visit is joinable right now.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	hour, minute, err := ParseSlotStart(in.TimeSlot)
	if err != nil {
		return nil, err
	}

	temple, err := s.temples.TempleByID(ctx, in.TempleID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			return nil, status.ErrTempleNotFound
		}
		return nil, err
	}
	if !temple.IsActive {
		return nil, status.ErrTempleNotFound
	}

	now := time.Now()
	leadTime := 30 * time.Minute
	if s.config != nil && s.config.BookingLeadTime > 0 {
		leadTime = s.config.BookingLeadTime
	}

	y, m, d := in.VisitDate.Date()
	slotStart := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if slotStart.Before(now.Add(leadTime)) {
		return nil, status.ErrSlotPassed
	}

	booked, err := s.bookings.CountActiveForSlot(ctx, in.TempleID, in.VisitDate, in.TimeSlot)
	if err != nil {
		return nil, err
	}
	if booked >= temple.SlotCapacity(in.TimeSlot) {
		return nil, status.ErrSlotFull
	}

	tokenNumber, err := utils.GenerateTokenNumber(now)
	if err != nil {
		return nil, fmt.Errorf("generate token number: %w", err)
	}

	visitors := in.NumberOfVisitors
	if visitors < 1 {
		visitors = 1
	}

	booking := &models.Booking{
		UserID:           in.UserID,
		TempleID:         in.TempleID,
		TokenNumber:      tokenNumber,
		VisitDate:        in.VisitDate,
		TimeSlot:         in.TimeSlot,
		NumberOfVisitors: visitors,
		Status:           models.BookingActive,
		QueueStatus:      models.QueueLinkPending,
		CreatedAt:        now,
	}

	qr, err := utils.GenerateQRCodeImage(utils.QRPayload{
		TokenNumber:      tokenNumber,
		UserID:           in.UserID,
		TempleID:         in.TempleID,
		VisitDate:        in.VisitDate.Format("2006-01-02"),
		TimeSlot:         in.TimeSlot,
		NumberOfVisitors: visitors,
		Timestamp:        now.UnixMilli(),
	})
	if err != nil {
		slog.Warn("qr code generation failed", "token", tokenNumber, "error", err)
	} else {
		booking.QRCode = qr
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if IsSameDayJoinable(in.VisitDate, in.TimeSlot, now) {
		if _, err := s.queue.AutoCreateQueueEntry(ctx, booking, in.UserID); err != nil {
			slog.Warn("auto queue join failed, booking kept",
				"token", tokenNumber, "error", err)
		}
	}

	s.sendConfirmation(ctx, booking)

	slog.Info("booking created",
		"token", tokenNumber, "temple", in.TempleID, "slot", in.TimeSlot,
		"queue_status", booking.QueueStatus)
	return booking, nil
}

func (s *BookingService) sendConfirmation(ctx context.Context, booking *models.Booking) {
	if s.notifier == nil || s.contacts == nil {
		return
	}
	_, phone, err := s.contacts.UserContact(ctx, booking.UserID)
	if err != nil || phone == "" {
		return
	}
	if err := s.notifier.SendTokenConfirmation(phone, booking); err != nil {
		slog.Warn("confirmation sms failed", "token", booking.TokenNumber, "error", err)
	}
}

// BookingByID returns one booking, enforcing ownership when ownerID is set.
func (s *BookingService) BookingByID(ctx context.Context, id, ownerID string) (*models.Booking, error) {
	booking, err := s.bookings.BookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != "" && booking.UserID != ownerID {
		return nil, status.ErrNotFound
	}
	return booking, nil
}

// BookingsByUser lists a visitor's bookings, newest first.
func (s *BookingService) BookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	return s.bookings.BookingsByUser(ctx, userID)
}

// CancelBooking cancels an active booking and removes its queue entry if
// one exists.
func (s *BookingService) CancelBooking(ctx context.Context, id, ownerID string) error {
	booking, err := s.BookingByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !booking.Status.CanTransitionTo(models.BookingCancelled) {
		return fmt.Errorf("%w: %s -> cancelled", status.ErrInvalidTransition, booking.Status)
	}

	if booking.QueueStatus == models.QueueLinkInQueue {
		if entry, err := s.queue.EntryForBooking(ctx, booking.ID); err == nil {
			if err := s.queue.LeaveQueue(ctx, entry.ID); err != nil {
				slog.Warn("queue leave failed during cancel", "booking", booking.ID, "error", err)
			}
		}
	}

	booking.Status = models.BookingCancelled
	booking.ClearQueueInfo(models.QueueLinkNone)
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return err
	}

	slog.Info("booking cancelled", "token", booking.TokenNumber)
	return nil
}

// VerifyResult is what the gate guard sees after scanning a token.
type VerifyResult struct {
	Valid       bool            `json:"valid"`
	Reason      string          `json:"reason,omitempty"`
	Booking     *models.Booking `json:"booking,omitempty"`
	VisitorName string          `json:"visitor_name,omitempty"`
}

// VerifyEntry checks a scanned QR payload at the entrance gate and, when
// valid, marks the token used and retires its queue entry.
func (s *BookingService) VerifyEntry(ctx context.Context, qrData string) (*VerifyResult, error) {
	payload, err := utils.DecodeQRPayload(qrData)
	if err != nil {
		return &VerifyResult{Valid: false, Reason: "unreadable QR code"}, nil
	}
	return s.verifyToken(ctx, payload.TokenNumber, payload.UserID)
}

// VerifyToken is the manual-entry fallback when the QR scan fails.
func (s *BookingService) VerifyToken(ctx context.Context, tokenNumber string) (*VerifyResult, error) {
	if !utils.ValidateTokenNumber(tokenNumber) {
		return &VerifyResult{Valid: false, Reason: "malformed token number"}, nil
	}
	return s.verifyToken(ctx, tokenNumber, "")
}

func (s *BookingService) verifyToken(ctx context.Context, tokenNumber, expectUserID string) (*VerifyResult, error) {
	booking, err := s.bookings.BookingByToken(ctx, tokenNumber)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			return &VerifyResult{Valid: false, Reason: "token not found"}, nil
		}
		return nil, err
	}

	if expectUserID != "" && booking.UserID != expectUserID {
		return &VerifyResult{Valid: false, Reason: "token does not belong to this visitor"}, nil
	}

	switch booking.Status {
	case models.BookingUsed:
		return &VerifyResult{Valid: false, Reason: "token already used", Booking: booking}, nil
	case models.BookingExpired:
		return &VerifyResult{Valid: false, Reason: "token expired", Booking: booking}, nil
	case models.BookingCancelled:
		return &VerifyResult{Valid: false, Reason: "token cancelled", Booking: booking}, nil
	}

	now := time.Now()
	y1, m1, d1 := booking.VisitDate.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return &VerifyResult{Valid: false, Reason: "token is not valid today", Booking: booking}, nil
	}

	booking.Status = models.BookingUsed
	booking.ClearQueueInfo(models.QueueLinkCompleted)
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.queue.CompleteEntryForBooking(ctx, booking.ID); err != nil {
		slog.Warn("queue entry completion failed during verify",
			"booking", booking.ID, "error", err)
	}

	result := &VerifyResult{Valid: true, Booking: booking}
	if s.contacts != nil {
		if name, _, err := s.contacts.UserContact(ctx, booking.UserID); err == nil {
			result.VisitorName = name
		}
	}

	slog.Info("entry verified", "token", tokenNumber)
	return result, nil
}
