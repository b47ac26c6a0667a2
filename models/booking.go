package models

import (
	"time"
)

// BookingStatus is the entry-token lifecycle state.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingUsed      BookingStatus = "used"
	BookingExpired   BookingStatus = "expired"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingActive, BookingUsed, BookingExpired, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// active is the only non-terminal state.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingActive {
		return false
	}
	switch next {
	case BookingUsed, BookingExpired, BookingCancelled:
		return true
	}
	return false
}

// QueueLinkStatus tracks how a booking relates to the live queue.
// Empty means the booking was never considered for queueing.
type QueueLinkStatus string

const (
	QueueLinkNone      QueueLinkStatus = ""
	QueueLinkPending   QueueLinkStatus = "pending"
	QueueLinkInQueue   QueueLinkStatus = "in-queue"
	QueueLinkCompleted QueueLinkStatus = "completed"
	QueueLinkExpired   QueueLinkStatus = "expired"
)

func (s QueueLinkStatus) IsValid() bool {
	switch s {
	case QueueLinkNone, QueueLinkPending, QueueLinkInQueue, QueueLinkCompleted, QueueLinkExpired:
		return true
	}
	return false
}

func (s QueueLinkStatus) CanTransitionTo(next QueueLinkStatus) bool {
	switch s {
	case QueueLinkNone:
		return next == QueueLinkPending || next == QueueLinkInQueue
	case QueueLinkPending:
		return next == QueueLinkInQueue || next == QueueLinkExpired
	case QueueLinkInQueue:
		return next == QueueLinkCompleted || next == QueueLinkExpired || next == QueueLinkPending
	}
	return false
}

// Booking is a visitor's entry token for a temple, date and time slot.
type Booking struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	TempleID         string          `json:"temple_id"`
	TokenNumber      string          `json:"token_number"`
	VisitDate        time.Time       `json:"visit_date"`
	TimeSlot         string          `json:"time_slot"` // "HH:MM-HH:MM" or "HH:MM"
	NumberOfVisitors int             `json:"number_of_visitors"`
	Status           BookingStatus   `json:"status"`
	QRCode           string          `json:"qr_code,omitempty"`
	QueueStatus      QueueLinkStatus `json:"queue_status"`
	QueuePosition    *int            `json:"queue_position"`
	EstimatedWait    *int            `json:"estimated_wait"` // minutes
	AutoQueued       bool            `json:"auto_queued"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SetQueueInfo updates the queue-linkage fields after a successful join.
func (b *Booking) SetQueueInfo(position, waitMinutes int, autoQueued bool) {
	b.QueueStatus = QueueLinkInQueue
	b.QueuePosition = &position
	b.EstimatedWait = &waitMinutes
	b.AutoQueued = autoQueued
}

// ClearQueueInfo resets linkage after the queue entry finishes or goes away.
func (b *Booking) ClearQueueInfo(status QueueLinkStatus) {
	b.QueueStatus = status
	b.QueuePosition = nil
	b.EstimatedWait = nil
}
