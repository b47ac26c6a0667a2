package models

import (
	"time"
)

// QueueEntryStatus is the live queue entry state.
type QueueEntryStatus string

const (
	QueueEntryActive    QueueEntryStatus = "active"
	QueueEntryCompleted QueueEntryStatus = "completed"
	QueueEntryLeft      QueueEntryStatus = "left"
	QueueEntrySkipped   QueueEntryStatus = "skipped"
)

func (s QueueEntryStatus) IsValid() bool {
	switch s {
	case QueueEntryActive, QueueEntryCompleted, QueueEntryLeft, QueueEntrySkipped:
		return true
	}
	return false
}

// CanTransitionTo enforces the entry state machine: active entries can
// complete, leave or be skipped; a left entry can only rejoin (back to
// active); completed and skipped are terminal.
func (s QueueEntryStatus) CanTransitionTo(next QueueEntryStatus) bool {
	switch s {
	case QueueEntryActive:
		return next == QueueEntryCompleted || next == QueueEntryLeft || next == QueueEntrySkipped
	case QueueEntryLeft:
		return next == QueueEntryActive
	}
	return false
}

// QueueEntry is one booking's position in a temple's serving line.
type QueueEntry struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	BookingID         string           `json:"booking_id"`
	TempleID          string           `json:"temple_id"`
	Position          int              `json:"position"` // 1-based among active entries
	Status            QueueEntryStatus `json:"status"`
	AssignedVolunteer string           `json:"assigned_volunteer,omitempty"`
	EstimatedWait     int              `json:"estimated_wait"` // minutes
	JoinedAt          time.Time        `json:"joined_at"`
	RejoinedAt        *time.Time       `json:"rejoined_at,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`

	// Resolved display fields, filled when the status view is requested.
	UserName    string `json:"user_name,omitempty"`
	TokenNumber string `json:"token_number,omitempty"`
}

// QueueStatus is the resolved view of a temple's active queue.
type QueueStatus struct {
	TempleID     string        `json:"temple_id"`
	TotalInQueue int           `json:"total_in_queue"`
	Entries      []*QueueEntry `json:"entries"`
}
