package models

import (
	"time"
)

type EmergencyType string

const (
	EmergencyMedical    EmergencyType = "medical"
	EmergencySecurity   EmergencyType = "security"
	EmergencyAssistance EmergencyType = "assistance"
	EmergencyOther      EmergencyType = "other"
)

func (t EmergencyType) IsValid() bool {
	switch t {
	case EmergencyMedical, EmergencySecurity, EmergencyAssistance, EmergencyOther:
		return true
	}
	return false
}

type EmergencyStatus string

const (
	EmergencyPending    EmergencyStatus = "pending"
	EmergencyInProgress EmergencyStatus = "in-progress"
	EmergencyResolved   EmergencyStatus = "resolved"
	EmergencyCancelled  EmergencyStatus = "cancelled"
)

func (s EmergencyStatus) IsValid() bool {
	switch s {
	case EmergencyPending, EmergencyInProgress, EmergencyResolved, EmergencyCancelled:
		return true
	}
	return false
}

func (s EmergencyStatus) CanTransitionTo(next EmergencyStatus) bool {
	switch s {
	case EmergencyPending:
		return next == EmergencyInProgress || next == EmergencyResolved || next == EmergencyCancelled
	case EmergencyInProgress:
		return next == EmergencyResolved || next == EmergencyCancelled
	}
	return false
}

type EmergencyPriority string

const (
	PriorityLow      EmergencyPriority = "low"
	PriorityMedium   EmergencyPriority = "medium"
	PriorityHigh     EmergencyPriority = "high"
	PriorityCritical EmergencyPriority = "critical"
)

// Rank orders priorities for sorting; lower rank is more urgent.
func (p EmergencyPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

// EmergencyRequest is a help request raised by a visitor or by the crowd
// alerting pipeline.
type EmergencyRequest struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        EmergencyType     `json:"type"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Status      EmergencyStatus   `json:"status"`
	Priority    EmergencyPriority `json:"priority"`
	RespondedBy string            `json:"responded_by,omitempty"`
	Response    string            `json:"response,omitempty"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// EmergencyStats are the dashboard counters.
type EmergencyStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}
