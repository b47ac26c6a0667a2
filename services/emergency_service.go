package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"temple-system/internal/status"
	"temple-system/models"

	pubnub "github.com/pubnub/go"
)

var (
	criticalKeywords = []string{"severe", "critical", "urgent", "life-threatening", "unconscious"}
	highKeywords     = []string{"injury", "pain", "bleeding", "help needed"}
)

// EmergencyService handles visitor help requests and crowd-raised alerts.
type EmergencyService struct {
	store    EmergencyStore
	notifier *NotificationService
	contacts ContactResolver
	pubnub   *pubnub.PubNub

	// responderPhone is notified about critical requests when set.
	responderPhone string
}

func NewEmergencyService(store EmergencyStore, notifier *NotificationService, contacts ContactResolver, pn *pubnub.PubNub, responderPhone string) *EmergencyService {
	return &EmergencyService{
		store:          store,
		notifier:       notifier,
		contacts:       contacts,
		pubnub:         pn,
		responderPhone: responderPhone,
	}
}

// DeterminePriority infers urgency from the request type and description.
// Medical requests and critical keywords map to critical, injury wording to
// high, everything else to medium.
func DeterminePriority(emergencyType models.EmergencyType, description string) models.EmergencyPriority {
	desc := strings.ToLower(description)

	for _, kw := range criticalKeywords {
		if strings.Contains(desc, kw) {
			return models.PriorityCritical
		}
	}
	if emergencyType == models.EmergencyMedical {
		return models.PriorityCritical
	}
	for _, kw := range highKeywords {
		if strings.Contains(desc, kw) {
			return models.PriorityHigh
		}
	}
	return models.PriorityMedium
}

// Create registers a visitor-raised emergency request.
func (s *EmergencyService) Create(ctx context.Context, req *models.EmergencyRequest) error {
	if !req.Type.IsValid() {
		return fmt.Errorf("emergency: unknown type %q", req.Type)
	}

	req.Status = models.EmergencyPending
	req.Priority = DeterminePriority(req.Type, req.Description)
	req.CreatedAt = time.Now()

	if err := s.store.CreateEmergency(ctx, req); err != nil {
		return err
	}

	s.publishNewEmergency(req)
	s.alertResponders(req)

	slog.Info("emergency created",
		"id", req.ID, "type", req.Type, "priority", req.Priority)
	return nil
}

// CreateSystemAlert registers a request raised by the crowd pipeline. The
// priority is already decided by the zone classification.
func (s *EmergencyService) CreateSystemAlert(ctx context.Context, req *models.EmergencyRequest) error {
	req.Status = models.EmergencyPending
	req.CreatedAt = time.Now()
	if req.Priority == "" {
		req.Priority = models.PriorityHigh
	}

	if err := s.store.CreateEmergency(ctx, req); err != nil {
		return err
	}

	s.publishNewEmergency(req)
	s.alertResponders(req)
	return nil
}

// PendingSorted returns pending requests ordered most urgent first, ties
// broken by age.
func (s *EmergencyService) PendingSorted(ctx context.Context) ([]*models.EmergencyRequest, error) {
	pending, err := s.store.EmergenciesByStatus(ctx, models.EmergencyPending)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority.Rank() != pending[j].Priority.Rank() {
			return pending[i].Priority.Rank() < pending[j].Priority.Rank()
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// Assign moves a pending request to in-progress under a responder.
func (s *EmergencyService) Assign(ctx context.Context, id, responderID string) (*models.EmergencyRequest, error) {
	req, err := s.store.EmergencyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(models.EmergencyInProgress) {
		return nil, fmt.Errorf("%w: %s -> in-progress", status.ErrInvalidTransition, req.Status)
	}

	now := time.Now()
	req.Status = models.EmergencyInProgress
	req.RespondedBy = responderID
	req.RespondedAt = &now
	if err := s.store.UpdateEmergency(ctx, req); err != nil {
		return nil, err
	}

	slog.Info("emergency assigned", "id", id, "responder", responderID)
	return req, nil
}

// Resolve closes a request with the responder's note.
func (s *EmergencyService) Resolve(ctx context.Context, id, responderID, response string) (*models.EmergencyRequest, error) {
	req, err := s.store.EmergencyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(models.EmergencyResolved) {
		return nil, fmt.Errorf("%w: %s -> resolved", status.ErrInvalidTransition, req.Status)
	}

	now := time.Now()
	req.Status = models.EmergencyResolved
	req.Response = response
	if req.RespondedBy == "" {
		req.RespondedBy = responderID
	}
	if req.RespondedAt == nil {
		req.RespondedAt = &now
	}
	if err := s.store.UpdateEmergency(ctx, req); err != nil {
		return nil, err
	}

	slog.Info("emergency resolved", "id", id)
	return req, nil
}

// Stats returns the dashboard counters.
func (s *EmergencyService) Stats(ctx context.Context) (*models.EmergencyStats, error) {
	pending, err := s.store.CountEmergencies(ctx, models.EmergencyPending)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.store.CountEmergencies(ctx, models.EmergencyInProgress)
	if err != nil {
		return nil, err
	}
	resolved, err := s.store.CountEmergencies(ctx, models.EmergencyResolved)
	if err != nil {
		return nil, err
	}

	return &models.EmergencyStats{
		Total:      pending + inProgress + resolved,
		Pending:    pending,
		InProgress: inProgress,
		Resolved:   resolved,
	}, nil
}

func (s *EmergencyService) publishNewEmergency(req *models.EmergencyRequest) {
	if s.pubnub == nil {
		return
	}
	s.pubnub.Publish().
		Channel("emergencies").
		Message(map[string]any{
			"type":     "new-emergency",
			"id":       req.ID,
			"kind":     string(req.Type),
			"priority": string(req.Priority),
			"location": req.Location,
		}).
		Execute()
}

func (s *EmergencyService) alertResponders(req *models.EmergencyRequest) {
	if s.notifier == nil || s.responderPhone == "" {
		return
	}
	if req.Priority != models.PriorityCritical && req.Priority != models.PriorityHigh {
		return
	}
	if err := s.notifier.SendEmergencyAlert(s.responderPhone, req); err != nil {
		slog.Warn("responder sms failed", "emergency", req.ID, "error", err)
	}
}
