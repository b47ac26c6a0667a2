package services

import (
	"context"
	"testing"
	"time"

	"temple-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminePriority(t *testing.T) {
	tests := []struct {
		name        string
		kind        models.EmergencyType
		description string
		want        models.EmergencyPriority
	}{
		{"medical is critical", models.EmergencyMedical, "feeling dizzy", models.PriorityCritical},
		{"critical keyword", models.EmergencyAssistance, "person is unconscious near gate", models.PriorityCritical},
		{"severe keyword", models.EmergencyOther, "severe chest discomfort", models.PriorityCritical},
		{"injury keyword", models.EmergencySecurity, "minor injury at steps", models.PriorityHigh},
		{"bleeding keyword", models.EmergencyOther, "visitor is bleeding", models.PriorityHigh},
		{"plain assistance", models.EmergencyAssistance, "lost my child's shoe", models.PriorityMedium},
		{"case insensitive", models.EmergencyOther, "URGENT: gate blocked", models.PriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeterminePriority(tt.kind, tt.description))
		})
	}
}

func TestEmergencyLifecycle(t *testing.T) {
	store := newMemEmergencyStore()
	service := NewEmergencyService(store, nil, nil, nil, "")
	ctx := context.Background()

	req := &models.EmergencyRequest{
		UserID:      "user-1",
		Type:        models.EmergencyMedical,
		Description: "visitor collapsed",
		Location:    "inner sanctum",
	}
	require.NoError(t, service.Create(ctx, req))
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.EmergencyPending, req.Status)
	assert.Equal(t, models.PriorityCritical, req.Priority)

	assigned, err := service.Assign(ctx, req.ID, "volunteer-1")
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyInProgress, assigned.Status)
	assert.Equal(t, "volunteer-1", assigned.RespondedBy)
	assert.NotNil(t, assigned.RespondedAt)

	// assigning twice is an invalid transition
	_, err = service.Assign(ctx, req.ID, "volunteer-2")
	assert.Error(t, err)

	resolved, err := service.Resolve(ctx, req.ID, "volunteer-1", "medic dispatched")
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyResolved, resolved.Status)
	assert.Equal(t, "medic dispatched", resolved.Response)

	_, err = service.Resolve(ctx, req.ID, "volunteer-1", "again")
	assert.Error(t, err)
}

func TestPendingSorted_ByPriorityThenAge(t *testing.T) {
	store := newMemEmergencyStore()
	service := NewEmergencyService(store, nil, nil, nil, "")
	ctx := context.Background()
	now := time.Now()

	seed := func(priority models.EmergencyPriority, age time.Duration) string {
		e := &models.EmergencyRequest{
			Type:        models.EmergencyOther,
			Description: "test",
			Location:    "gate",
			Status:      models.EmergencyPending,
			Priority:    priority,
			CreatedAt:   now.Add(-age),
		}
		require.NoError(t, store.CreateEmergency(ctx, e))
		return e.ID
	}

	oldMedium := seed(models.PriorityMedium, 30*time.Minute)
	newCritical := seed(models.PriorityCritical, time.Minute)
	oldCritical := seed(models.PriorityCritical, 10*time.Minute)
	newHigh := seed(models.PriorityHigh, time.Minute)

	pending, err := service.PendingSorted(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	assert.Equal(t, oldCritical, pending[0].ID)
	assert.Equal(t, newCritical, pending[1].ID)
	assert.Equal(t, newHigh, pending[2].ID)
	assert.Equal(t, oldMedium, pending[3].ID)
}

func TestEmergencyStats(t *testing.T) {
	store := newMemEmergencyStore()
	service := NewEmergencyService(store, nil, nil, nil, "")
	ctx := context.Background()

	for _, s := range []models.EmergencyStatus{
		models.EmergencyPending, models.EmergencyPending,
		models.EmergencyInProgress, models.EmergencyResolved,
	} {
		require.NoError(t, store.CreateEmergency(ctx, &models.EmergencyRequest{
			Type: models.EmergencyOther, Description: "x", Location: "y", Status: s, Priority: models.PriorityLow,
		}))
	}

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Resolved)
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	store := newMemEmergencyStore()
	service := NewEmergencyService(store, nil, nil, nil, "")

	err := service.Create(context.Background(), &models.EmergencyRequest{
		Type:        "earthquake",
		Description: "ground shaking",
		Location:    "everywhere",
	})
	assert.Error(t, err)
}
