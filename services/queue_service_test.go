package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"temple-system/config"
	"temple-system/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueueService() (*QueueService, *memQueueStore, *memBookingStore) {
	entries := newMemQueueStore()
	bookings := newMemBookingStore()
	contacts := &memContacts{
		names:  map[string]string{"user-1": "Asha"},
		phones: map[string]string{"user-1": "9876543210"},
	}
	cfg := &config.Config{AvgServiceMinutes: 5, JoinGraceWindow: time.Hour}

	return NewQueueService(entries, bookings, contacts, nil, nil, cfg), entries, bookings
}

func seedBooking(t *testing.T, bookings *memBookingStore, userID, templeID string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID:      userID,
		TempleID:    templeID,
		TokenNumber: fmt.Sprintf("TKN20260830%04X", bookings.seq+1),
		VisitDate:   time.Now(),
		TimeSlot:    "14:00-15:00",
		Status:      models.BookingActive,
		QueueStatus: models.QueueLinkPending,
	}
	require.NoError(t, bookings.CreateBooking(context.Background(), b))
	return b
}

func TestParseSlotStart(t *testing.T) {
	tests := []struct {
		slot    string
		hour    int
		minute  int
		wantErr bool
	}{
		{"14:00-15:00", 14, 0, false},
		{"09:30", 9, 30, false},
		{"23:59-00:30", 23, 59, false},
		{"25:00", 0, 0, true},
		{"14:61", 0, 0, true},
		{"afternoon", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		hour, minute, err := ParseSlotStart(tt.slot)
		if tt.wantErr {
			assert.Error(t, err, tt.slot)
			continue
		}
		require.NoError(t, err, tt.slot)
		assert.Equal(t, tt.hour, hour, tt.slot)
		assert.Equal(t, tt.minute, minute, tt.slot)
	}
}

func TestIsSameDayJoinable(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 30, hour, minute, 0, 0, time.Local)
	}

	tests := []struct {
		name      string
		visitDate time.Time
		timeSlot  string
		now       time.Time
		want      bool
	}{
		{"before slot start", day(0, 0), "14:00-15:00", day(13, 0), true},
		{"within grace window", day(0, 0), "15:00-16:00", day(15, 30), true},
		{"exactly at grace boundary", day(0, 0), "15:00-16:00", day(16, 0), false},
		{"well past the slot", day(0, 0), "15:00-16:00", day(20, 0), false},
		{"tomorrow's booking", day(0, 0).AddDate(0, 0, 1), "14:00-15:00", day(13, 0), false},
		{"yesterday's booking", day(0, 0).AddDate(0, 0, -1), "14:00-15:00", day(13, 0), false},
		{"grace crosses hour boundary", day(0, 0), "23:30-23:59", day(23, 50), true},
		{"unparseable slot", day(0, 0), "whenever", day(13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSameDayJoinable(tt.visitDate, tt.timeSlot, tt.now))
		})
	}
}

func TestEstimateWait(t *testing.T) {
	service, _, _ := setupQueueService()

	assert.Equal(t, 5, service.EstimateWait(1))
	assert.Equal(t, 50, service.EstimateWait(10))
	assert.Equal(t, 0, service.EstimateWait(0))
	assert.Equal(t, 0, service.EstimateWait(-3))
}

func TestAutoCreateQueueEntry_AssignsTailPosition(t *testing.T) {
	service, _, bookings := setupQueueService()
	ctx := context.Background()

	first := seedBooking(t, bookings, "user-1", "temple-1")
	second := seedBooking(t, bookings, "user-2", "temple-1")

	e1, err := service.AutoCreateQueueEntry(ctx, first, "user-1")
	require.NoError(t, err)
	e2, err := service.AutoCreateQueueEntry(ctx, second, "user-2")
	require.NoError(t, err)

	assert.Equal(t, 1, e1.Position)
	assert.Equal(t, 5, e1.EstimatedWait)
	assert.Equal(t, 2, e2.Position)
	assert.Equal(t, 10, e2.EstimatedWait)

	stored, err := bookings.BookingByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueLinkInQueue, stored.QueueStatus)
	require.NotNil(t, stored.QueuePosition)
	assert.Equal(t, 1, *stored.QueuePosition)
	assert.True(t, stored.AutoQueued)
}

func TestAutoCreateQueueEntry_Idempotent(t *testing.T) {
	service, entries, bookings := setupQueueService()
	ctx := context.Background()

	booking := seedBooking(t, bookings, "user-1", "temple-1")

	e1, err := service.AutoCreateQueueEntry(ctx, booking, "user-1")
	require.NoError(t, err)
	e2, err := service.AutoCreateQueueEntry(ctx, booking, "user-1")
	require.NoError(t, err)

	assert.Equal(t, e1.ID, e2.ID)
	assert.Equal(t, e1.Position, e2.Position)

	count, err := entries.CountActive(ctx, "temple-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdvanceQueue_CompletesFrontAndRenumbers(t *testing.T) {
	service, entries, bookings := setupQueueService()
	ctx := context.Background()

	var seeded []*models.QueueEntry
	for i := 1; i <= 3; i++ {
		booking := seedBooking(t, bookings, fmt.Sprintf("user-%d", i), "temple-1")
		entry, err := service.AutoCreateQueueEntry(ctx, booking, booking.UserID)
		require.NoError(t, err)
		seeded = append(seeded, entry)
	}

	queueStatus, err := service.AdvanceQueue(ctx, "temple-1")
	require.NoError(t, err)

	assert.Equal(t, 2, queueStatus.TotalInQueue)
	require.Len(t, queueStatus.Entries, 2)
	assert.Equal(t, 1, queueStatus.Entries[0].Position)
	assert.Equal(t, 2, queueStatus.Entries[1].Position)

	front, err := entries.EntryByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueEntryCompleted, front.Status)
	require.NotNil(t, front.CompletedAt)

	// booking linkage of the completed entry is cleared
	b, err := bookings.BookingByID(ctx, seeded[0].BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueLinkCompleted, b.QueueStatus)
	assert.Nil(t, b.QueuePosition)
}

func TestAdvanceQueue_EmptyQueueIsNoOp(t *testing.T) {
	service, _, _ := setupQueueService()

	queueStatus, err := service.AdvanceQueue(context.Background(), "temple-1")
	require.NoError(t, err)
	assert.Equal(t, 0, queueStatus.TotalInQueue)
	assert.Empty(t, queueStatus.Entries)
}

func TestLeaveQueue_ClosesGap(t *testing.T) {
	service, entries, bookings := setupQueueService()
	ctx := context.Background()

	var seeded []*models.QueueEntry
	for i := 1; i <= 3; i++ {
		booking := seedBooking(t, bookings, fmt.Sprintf("user-%d", i), "temple-1")
		entry, err := service.AutoCreateQueueEntry(ctx, booking, booking.UserID)
		require.NoError(t, err)
		seeded = append(seeded, entry)
	}

	// the middle entry leaves; the third moves up
	require.NoError(t, service.LeaveQueue(ctx, seeded[1].ID))

	active, err := entries.ActiveEntries(ctx, "temple-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, 1, active[0].Position)
	assert.Equal(t, seeded[0].ID, active[0].ID)
	assert.Equal(t, 2, active[1].Position)
	assert.Equal(t, seeded[2].ID, active[1].ID)

	left, err := entries.EntryByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueEntryLeft, left.Status)

	// leaving twice is rejected
	assert.Error(t, service.LeaveQueue(ctx, seeded[1].ID))
}

func TestRejoinQueue_EntersAtTail(t *testing.T) {
	service, _, bookings := setupQueueService()
	ctx := context.Background()

	var seeded []*models.QueueEntry
	for i := 1; i <= 3; i++ {
		booking := seedBooking(t, bookings, fmt.Sprintf("user-%d", i), "temple-1")
		entry, err := service.AutoCreateQueueEntry(ctx, booking, booking.UserID)
		require.NoError(t, err)
		seeded = append(seeded, entry)
	}

	require.NoError(t, service.LeaveQueue(ctx, seeded[0].ID))

	rejoined, err := service.RejoinQueue(ctx, seeded[0].BookingID)
	require.NoError(t, err)

	assert.Equal(t, models.QueueEntryActive, rejoined.Status)
	assert.Equal(t, 3, rejoined.Position)
	assert.Equal(t, 15, rejoined.EstimatedWait)
	assert.NotNil(t, rejoined.RejoinedAt)

	// only left -> active is legal; an active entry cannot rejoin
	_, err = service.RejoinQueue(ctx, seeded[1].BookingID)
	assert.Error(t, err)
}

// Demonstrates the lost-update the per-temple lock exists for: two joins
// that both read the active count before either writes end up with the same
// position.
func TestNaiveCountThenCreate_ProducesDuplicatePositions(t *testing.T) {
	entries := newMemQueueStore()
	ctx := context.Background()

	c1, err := entries.CountActive(ctx, "temple-1")
	require.NoError(t, err)
	c2, err := entries.CountActive(ctx, "temple-1")
	require.NoError(t, err)

	require.NoError(t, entries.CreateEntry(ctx, &models.QueueEntry{
		BookingID: "b1", TempleID: "temple-1", Position: c1 + 1,
		Status: models.QueueEntryActive, JoinedAt: time.Now(),
	}))
	require.NoError(t, entries.CreateEntry(ctx, &models.QueueEntry{
		BookingID: "b2", TempleID: "temple-1", Position: c2 + 1,
		Status: models.QueueEntryActive, JoinedAt: time.Now(),
	}))

	active, err := entries.ActiveEntries(ctx, "temple-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, active[0].Position, active[1].Position, "both joins claimed the same position")
}

func TestConcurrentJoins_KeepPositionsDense(t *testing.T) {
	service, entries, bookings := setupQueueService()
	ctx := context.Background()

	const n = 20
	seeded := make([]*models.Booking, n)
	for i := range seeded {
		seeded[i] = seedBooking(t, bookings, fmt.Sprintf("user-%d", i), "temple-1")
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(b *models.Booking) {
			defer wg.Done()
			<-start
			_, err := service.AutoCreateQueueEntry(ctx, b, b.UserID)
			errs <- err
		}(seeded[i])
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active, err := entries.ActiveEntries(ctx, "temple-1")
	require.NoError(t, err)
	require.Len(t, active, n)

	positions := make([]int, 0, n)
	for _, e := range active {
		positions = append(positions, e.Position)
	}
	sort.Ints(positions)
	for i, p := range positions {
		assert.Equal(t, i+1, p, "positions must be dense 1..N")
	}
}

func TestCachedPosition(t *testing.T) {
	service, _, _ := setupQueueService()
	db, mock := redismock.NewClientMock()
	service.Redis = db
	ctx := context.Background()

	mock.ExpectSet("queue:position:temple-1:user-1", 4, positionCacheTTL).SetVal("OK")
	service.cachePosition(ctx, "temple-1", "user-1", 4)

	mock.ExpectGet("queue:position:temple-1:user-1").SetVal("4")
	assert.Equal(t, 4, service.CachedPosition(ctx, "temple-1", "user-1"))

	mock.ExpectGet("queue:position:temple-1:user-2").RedisNil()
	assert.Equal(t, -1, service.CachedPosition(ctx, "temple-1", "user-2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
