package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"temple-system/config"
	"temple-system/internal/status"
	"temple-system/models"
	"temple-system/monitoring"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

const positionCacheTTL = 30 * time.Second

// ContactResolver looks up user display data for queue views and
// notifications.
type ContactResolver interface {
	UserContact(ctx context.Context, userID string) (name, phone string, err error)
}

// QueueService owns the live per-temple visitor queue: same-day auto
// queueing, positions, wait estimation, advancement and renumbering.
//
// All mutations for one temple are serialized through a per-temple mutex;
// the count-then-create position allocation is only correct inside that
// critical section.
type QueueService struct {
	entries  QueueStore
	bookings BookingStore
	contacts ContactResolver
	Redis    *redis.Client
	pubnub   *pubnub.PubNub
	config   *config.Config

	mu          sync.Mutex
	templeLocks map[string]*sync.Mutex
}

func NewQueueService(entries QueueStore, bookings BookingStore, contacts ContactResolver, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config) *QueueService {
	return &QueueService{
		entries:     entries,
		bookings:    bookings,
		contacts:    contacts,
		Redis:       redisClient,
		pubnub:      pn,
		config:      cfg,
		templeLocks: make(map[string]*sync.Mutex),
	}
}

// templeLock returns the serialization point for one temple's queue.
func (s *QueueService) templeLock(templeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.templeLocks[templeID]
	if !ok {
		lock = &sync.Mutex{}
		s.templeLocks[templeID] = lock
	}
	return lock
}

// ParseSlotStart extracts the start time from a slot string of the form
// "HH:MM" or "HH:MM-HH:MM".
func ParseSlotStart(timeSlot string) (hour, minute int, err error) {
	start := strings.TrimSpace(strings.SplitN(timeSlot, "-", 2)[0])
	parts := strings.SplitN(start, ":", 2)
	if len(parts) != 2 {
		return 0, 0, status.ErrInvalidTimeSlot
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, status.ErrInvalidTimeSlot
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, status.ErrInvalidTimeSlot
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, status.ErrInvalidTimeSlot
	}
	return hour, minute, nil
}

// IsSameDayJoinable reports whether a booking for visitDate/timeSlot should
// join the live queue right away. True only when visitDate is the same
// calendar day as now and now is before the slot start plus the grace
// window. The comparison uses full elapsed minutes, so the window behaves
// the same across hour boundaries.
func IsSameDayJoinable(visitDate time.Time, timeSlot string, now time.Time) bool {
	y1, m1, d1 := visitDate.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return false
	}

	hour, minute, err := ParseSlotStart(timeSlot)
	if err != nil {
		return false
	}

	slotStart := time.Date(y2, m2, d2, hour, minute, 0, 0, now.Location())
	return now.Before(slotStart.Add(time.Hour))
}

// EstimateWait returns the estimated wait in minutes for a queue position.
func (s *QueueService) EstimateWait(position int) int {
	if position < 0 {
		return 0
	}
	avg := 5
	if s.config != nil && s.config.AvgServiceMinutes > 0 {
		avg = s.config.AvgServiceMinutes
	}
	return position * avg
}

// AutoCreateQueueEntry places a same-day booking into the live queue.
// Idempotent: if the booking already owns a queue entry it is returned
// unchanged. The caller has already decided joinability; a failure here is
// advisory and must not unwind the booking.
func (s *QueueService) AutoCreateQueueEntry(ctx context.Context, booking *models.Booking, userID string) (*models.QueueEntry, error) {
	lock := s.templeLock(booking.TempleID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.entries.EntryByBooking(ctx, booking.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, status.ErrNotFound) {
		return nil, err
	}

	count, err := s.entries.CountActive(ctx, booking.TempleID)
	if err != nil {
		return nil, err
	}

	position := count + 1
	waitTime := s.EstimateWait(position)

	entry := &models.QueueEntry{
		UserID:        userID,
		BookingID:     booking.ID,
		TempleID:      booking.TempleID,
		Position:      position,
		Status:        models.QueueEntryActive,
		EstimatedWait: waitTime,
		JoinedAt:      time.Now(),
	}
	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		monitoring.TrackQueueOperation("auto_join", booking.TempleID, "error")
		return nil, err
	}

	booking.SetQueueInfo(position, waitTime, true)
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		// The queue entry exists but the booking linkage is stale. Not
		// rolled back: the entry is the source of truth and the caller
		// treats this as a non-fatal join failure.
		slog.Warn("queue entry created but booking update failed",
			"booking", booking.ID, "error", err)
		return entry, err
	}

	monitoring.TrackQueueOperation("auto_join", booking.TempleID, "success")
	slog.Info("auto-queued booking", "token", booking.TokenNumber, "position", position)

	s.cachePosition(ctx, booking.TempleID, userID, position)
	s.publishPersonalUpdate(userID, booking.TempleID, position, waitTime, models.QueueEntryActive)
	s.publishQueueUpdate(booking.TempleID)

	return entry, nil
}

// JoinQueue is the explicit user-initiated variant of the same-day join.
func (s *QueueService) JoinQueue(ctx context.Context, bookingID, userID string) (*models.QueueEntry, error) {
	booking, err := s.bookings.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	entry, err := s.AutoCreateQueueEntry(ctx, booking, userID)
	if err != nil {
		return nil, err
	}
	entry.UserID = userID
	return entry, nil
}

// GetQueueStatus returns all active entries for a temple ordered by
// position, with user and booking details resolved when available.
func (s *QueueService) GetQueueStatus(ctx context.Context, templeID string) (*models.QueueStatus, error) {
	entries, err := s.entries.ActiveEntries(ctx, templeID)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if s.contacts != nil {
			if name, _, err := s.contacts.UserContact(ctx, entry.UserID); err == nil {
				entry.UserName = name
			}
		}
		if booking, err := s.bookings.BookingByID(ctx, entry.BookingID); err == nil {
			entry.TokenNumber = booking.TokenNumber
		}
	}

	return &models.QueueStatus{
		TempleID:     templeID,
		TotalInQueue: len(entries),
		Entries:      entries,
	}, nil
}

// EntryForBooking returns the queue entry owned by a booking.
func (s *QueueService) EntryForBooking(ctx context.Context, bookingID string) (*models.QueueEntry, error) {
	return s.entries.EntryByBooking(ctx, bookingID)
}

// UpdateQueuePositions closes the gap left at removedPosition by shifting
// every later active entry up by one.
func (s *QueueService) UpdateQueuePositions(ctx context.Context, templeID string, removedPosition int) error {
	return s.entries.ShiftPositionsAfter(ctx, templeID, removedPosition)
}

// AdvanceQueue completes the front entry and renumbers the rest, then
// returns the refreshed status. A temple with no active front entry is a
// no-op, not an error.
func (s *QueueService) AdvanceQueue(ctx context.Context, templeID string) (*models.QueueStatus, error) {
	lock := s.templeLock(templeID)
	lock.Lock()
	defer lock.Unlock()

	completed, err := s.entries.CompleteAndShift(ctx, templeID)
	if err != nil {
		monitoring.TrackQueueOperation("advance", templeID, "error")
		return nil, err
	}

	if completed != nil {
		monitoring.TrackQueueOperation("advance", templeID, "success")

		if booking, err := s.bookings.BookingByID(ctx, completed.BookingID); err == nil {
			booking.ClearQueueInfo(models.QueueLinkCompleted)
			if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
				slog.Warn("booking linkage update failed after advance",
					"booking", booking.ID, "error", err)
			}
		}

		s.publishPersonalUpdate(completed.UserID, templeID, 0, 0, models.QueueEntryCompleted)
	}

	queueStatus, err := s.GetQueueStatus(ctx, templeID)
	if err != nil {
		return nil, err
	}

	if completed != nil {
		s.refreshPositions(ctx, queueStatus)
		s.publishQueueUpdate(templeID)
	}
	monitoring.SetQueueLength(templeID, queueStatus.TotalInQueue)

	return queueStatus, nil
}

// LeaveQueue voluntarily removes an active entry. The gap is closed right
// away so the active positions stay dense.
func (s *QueueService) LeaveQueue(ctx context.Context, entryID string) error {
	entry, err := s.entries.EntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	lock := s.templeLock(entry.TempleID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the entry may have advanced meanwhile.
	entry, err = s.entries.EntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !entry.Status.CanTransitionTo(models.QueueEntryLeft) {
		return fmt.Errorf("%w: %s -> left", status.ErrInvalidTransition, entry.Status)
	}

	removedPosition := entry.Position
	entry.Status = models.QueueEntryLeft
	if err := s.entries.UpdateEntry(ctx, entry); err != nil {
		return err
	}
	if err := s.entries.ShiftPositionsAfter(ctx, entry.TempleID, removedPosition); err != nil {
		return err
	}

	if booking, err := s.bookings.BookingByID(ctx, entry.BookingID); err == nil {
		booking.ClearQueueInfo(models.QueueLinkPending)
		if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			slog.Warn("booking linkage update failed after leave",
				"booking", booking.ID, "error", err)
		}
	}

	monitoring.TrackQueueOperation("leave", entry.TempleID, "success")
	s.publishQueueUpdate(entry.TempleID)
	return nil
}

// RejoinQueue re-enters a left entry at the tail of the queue with a fresh
// position and rejoin timestamp. Only the left -> active transition is
// legal.
func (s *QueueService) RejoinQueue(ctx context.Context, bookingID string) (*models.QueueEntry, error) {
	entry, err := s.entries.EntryByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lock := s.templeLock(entry.TempleID)
	lock.Lock()
	defer lock.Unlock()

	entry, err = s.entries.EntryByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !entry.Status.CanTransitionTo(models.QueueEntryActive) {
		return nil, fmt.Errorf("%w: %s -> active", status.ErrInvalidTransition, entry.Status)
	}

	count, err := s.entries.CountActive(ctx, entry.TempleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry.Status = models.QueueEntryActive
	entry.Position = count + 1
	entry.EstimatedWait = s.EstimateWait(entry.Position)
	entry.RejoinedAt = &now
	if err := s.entries.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	if booking, err := s.bookings.BookingByID(ctx, bookingID); err == nil {
		booking.SetQueueInfo(entry.Position, entry.EstimatedWait, booking.AutoQueued)
		if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			slog.Warn("booking linkage update failed after rejoin",
				"booking", bookingID, "error", err)
		}
	}

	monitoring.TrackQueueOperation("rejoin", entry.TempleID, "success")
	s.cachePosition(ctx, entry.TempleID, entry.UserID, entry.Position)
	s.publishPersonalUpdate(entry.UserID, entry.TempleID, entry.Position, entry.EstimatedWait, models.QueueEntryActive)
	s.publishQueueUpdate(entry.TempleID)

	return entry, nil
}

// CompleteEntryForBooking finishes a live entry out of band, used when a
// token is verified at the entrance while its owner still waits in line.
func (s *QueueService) CompleteEntryForBooking(ctx context.Context, bookingID string) error {
	entry, err := s.entries.EntryByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			return nil
		}
		return err
	}
	if entry.Status != models.QueueEntryActive {
		return nil
	}

	lock := s.templeLock(entry.TempleID)
	lock.Lock()
	defer lock.Unlock()

	entry, err = s.entries.EntryByBooking(ctx, bookingID)
	if err != nil || entry.Status != models.QueueEntryActive {
		return err
	}

	now := time.Now()
	removedPosition := entry.Position
	entry.Status = models.QueueEntryCompleted
	entry.CompletedAt = &now
	if err := s.entries.UpdateEntry(ctx, entry); err != nil {
		return err
	}
	if err := s.entries.ShiftPositionsAfter(ctx, entry.TempleID, removedPosition); err != nil {
		return err
	}

	s.publishQueueUpdate(entry.TempleID)
	return nil
}

// CachedPosition returns the last published position for a user, or -1
// when nothing is cached.
func (s *QueueService) CachedPosition(ctx context.Context, templeID, userID string) int {
	if s.Redis == nil {
		return -1
	}
	posKey := fmt.Sprintf("queue:position:%s:%s", templeID, userID)
	position, err := s.Redis.Get(ctx, posKey).Int()
	if err != nil {
		return -1
	}
	return position
}

func (s *QueueService) cachePosition(ctx context.Context, templeID, userID string, position int) {
	if s.Redis == nil {
		return
	}
	posKey := fmt.Sprintf("queue:position:%s:%s", templeID, userID)
	if err := s.Redis.Set(ctx, posKey, position, positionCacheTTL).Err(); err != nil {
		slog.Warn("position cache write failed", "key", posKey, "error", err)
	}
}

// refreshPositions re-publishes positions and wait times after a shift.
func (s *QueueService) refreshPositions(ctx context.Context, queueStatus *models.QueueStatus) {
	for _, entry := range queueStatus.Entries {
		s.cachePosition(ctx, queueStatus.TempleID, entry.UserID, entry.Position)
		s.publishPersonalUpdate(entry.UserID, queueStatus.TempleID, entry.Position, s.EstimateWait(entry.Position), entry.Status)
	}
}

func (s *QueueService) publishQueueUpdate(templeID string) {
	if s.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("temple-%s", templeID)
	s.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":      "queue-updated",
			"temple_id": templeID,
		}).
		Execute()
}

func (s *QueueService) publishPersonalUpdate(userID, templeID string, position, waitTime int, entryStatus models.QueueEntryStatus) {
	if s.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("user-%s", userID)
	s.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":           "personal-queue-update",
			"temple_id":      templeID,
			"position":       position,
			"estimated_wait": waitTime,
			"status":         string(entryStatus),
		}).
		Execute()
}
