package services

import (
	"context"
	"time"

	"temple-system/models"
)

// Store interfaces sit between the services and PocketBase so the queue core
// can be exercised in isolation. RecordStore is the production
// implementation.

type QueueStore interface {
	EntryByID(ctx context.Context, id string) (*models.QueueEntry, error)
	EntryByBooking(ctx context.Context, bookingID string) (*models.QueueEntry, error)
	CountActive(ctx context.Context, templeID string) (int, error)
	CreateEntry(ctx context.Context, entry *models.QueueEntry) error
	UpdateEntry(ctx context.Context, entry *models.QueueEntry) error
	ActiveEntries(ctx context.Context, templeID string) ([]*models.QueueEntry, error)

	// ShiftPositionsAfter decrements the position of every active entry of
	// the temple whose position is strictly greater than removedPosition.
	ShiftPositionsAfter(ctx context.Context, templeID string, removedPosition int) error

	// CompleteAndShift marks the active position-1 entry completed and
	// renumbers the rest as one atomic unit. Returns the completed entry,
	// or nil when the queue has no active front entry.
	CompleteAndShift(ctx context.Context, templeID string) (*models.QueueEntry, error)
}

type BookingStore interface {
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	BookingByToken(ctx context.Context, tokenNumber string) (*models.Booking, error)
	BookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	CountActiveForSlot(ctx context.Context, templeID string, visitDate time.Time, timeSlot string) (int, error)

	// FindExpired returns active bookings whose visit date is strictly
	// before now; ExpireBefore bulk-flips them to expired.
	FindExpired(ctx context.Context, now time.Time) ([]*models.Booking, error)
	ExpireBefore(ctx context.Context, now time.Time) error
}

type TempleStore interface {
	TempleByID(ctx context.Context, id string) (*models.Temple, error)
	ActiveTemples(ctx context.Context) ([]*models.Temple, error)
}

type EmergencyStore interface {
	EmergencyByID(ctx context.Context, id string) (*models.EmergencyRequest, error)
	CreateEmergency(ctx context.Context, e *models.EmergencyRequest) error
	UpdateEmergency(ctx context.Context, e *models.EmergencyRequest) error
	EmergenciesByStatus(ctx context.Context, s models.EmergencyStatus) ([]*models.EmergencyRequest, error)
	CountEmergencies(ctx context.Context, s models.EmergencyStatus) (int, error)
}

type ParkingStore interface {
	SlotByID(ctx context.Context, id string) (*models.ParkingSlot, error)
	SlotByNumber(ctx context.Context, slotNumber, zone string) (*models.ParkingSlot, error)
	CreateSlot(ctx context.Context, s *models.ParkingSlot) error
	UpdateSlot(ctx context.Context, s *models.ParkingSlot) error
	Slots(ctx context.Context, onlyAvailable bool) ([]*models.ParkingSlot, error)
}

type CrowdStore interface {
	CreateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error
	UpdateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error
	LatestHeatmap(ctx context.Context) (*models.CrowdHeatmap, error)
	HeatmapsSince(ctx context.Context, since time.Time) ([]*models.CrowdHeatmap, error)
}
