package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"temple-system/internal/status"
	"temple-system/models"
)

// ParkingService manages parking slots. Occupancy flips come either from
// staff or in bulk from the CV camera feed.
type ParkingService struct {
	store ParkingStore
}

func NewParkingService(store ParkingStore) *ParkingService {
	return &ParkingService{store: store}
}

// CreateSlot registers a new physical slot. slot number + zone is unique.
func (s *ParkingService) CreateSlot(ctx context.Context, slot *models.ParkingSlot) error {
	if slot.SlotNumber == "" || slot.Zone == "" {
		return fmt.Errorf("parking: slot number and zone are required")
	}
	if slot.Type == "" {
		slot.Type = models.ParkingRegular
	}
	if !slot.Type.IsValid() {
		return fmt.Errorf("parking: unknown slot type %q", slot.Type)
	}

	existing, err := s.store.SlotByNumber(ctx, slot.SlotNumber, slot.Zone)
	if err == nil && existing != nil {
		return fmt.Errorf("parking: slot %s already exists in zone %s", slot.SlotNumber, slot.Zone)
	}
	if err != nil && !errors.Is(err, status.ErrNotFound) {
		return err
	}

	slot.LastUpdated = time.Now()
	return s.store.CreateSlot(ctx, slot)
}

// Slots lists slots, optionally only the free ones.
func (s *ParkingService) Slots(ctx context.Context, onlyAvailable bool) ([]*models.ParkingSlot, error) {
	return s.store.Slots(ctx, onlyAvailable)
}

// SetOccupancy flips one slot, recording the vehicle when occupied.
func (s *ParkingService) SetOccupancy(ctx context.Context, slotID string, occupied bool, vehicleNumber string) (*models.ParkingSlot, error) {
	slot, err := s.store.SlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	slot.IsOccupied = occupied
	slot.LastUpdated = time.Now()
	if occupied {
		slot.VehicleNumber = vehicleNumber
	} else {
		slot.VehicleNumber = ""
	}

	if err := s.store.UpdateSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// SlotUpdate is one CV-detected occupancy change.
type SlotUpdate struct {
	SlotNumber string `json:"slot_number"`
	Zone       string `json:"zone"`
	IsOccupied bool   `json:"is_occupied"`
}

// BulkUpdate applies a batch of camera-detected changes. Unknown slots are
// skipped and counted, not fatal: the camera sees spaces that were never
// registered.
func (s *ParkingService) BulkUpdate(ctx context.Context, updates []SlotUpdate) (applied, skipped int, err error) {
	for _, u := range updates {
		slot, err := s.store.SlotByNumber(ctx, u.SlotNumber, u.Zone)
		if err != nil {
			if errors.Is(err, status.ErrNotFound) {
				skipped++
				continue
			}
			return applied, skipped, err
		}

		if slot.IsOccupied == u.IsOccupied {
			continue
		}
		slot.IsOccupied = u.IsOccupied
		slot.LastUpdated = time.Now()
		if !u.IsOccupied {
			slot.VehicleNumber = ""
		}
		if err := s.store.UpdateSlot(ctx, slot); err != nil {
			return applied, skipped, err
		}
		applied++
	}

	if skipped > 0 {
		slog.Warn("bulk parking update skipped unknown slots", "skipped", skipped)
	}
	return applied, skipped, nil
}

// Occupancy summarizes every zone for the dashboard.
func (s *ParkingService) Occupancy(ctx context.Context) ([]models.ParkingOccupancy, error) {
	slots, err := s.store.Slots(ctx, false)
	if err != nil {
		return nil, err
	}

	byZone := map[string]*models.ParkingOccupancy{}
	for _, slot := range slots {
		zone, ok := byZone[slot.Zone]
		if !ok {
			zone = &models.ParkingOccupancy{Zone: slot.Zone}
			byZone[slot.Zone] = zone
		}
		zone.Total++
		if slot.IsOccupied {
			zone.Occupied++
		} else {
			zone.Available++
		}
	}

	out := make([]models.ParkingOccupancy, 0, len(byZone))
	for _, zone := range byZone {
		out = append(out, *zone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out, nil
}
