package services

import (
	"context"
	"testing"

	"temple-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSlot(t *testing.T) {
	service := NewParkingService(newMemParkingStore())
	ctx := context.Background()

	slot := &models.ParkingSlot{SlotNumber: "A1", Zone: "north"}
	require.NoError(t, service.CreateSlot(ctx, slot))
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, models.ParkingRegular, slot.Type)
	assert.False(t, slot.LastUpdated.IsZero())

	// duplicate slot number in the same zone is rejected
	err := service.CreateSlot(ctx, &models.ParkingSlot{SlotNumber: "A1", Zone: "north"})
	assert.Error(t, err)

	// same number in another zone is fine
	assert.NoError(t, service.CreateSlot(ctx, &models.ParkingSlot{SlotNumber: "A1", Zone: "south"}))

	// unknown type is rejected
	err = service.CreateSlot(ctx, &models.ParkingSlot{SlotNumber: "B1", Zone: "north", Type: "helipad"})
	assert.Error(t, err)
}

func TestSetOccupancy(t *testing.T) {
	service := NewParkingService(newMemParkingStore())
	ctx := context.Background()

	slot := &models.ParkingSlot{SlotNumber: "A1", Zone: "north"}
	require.NoError(t, service.CreateSlot(ctx, slot))

	occupied, err := service.SetOccupancy(ctx, slot.ID, true, "MH12AB1234")
	require.NoError(t, err)
	assert.True(t, occupied.IsOccupied)
	assert.Equal(t, "MH12AB1234", occupied.VehicleNumber)

	freed, err := service.SetOccupancy(ctx, slot.ID, false, "")
	require.NoError(t, err)
	assert.False(t, freed.IsOccupied)
	assert.Empty(t, freed.VehicleNumber)
}

func TestBulkUpdate(t *testing.T) {
	store := newMemParkingStore()
	service := NewParkingService(store)
	ctx := context.Background()

	for _, n := range []string{"A1", "A2", "A3"} {
		require.NoError(t, service.CreateSlot(ctx, &models.ParkingSlot{SlotNumber: n, Zone: "north"}))
	}

	applied, skipped, err := service.BulkUpdate(ctx, []SlotUpdate{
		{SlotNumber: "A1", Zone: "north", IsOccupied: true},
		{SlotNumber: "A2", Zone: "north", IsOccupied: true},
		{SlotNumber: "A3", Zone: "north", IsOccupied: false}, // already free, no-op
		{SlotNumber: "Z9", Zone: "north", IsOccupied: true},  // unregistered, skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 1, skipped)

	free, err := service.Slots(ctx, true)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "A3", free[0].SlotNumber)
}

func TestOccupancy(t *testing.T) {
	service := NewParkingService(newMemParkingStore())
	ctx := context.Background()

	seed := func(number, zone string, occupied bool) {
		slot := &models.ParkingSlot{SlotNumber: number, Zone: zone}
		require.NoError(t, service.CreateSlot(ctx, slot))
		if occupied {
			_, err := service.SetOccupancy(ctx, slot.ID, true, "")
			require.NoError(t, err)
		}
	}

	seed("A1", "north", true)
	seed("A2", "north", false)
	seed("B1", "south", true)

	zones, err := service.Occupancy(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)

	assert.Equal(t, models.ParkingOccupancy{Zone: "north", Total: 2, Occupied: 1, Available: 1}, zones[0])
	assert.Equal(t, models.ParkingOccupancy{Zone: "south", Total: 1, Occupied: 1, Available: 0}, zones[1])
}
