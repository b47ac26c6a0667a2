package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingActive.CanTransitionTo(BookingUsed))
	assert.True(t, BookingActive.CanTransitionTo(BookingExpired))
	assert.True(t, BookingActive.CanTransitionTo(BookingCancelled))

	// every non-active state is terminal
	for _, s := range []BookingStatus{BookingUsed, BookingExpired, BookingCancelled} {
		assert.False(t, s.CanTransitionTo(BookingActive), string(s))
		assert.False(t, s.CanTransitionTo(BookingUsed), string(s))
	}

	assert.True(t, BookingActive.IsValid())
	assert.False(t, BookingStatus("archived").IsValid())
}

func TestQueueLinkStatusTransitions(t *testing.T) {
	assert.True(t, QueueLinkNone.CanTransitionTo(QueueLinkPending))
	assert.True(t, QueueLinkNone.CanTransitionTo(QueueLinkInQueue))
	assert.True(t, QueueLinkPending.CanTransitionTo(QueueLinkInQueue))
	assert.True(t, QueueLinkInQueue.CanTransitionTo(QueueLinkCompleted))
	// leaving the queue moves the booking back to pending
	assert.True(t, QueueLinkInQueue.CanTransitionTo(QueueLinkPending))

	assert.False(t, QueueLinkCompleted.CanTransitionTo(QueueLinkInQueue))
	assert.False(t, QueueLinkExpired.CanTransitionTo(QueueLinkPending))
}

func TestQueueEntryStatusTransitions(t *testing.T) {
	assert.True(t, QueueEntryActive.CanTransitionTo(QueueEntryCompleted))
	assert.True(t, QueueEntryActive.CanTransitionTo(QueueEntryLeft))
	assert.True(t, QueueEntryActive.CanTransitionTo(QueueEntrySkipped))

	// a left entry can only rejoin
	assert.True(t, QueueEntryLeft.CanTransitionTo(QueueEntryActive))
	assert.False(t, QueueEntryLeft.CanTransitionTo(QueueEntryCompleted))

	assert.False(t, QueueEntryCompleted.CanTransitionTo(QueueEntryActive))
	assert.False(t, QueueEntrySkipped.CanTransitionTo(QueueEntryActive))
}

func TestEmergencyStatusTransitions(t *testing.T) {
	assert.True(t, EmergencyPending.CanTransitionTo(EmergencyInProgress))
	assert.True(t, EmergencyPending.CanTransitionTo(EmergencyResolved))
	assert.True(t, EmergencyPending.CanTransitionTo(EmergencyCancelled))
	assert.True(t, EmergencyInProgress.CanTransitionTo(EmergencyResolved))

	assert.False(t, EmergencyResolved.CanTransitionTo(EmergencyInProgress))
	assert.False(t, EmergencyCancelled.CanTransitionTo(EmergencyPending))
}

func TestEmergencyPriorityRank(t *testing.T) {
	assert.Less(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, EmergencyPriority("unset").Rank(), PriorityLow.Rank())
}

func TestBookingQueueInfoHelpers(t *testing.T) {
	b := &Booking{Status: BookingActive}

	b.SetQueueInfo(3, 15, true)
	assert.Equal(t, QueueLinkInQueue, b.QueueStatus)
	assert.Equal(t, 3, *b.QueuePosition)
	assert.Equal(t, 15, *b.EstimatedWait)
	assert.True(t, b.AutoQueued)

	b.ClearQueueInfo(QueueLinkCompleted)
	assert.Equal(t, QueueLinkCompleted, b.QueueStatus)
	assert.Nil(t, b.QueuePosition)
	assert.Nil(t, b.EstimatedWait)
}

func TestTempleSlotCapacity(t *testing.T) {
	temple := &Temple{
		Capacity: 100,
		TimeSlots: []TimeSlot{
			{Slot: "14:00-15:00", Capacity: 40},
			{Slot: "18:00-19:00", Capacity: 0},
		},
	}

	assert.Equal(t, 40, temple.SlotCapacity("14:00-15:00"))
	// zero-capacity slot falls back to the temple-wide limit
	assert.Equal(t, 100, temple.SlotCapacity("18:00-19:00"))
	assert.Equal(t, 100, temple.SlotCapacity("06:00-07:00"))
}

func TestParkingSlotTypeIsValid(t *testing.T) {
	for _, pt := range []ParkingSlotType{ParkingRegular, ParkingHandicapped, ParkingVIP, ParkingTwoWheeler, ParkingFourWheeler} {
		assert.True(t, pt.IsValid(), string(pt))
	}
	assert.False(t, ParkingSlotType("helipad").IsValid())
}

func TestAlertLevelIsValid(t *testing.T) {
	assert.True(t, AlertNormal.IsValid())
	assert.True(t, AlertCritical.IsValid())
	assert.False(t, AlertLevel("panic").IsValid())
}
