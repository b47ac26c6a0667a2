package models

import (
	"time"
)

type ParkingSlotType string

const (
	ParkingRegular     ParkingSlotType = "regular"
	ParkingHandicapped ParkingSlotType = "handicapped"
	ParkingVIP         ParkingSlotType = "vip"
	ParkingTwoWheeler  ParkingSlotType = "two-wheeler"
	ParkingFourWheeler ParkingSlotType = "four-wheeler"
)

func (t ParkingSlotType) IsValid() bool {
	switch t {
	case ParkingRegular, ParkingHandicapped, ParkingVIP, ParkingTwoWheeler, ParkingFourWheeler:
		return true
	}
	return false
}

// ParkingSlot is one physical parking space. slotNumber+zone is unique.
type ParkingSlot struct {
	ID            string          `json:"id"`
	SlotNumber    string          `json:"slot_number"`
	Zone          string          `json:"zone"`
	Type          ParkingSlotType `json:"type"`
	IsOccupied    bool            `json:"is_occupied"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// ParkingOccupancy summarizes a zone for the dashboard.
type ParkingOccupancy struct {
	Zone      string `json:"zone"`
	Total     int    `json:"total"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
}
