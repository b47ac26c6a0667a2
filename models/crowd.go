package models

import (
	"time"
)

// AlertLevel is the per-zone density classification from the CV system.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "normal"
	AlertWarning  AlertLevel = "warning"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

func (l AlertLevel) IsValid() bool {
	switch l {
	case AlertNormal, AlertWarning, AlertHigh, AlertCritical:
		return true
	}
	return false
}

// RushStatus is the frame-wide classification derived from zone levels.
type RushStatus string

const (
	RushNormal   RushStatus = "normal"
	RushModerate RushStatus = "moderate"
	RushHigh     RushStatus = "high"
	RushCritical RushStatus = "critical"
)

// BoundingBox is one tracked person detection inside a zone.
type BoundingBox struct {
	X1      int `json:"x1"`
	Y1      int `json:"y1"`
	X2      int `json:"x2"`
	Y2      int `json:"y2"`
	TrackID int `json:"track_id"`
}

// ZoneData is one zone's slice of a heatmap frame.
type ZoneData struct {
	ZoneID        string        `json:"zone_id"`
	ZoneName      string        `json:"zone_name"`
	PeopleCount   int           `json:"people_count"`
	Density       float64       `json:"density"`
	HeatmapGrid   [][]float64   `json:"heatmap_grid"`
	AlertLevel    AlertLevel    `json:"alert_level"`
	BoundingBoxes []BoundingBox `json:"bounding_boxes,omitempty"`
}

// CrowdHeatmap is one ingested CV frame.
type CrowdHeatmap struct {
	ID                 string     `json:"id"`
	Timestamp          time.Time  `json:"timestamp"`
	OverallPeopleCount int        `json:"overall_people_count"`
	OverallRushStatus  RushStatus `json:"overall_rush_status"`
	Zones              []ZoneData `json:"zones"`
	FrameWidth         int        `json:"frame_width"`
	FrameHeight        int        `json:"frame_height"`
	AlertTriggered     bool       `json:"alert_triggered"`
	EmergencyRequestID string     `json:"emergency_request_id,omitempty"`
}

// ZoneThresholds are people-count cut lines for a zone.
type ZoneThresholds struct {
	Warning  int `json:"warning"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}
