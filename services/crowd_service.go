package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"temple-system/config"
	"temple-system/models"
	"temple-system/monitoring"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

const (
	alertCooldownKeyFmt  = "crowd:alert:last:%s"
	zoneThresholdsKeyFmt = "crowd:thresholds:%s"
)

// defaultZoneThresholds are the people-count cut lines used when a zone has
// no Redis override. Keys match the zone IDs the CV pipeline emits.
var defaultZoneThresholds = map[string]models.ZoneThresholds{
	"entrance": {Warning: 30, High: 45, Critical: 60},
	"queue":    {Warning: 40, High: 60, Critical: 80},
	"darshan":  {Warning: 50, High: 70, Critical: 90},
	"parking":  {Warning: 20, High: 30, Critical: 40},
	"default":  {Warning: 25, High: 40, Critical: 55},
}

// densityThresholds classify a zone by density when its people count alone
// does not trip a level.
var densityThresholds = struct {
	Warning, High, Critical float64
}{0.4, 0.6, 0.8}

// CrowdService ingests CV heatmap frames, classifies zones, raises security
// emergencies for overcrowded zones and feeds the analytics endpoints.
type CrowdService struct {
	store       CrowdStore
	emergencies *EmergencyService
	Redis       *redis.Client
	pubnub      *pubnub.PubNub
	config      *config.Config
}

func NewCrowdService(store CrowdStore, emergencies *EmergencyService, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config) *CrowdService {
	return &CrowdService{
		store:       store,
		emergencies: emergencies,
		Redis:       redisClient,
		pubnub:      pn,
		config:      cfg,
	}
}

// ZoneThresholds returns the effective thresholds for a zone, preferring a
// Redis override over the built-in defaults.
func (s *CrowdService) ZoneThresholds(ctx context.Context, zoneID string) models.ZoneThresholds {
	if s.Redis != nil {
		key := fmt.Sprintf(zoneThresholdsKeyFmt, zoneID)
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var t models.ZoneThresholds
			if err := json.Unmarshal([]byte(raw), &t); err == nil && t.Critical > 0 {
				return t
			}
		}
	}

	if t, ok := defaultZoneThresholds[zoneID]; ok {
		return t
	}
	return defaultZoneThresholds["default"]
}

// ConfigureThresholds stores an override for one zone.
func (s *CrowdService) ConfigureThresholds(ctx context.Context, zoneID string, t models.ZoneThresholds) error {
	if t.Warning <= 0 || t.High <= t.Warning || t.Critical <= t.High {
		return fmt.Errorf("thresholds must satisfy 0 < warning < high < critical")
	}
	if s.Redis == nil {
		return fmt.Errorf("threshold overrides need redis")
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(zoneThresholdsKeyFmt, zoneID)
	if err := s.Redis.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store thresholds: %w", err)
	}

	slog.Info("zone thresholds configured", "zone", zoneID,
		"warning", t.Warning, "high", t.High, "critical", t.Critical)
	return nil
}

// classifyZone derives the alert level from people count and density.
func (s *CrowdService) classifyZone(ctx context.Context, zone *models.ZoneData) models.AlertLevel {
	t := s.ZoneThresholds(ctx, zone.ZoneID)

	switch {
	case zone.PeopleCount >= t.Critical || zone.Density >= densityThresholds.Critical:
		return models.AlertCritical
	case zone.PeopleCount >= t.High || zone.Density >= densityThresholds.High:
		return models.AlertHigh
	case zone.PeopleCount >= t.Warning || zone.Density >= densityThresholds.Warning:
		return models.AlertWarning
	default:
		return models.AlertNormal
	}
}

// overallRush collapses zone levels into the frame-wide status.
func overallRush(zones []models.ZoneData) models.RushStatus {
	rush := models.RushNormal
	for _, z := range zones {
		switch z.AlertLevel {
		case models.AlertCritical:
			return models.RushCritical
		case models.AlertHigh:
			rush = models.RushHigh
		case models.AlertWarning:
			if rush == models.RushNormal {
				rush = models.RushModerate
			}
		}
	}
	return rush
}

// IngestHeatmap stores one CV frame, classifies its zones and raises alerts
// for zones at high or critical outside their cooldown window.
func (s *CrowdService) IngestHeatmap(ctx context.Context, frame *models.CrowdHeatmap) (*models.CrowdHeatmap, error) {
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}

	total := 0
	for i := range frame.Zones {
		zone := &frame.Zones[i]
		zone.AlertLevel = s.classifyZone(ctx, zone)
		total += zone.PeopleCount
		monitoring.SetZonePeopleCount(zone.ZoneID, zone.PeopleCount)
	}
	frame.OverallPeopleCount = total
	frame.OverallRushStatus = overallRush(frame.Zones)

	if err := s.store.CreateHeatmap(ctx, frame); err != nil {
		return nil, err
	}

	for i := range frame.Zones {
		zone := &frame.Zones[i]
		if zone.AlertLevel != models.AlertHigh && zone.AlertLevel != models.AlertCritical {
			continue
		}
		if !s.cooldownElapsed(ctx, zone.ZoneID, frame.Timestamp) {
			continue
		}
		s.raiseAlert(ctx, frame, zone)
	}

	s.publishHeatmapUpdate(frame)
	if frame.OverallRushStatus == models.RushHigh || frame.OverallRushStatus == models.RushCritical {
		s.publishRushAlert(frame)
	}

	return frame, nil
}

// cooldownElapsed checks and arms the per-zone alert cooldown.
func (s *CrowdService) cooldownElapsed(ctx context.Context, zoneID string, now time.Time) bool {
	if s.Redis == nil {
		return true
	}

	cooldown := 10 * time.Minute
	if s.config != nil && s.config.AlertCooldown > 0 {
		cooldown = s.config.AlertCooldown
	}

	key := fmt.Sprintf(alertCooldownKeyFmt, zoneID)
	last, err := s.Redis.Get(ctx, key).Int64()
	if err == nil && now.Sub(time.UnixMilli(last)) < cooldown {
		return false
	}

	if err := s.Redis.Set(ctx, key, now.UnixMilli(), cooldown).Err(); err != nil {
		slog.Warn("alert cooldown write failed", "zone", zoneID, "error", err)
	}
	return true
}

func (s *CrowdService) raiseAlert(ctx context.Context, frame *models.CrowdHeatmap, zone *models.ZoneData) {
	priority := models.PriorityHigh
	if zone.AlertLevel == models.AlertCritical {
		priority = models.PriorityCritical
	}

	req := &models.EmergencyRequest{
		Type: models.EmergencySecurity,
		Description: fmt.Sprintf("Crowd alert: %d people detected in %s (density %.2f)",
			zone.PeopleCount, zone.ZoneName, zone.Density),
		Location: zone.ZoneName,
		Priority: priority,
	}
	if s.emergencies == nil {
		return
	}
	if err := s.emergencies.CreateSystemAlert(ctx, req); err != nil {
		slog.Error("crowd alert emergency failed", "zone", zone.ZoneID, "error", err)
		return
	}

	frame.AlertTriggered = true
	frame.EmergencyRequestID = req.ID
	if err := s.store.UpdateHeatmap(ctx, frame); err != nil {
		slog.Warn("heatmap alert linkage update failed", "frame", frame.ID, "error", err)
	}

	slog.Warn("crowd alert raised", "zone", zone.ZoneID,
		"people", zone.PeopleCount, "level", zone.AlertLevel)
}

// CurrentHeatmap returns the most recently ingested frame.
func (s *CrowdService) CurrentHeatmap(ctx context.Context) (*models.CrowdHeatmap, error) {
	return s.store.LatestHeatmap(ctx)
}

// ZoneHistory returns one zone's samples over the trailing window.
func (s *CrowdService) ZoneHistory(ctx context.Context, zoneID string, hours int) ([]models.ZoneData, error) {
	if hours <= 0 {
		hours = 24
	}
	frames, err := s.store.HeatmapsSince(ctx, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}

	history := make([]models.ZoneData, 0, len(frames))
	for _, frame := range frames {
		for _, zone := range frame.Zones {
			if zone.ZoneID == zoneID {
				history = append(history, zone)
			}
		}
	}
	return history, nil
}

// CrowdAnalytics summarizes the trailing window for the dashboard.
type CrowdAnalytics struct {
	WindowHours   int                `json:"window_hours"`
	Frames        int                `json:"frames"`
	PeakCount     int                `json:"peak_count"`
	PeakAt        time.Time          `json:"peak_at"`
	HourlyAverage map[string]float64 `json:"hourly_average"` // "15:00" -> avg people
	AlertsRaised  int                `json:"alerts_raised"`
}

// Analytics computes peak and hourly averages over the trailing window.
func (s *CrowdService) Analytics(ctx context.Context, hours int) (*CrowdAnalytics, error) {
	if hours <= 0 {
		hours = 24
	}
	frames, err := s.store.HeatmapsSince(ctx, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}

	out := &CrowdAnalytics{
		WindowHours:   hours,
		Frames:        len(frames),
		HourlyAverage: map[string]float64{},
	}

	sums := map[string]int{}
	counts := map[string]int{}
	for _, frame := range frames {
		if frame.OverallPeopleCount > out.PeakCount {
			out.PeakCount = frame.OverallPeopleCount
			out.PeakAt = frame.Timestamp
		}
		if frame.AlertTriggered {
			out.AlertsRaised++
		}
		hour := frame.Timestamp.Format("15:00")
		sums[hour] += frame.OverallPeopleCount
		counts[hour]++
	}

	hoursSeen := make([]string, 0, len(sums))
	for h := range sums {
		hoursSeen = append(hoursSeen, h)
	}
	sort.Strings(hoursSeen)
	for _, h := range hoursSeen {
		out.HourlyAverage[h] = float64(sums[h]) / float64(counts[h])
	}

	return out, nil
}

func (s *CrowdService) publishHeatmapUpdate(frame *models.CrowdHeatmap) {
	if s.pubnub == nil {
		return
	}
	s.pubnub.Publish().
		Channel("crowd").
		Message(map[string]any{
			"type":         "heatmap-update",
			"rush_status":  string(frame.OverallRushStatus),
			"people_count": frame.OverallPeopleCount,
			"timestamp":    frame.Timestamp.UnixMilli(),
		}).
		Execute()
}

func (s *CrowdService) publishRushAlert(frame *models.CrowdHeatmap) {
	if s.pubnub == nil {
		return
	}
	s.pubnub.Publish().
		Channel("crowd").
		Message(map[string]any{
			"type":         "rush-alert",
			"rush_status":  string(frame.OverallRushStatus),
			"people_count": frame.OverallPeopleCount,
		}).
		Execute()
}
