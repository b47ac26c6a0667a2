package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"temple-system/internal/status"
	"temple-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// RecordStore implements the store interfaces on top of PocketBase records.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func wrapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

// ---- queue entries ----

func queueEntryFromRecord(rec *core.Record) *models.QueueEntry {
	entry := &models.QueueEntry{
		ID:                rec.Id,
		UserID:            rec.GetString("user_id"),
		BookingID:         rec.GetString("booking_id"),
		TempleID:          rec.GetString("temple_id"),
		Position:          rec.GetInt("position"),
		Status:            models.QueueEntryStatus(rec.GetString("status")),
		AssignedVolunteer: rec.GetString("assigned_volunteer"),
		EstimatedWait:     rec.GetInt("estimated_wait"),
		JoinedAt:          rec.GetDateTime("joined_at").Time(),
	}
	if dt := rec.GetDateTime("rejoined_at"); !dt.IsZero() {
		t := dt.Time()
		entry.RejoinedAt = &t
	}
	if dt := rec.GetDateTime("completed_at"); !dt.IsZero() {
		t := dt.Time()
		entry.CompletedAt = &t
	}
	return entry
}

func (r *RecordStore) fillQueueEntryRecord(rec *core.Record, entry *models.QueueEntry) {
	rec.Set("user_id", entry.UserID)
	rec.Set("booking_id", entry.BookingID)
	rec.Set("temple_id", entry.TempleID)
	rec.Set("position", entry.Position)
	rec.Set("status", string(entry.Status))
	rec.Set("assigned_volunteer", entry.AssignedVolunteer)
	rec.Set("estimated_wait", entry.EstimatedWait)
	rec.Set("joined_at", entry.JoinedAt)
	if entry.RejoinedAt != nil {
		rec.Set("rejoined_at", *entry.RejoinedAt)
	}
	if entry.CompletedAt != nil {
		rec.Set("completed_at", *entry.CompletedAt)
	}
}

func (r *RecordStore) EntryByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	rec, err := r.app.FindRecordById("queue_entries", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return queueEntryFromRecord(rec), nil
}

func (r *RecordStore) EntryByBooking(ctx context.Context, bookingID string) (*models.QueueEntry, error) {
	rec, err := r.app.FindFirstRecordByFilter(
		"queue_entries",
		"booking_id = {:booking}",
		dbx.Params{"booking": bookingID},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return queueEntryFromRecord(rec), nil
}

func (r *RecordStore) CountActive(ctx context.Context, templeID string) (int, error) {
	total, err := r.app.CountRecords("queue_entries", dbx.HashExp{
		"temple_id": templeID,
		"status":    string(models.QueueEntryActive),
	})
	return int(total), err
}

func (r *RecordStore) CreateEntry(ctx context.Context, entry *models.QueueEntry) error {
	collection, err := r.app.FindCollectionByNameOrId("queue_entries")
	if err != nil {
		return err
	}
	rec := core.NewRecord(collection)
	r.fillQueueEntryRecord(rec, entry)
	if err := r.app.Save(rec); err != nil {
		return fmt.Errorf("create queue entry: %w", err)
	}
	entry.ID = rec.Id
	return nil
}

func (r *RecordStore) UpdateEntry(ctx context.Context, entry *models.QueueEntry) error {
	rec, err := r.app.FindRecordById("queue_entries", entry.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	r.fillQueueEntryRecord(rec, entry)
	return r.app.Save(rec)
}

func (r *RecordStore) ActiveEntries(ctx context.Context, templeID string) ([]*models.QueueEntry, error) {
	recs, err := r.app.FindRecordsByFilter(
		"queue_entries",
		"temple_id = {:temple} && status = 'active'",
		"+position",
		0,
		0,
		dbx.Params{"temple": templeID},
	)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.QueueEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, queueEntryFromRecord(rec))
	}
	return entries, nil
}

func (r *RecordStore) ShiftPositionsAfter(ctx context.Context, templeID string, removedPosition int) error {
	_, err := r.app.DB().NewQuery(
		"UPDATE queue_entries SET position = position - 1" +
			" WHERE temple_id = {:temple} AND status = 'active' AND position > {:pos}").
		Bind(dbx.Params{"temple": templeID, "pos": removedPosition}).
		Execute()
	return err
}

func (r *RecordStore) CompleteAndShift(ctx context.Context, templeID string) (*models.QueueEntry, error) {
	var completed *models.QueueEntry

	err := r.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindFirstRecordByFilter(
			"queue_entries",
			"temple_id = {:temple} && status = 'active' && position = 1",
			dbx.Params{"temple": templeID},
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		rec.Set("status", string(models.QueueEntryCompleted))
		rec.Set("completed_at", types.NowDateTime())
		if err := txApp.Save(rec); err != nil {
			return err
		}

		if _, err := txApp.DB().NewQuery(
			"UPDATE queue_entries SET position = position - 1" +
				" WHERE temple_id = {:temple} AND status = 'active' AND position > 1").
			Bind(dbx.Params{"temple": templeID}).
			Execute(); err != nil {
			return err
		}

		completed = queueEntryFromRecord(rec)
		return nil
	})

	return completed, err
}

// ---- bookings ----

func bookingFromRecord(rec *core.Record) *models.Booking {
	b := &models.Booking{
		ID:               rec.Id,
		UserID:           rec.GetString("user_id"),
		TempleID:         rec.GetString("temple_id"),
		TokenNumber:      rec.GetString("token_number"),
		VisitDate:        rec.GetDateTime("visit_date").Time(),
		TimeSlot:         rec.GetString("time_slot"),
		NumberOfVisitors: rec.GetInt("number_of_visitors"),
		Status:           models.BookingStatus(rec.GetString("status")),
		QRCode:           rec.GetString("qr_code"),
		QueueStatus:      models.QueueLinkStatus(rec.GetString("queue_status")),
		AutoQueued:       rec.GetBool("auto_queued"),
		CreatedAt:        rec.GetDateTime("created").Time(),
	}
	if pos := rec.GetInt("queue_position"); pos > 0 {
		b.QueuePosition = &pos
	}
	if wait := rec.GetInt("estimated_wait"); wait > 0 {
		w := wait
		b.EstimatedWait = &w
	}
	return b
}

func fillBookingRecord(rec *core.Record, b *models.Booking) {
	rec.Set("user_id", b.UserID)
	rec.Set("temple_id", b.TempleID)
	rec.Set("token_number", b.TokenNumber)
	rec.Set("visit_date", b.VisitDate)
	rec.Set("time_slot", b.TimeSlot)
	rec.Set("number_of_visitors", b.NumberOfVisitors)
	rec.Set("status", string(b.Status))
	rec.Set("qr_code", b.QRCode)
	rec.Set("queue_status", string(b.QueueStatus))
	rec.Set("auto_queued", b.AutoQueued)
	if b.QueuePosition != nil {
		rec.Set("queue_position", *b.QueuePosition)
	} else {
		rec.Set("queue_position", 0)
	}
	if b.EstimatedWait != nil {
		rec.Set("estimated_wait", *b.EstimatedWait)
	} else {
		rec.Set("estimated_wait", 0)
	}
}

func (r *RecordStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	rec, err := r.app.FindRecordById("bookings", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return bookingFromRecord(rec), nil
}

func (r *RecordStore) BookingByToken(ctx context.Context, tokenNumber string) (*models.Booking, error) {
	rec, err := r.app.FindFirstRecordByFilter(
		"bookings",
		"token_number = {:token}",
		dbx.Params{"token": tokenNumber},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return bookingFromRecord(rec), nil
}

func (r *RecordStore) BookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	recs, err := r.app.FindRecordsByFilter(
		"bookings",
		"user_id = {:user}",
		"-created",
		0,
		0,
		dbx.Params{"user": userID},
	)
	if err != nil {
		return nil, err
	}
	bookings := make([]*models.Booking, 0, len(recs))
	for _, rec := range recs {
		bookings = append(bookings, bookingFromRecord(rec))
	}
	return bookings, nil
}

func (r *RecordStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	collection, err := r.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		return err
	}
	rec := core.NewRecord(collection)
	fillBookingRecord(rec, b)
	if err := r.app.Save(rec); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	b.ID = rec.Id
	b.CreatedAt = rec.GetDateTime("created").Time()
	return nil
}

func (r *RecordStore) UpdateBooking(ctx context.Context, b *models.Booking) error {
	rec, err := r.app.FindRecordById("bookings", b.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	fillBookingRecord(rec, b)
	return r.app.Save(rec)
}

func (r *RecordStore) CountActiveForSlot(ctx context.Context, templeID string, visitDate time.Time, timeSlot string) (int, error) {
	dayStart, _ := types.ParseDateTime(startOfDay(visitDate))
	dayEnd, _ := types.ParseDateTime(startOfDay(visitDate).Add(24 * time.Hour))

	total, err := r.app.CountRecords("bookings", dbx.And(
		dbx.HashExp{
			"temple_id": templeID,
			"time_slot": timeSlot,
			"status":    string(models.BookingActive),
		},
		dbx.NewExp("visit_date >= {:start} AND visit_date < {:end}", dbx.Params{
			"start": dayStart,
			"end":   dayEnd,
		}),
	))
	return int(total), err
}

func (r *RecordStore) FindExpired(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	cutoff, _ := types.ParseDateTime(now)
	recs, err := r.app.FindRecordsByFilter(
		"bookings",
		"status = 'active' && visit_date < {:now}",
		"+visit_date",
		0,
		0,
		dbx.Params{"now": cutoff},
	)
	if err != nil {
		return nil, err
	}
	bookings := make([]*models.Booking, 0, len(recs))
	for _, rec := range recs {
		bookings = append(bookings, bookingFromRecord(rec))
	}
	return bookings, nil
}

func (r *RecordStore) ExpireBefore(ctx context.Context, now time.Time) error {
	cutoff, _ := types.ParseDateTime(now)
	_, err := r.app.DB().NewQuery(
		"UPDATE bookings SET status = 'expired', queue_status = 'expired'" +
			" WHERE status = 'active' AND visit_date < {:now}").
		Bind(dbx.Params{"now": cutoff}).
		Execute()
	return err
}

// ---- temples ----

func templeFromRecord(rec *core.Record) *models.Temple {
	t := &models.Temple{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Location:    rec.GetString("location"),
		Description: rec.GetString("description"),
		ImageURL:    rec.GetString("image_url"),
		Capacity:    rec.GetInt("capacity"),
		Opening:     rec.GetString("opening"),
		Closing:     rec.GetString("closing"),
		IsActive:    rec.GetBool("is_active"),
	}
	_ = rec.UnmarshalJSONField("time_slots", &t.TimeSlots)
	return t
}

func (r *RecordStore) TempleByID(ctx context.Context, id string) (*models.Temple, error) {
	rec, err := r.app.FindRecordById("temples", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return templeFromRecord(rec), nil
}

func (r *RecordStore) ActiveTemples(ctx context.Context) ([]*models.Temple, error) {
	recs, err := r.app.FindRecordsByFilter("temples", "is_active = true", "+name", 0, 0)
	if err != nil {
		return nil, err
	}
	temples := make([]*models.Temple, 0, len(recs))
	for _, rec := range recs {
		temples = append(temples, templeFromRecord(rec))
	}
	return temples, nil
}

// ---- emergencies ----

func emergencyFromRecord(rec *core.Record) *models.EmergencyRequest {
	e := &models.EmergencyRequest{
		ID:          rec.Id,
		UserID:      rec.GetString("user_id"),
		Type:        models.EmergencyType(rec.GetString("type")),
		Description: rec.GetString("description"),
		Location:    rec.GetString("location"),
		Status:      models.EmergencyStatus(rec.GetString("status")),
		Priority:    models.EmergencyPriority(rec.GetString("priority")),
		RespondedBy: rec.GetString("responded_by"),
		Response:    rec.GetString("response"),
		CreatedAt:   rec.GetDateTime("created").Time(),
	}
	if dt := rec.GetDateTime("responded_at"); !dt.IsZero() {
		t := dt.Time()
		e.RespondedAt = &t
	}
	return e
}

func fillEmergencyRecord(rec *core.Record, e *models.EmergencyRequest) {
	rec.Set("user_id", e.UserID)
	rec.Set("type", string(e.Type))
	rec.Set("description", e.Description)
	rec.Set("location", e.Location)
	rec.Set("status", string(e.Status))
	rec.Set("priority", string(e.Priority))
	rec.Set("responded_by", e.RespondedBy)
	rec.Set("response", e.Response)
	if e.RespondedAt != nil {
		rec.Set("responded_at", *e.RespondedAt)
	}
}

func (r *RecordStore) EmergencyByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	rec, err := r.app.FindRecordById("emergency_requests", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return emergencyFromRecord(rec), nil
}

func (r *RecordStore) CreateEmergency(ctx context.Context, e *models.EmergencyRequest) error {
	collection, err := r.app.FindCollectionByNameOrId("emergency_requests")
	if err != nil {
		return err
	}
	rec := core.NewRecord(collection)
	fillEmergencyRecord(rec, e)
	if err := r.app.Save(rec); err != nil {
		return fmt.Errorf("create emergency request: %w", err)
	}
	e.ID = rec.Id
	e.CreatedAt = rec.GetDateTime("created").Time()
	return nil
}

func (r *RecordStore) UpdateEmergency(ctx context.Context, e *models.EmergencyRequest) error {
	rec, err := r.app.FindRecordById("emergency_requests", e.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	fillEmergencyRecord(rec, e)
	return r.app.Save(rec)
}

func (r *RecordStore) EmergenciesByStatus(ctx context.Context, s models.EmergencyStatus) ([]*models.EmergencyRequest, error) {
	filter := "id != ''"
	params := dbx.Params{}
	if s != "" {
		filter = "status = {:status}"
		params["status"] = string(s)
	}
	recs, err := r.app.FindRecordsByFilter("emergency_requests", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, err
	}
	emergencies := make([]*models.EmergencyRequest, 0, len(recs))
	for _, rec := range recs {
		emergencies = append(emergencies, emergencyFromRecord(rec))
	}
	return emergencies, nil
}

func (r *RecordStore) CountEmergencies(ctx context.Context, s models.EmergencyStatus) (int, error) {
	exprs := []dbx.Expression{}
	if s != "" {
		exprs = append(exprs, dbx.HashExp{"status": string(s)})
	}
	total, err := r.app.CountRecords("emergency_requests", exprs...)
	return int(total), err
}

// ---- parking ----

func parkingSlotFromRecord(rec *core.Record) *models.ParkingSlot {
	return &models.ParkingSlot{
		ID:            rec.Id,
		SlotNumber:    rec.GetString("slot_number"),
		Zone:          rec.GetString("zone"),
		Type:          models.ParkingSlotType(rec.GetString("type")),
		IsOccupied:    rec.GetBool("is_occupied"),
		VehicleNumber: rec.GetString("vehicle_number"),
		LastUpdated:   rec.GetDateTime("last_updated").Time(),
	}
}

func fillParkingSlotRecord(rec *core.Record, s *models.ParkingSlot) {
	rec.Set("slot_number", s.SlotNumber)
	rec.Set("zone", s.Zone)
	rec.Set("type", string(s.Type))
	rec.Set("is_occupied", s.IsOccupied)
	rec.Set("vehicle_number", s.VehicleNumber)
	rec.Set("last_updated", s.LastUpdated)
}

func (r *RecordStore) SlotByID(ctx context.Context, id string) (*models.ParkingSlot, error) {
	rec, err := r.app.FindRecordById("parking_slots", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return parkingSlotFromRecord(rec), nil
}

func (r *RecordStore) SlotByNumber(ctx context.Context, slotNumber, zone string) (*models.ParkingSlot, error) {
	rec, err := r.app.FindFirstRecordByFilter(
		"parking_slots",
		"slot_number = {:slot} && zone = {:zone}",
		dbx.Params{"slot": slotNumber, "zone": zone},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return parkingSlotFromRecord(rec), nil
}

func (r *RecordStore) CreateSlot(ctx context.Context, s *models.ParkingSlot) error {
	collection, err := r.app.FindCollectionByNameOrId("parking_slots")
	if err != nil {
		return err
	}
	rec := core.NewRecord(collection)
	fillParkingSlotRecord(rec, s)
	if err := r.app.Save(rec); err != nil {
		return fmt.Errorf("create parking slot: %w", err)
	}
	s.ID = rec.Id
	return nil
}

func (r *RecordStore) UpdateSlot(ctx context.Context, s *models.ParkingSlot) error {
	rec, err := r.app.FindRecordById("parking_slots", s.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	fillParkingSlotRecord(rec, s)
	return r.app.Save(rec)
}

func (r *RecordStore) Slots(ctx context.Context, onlyAvailable bool) ([]*models.ParkingSlot, error) {
	filter := "id != ''"
	if onlyAvailable {
		filter = "is_occupied = false"
	}
	recs, err := r.app.FindRecordsByFilter("parking_slots", filter, "+slot_number", 0, 0)
	if err != nil {
		return nil, err
	}
	slots := make([]*models.ParkingSlot, 0, len(recs))
	for _, rec := range recs {
		slots = append(slots, parkingSlotFromRecord(rec))
	}
	return slots, nil
}

// ---- crowd heatmaps ----

func heatmapFromRecord(rec *core.Record) *models.CrowdHeatmap {
	h := &models.CrowdHeatmap{
		ID:                 rec.Id,
		Timestamp:          rec.GetDateTime("timestamp").Time(),
		OverallPeopleCount: rec.GetInt("overall_people_count"),
		OverallRushStatus:  models.RushStatus(rec.GetString("overall_rush_status")),
		FrameWidth:         rec.GetInt("frame_width"),
		FrameHeight:        rec.GetInt("frame_height"),
		AlertTriggered:     rec.GetBool("alert_triggered"),
		EmergencyRequestID: rec.GetString("emergency_request_id"),
	}
	_ = rec.UnmarshalJSONField("zones", &h.Zones)
	return h
}

func fillHeatmapRecord(rec *core.Record, h *models.CrowdHeatmap) error {
	zones, err := json.Marshal(h.Zones)
	if err != nil {
		return err
	}
	rec.Set("timestamp", h.Timestamp)
	rec.Set("overall_people_count", h.OverallPeopleCount)
	rec.Set("overall_rush_status", string(h.OverallRushStatus))
	rec.Set("zones", types.JSONRaw(zones))
	rec.Set("frame_width", h.FrameWidth)
	rec.Set("frame_height", h.FrameHeight)
	rec.Set("alert_triggered", h.AlertTriggered)
	rec.Set("emergency_request_id", h.EmergencyRequestID)
	return nil
}

func (r *RecordStore) CreateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error {
	collection, err := r.app.FindCollectionByNameOrId("crowd_heatmaps")
	if err != nil {
		return err
	}
	rec := core.NewRecord(collection)
	if err := fillHeatmapRecord(rec, h); err != nil {
		return err
	}
	if err := r.app.Save(rec); err != nil {
		return fmt.Errorf("create heatmap: %w", err)
	}
	h.ID = rec.Id
	return nil
}

func (r *RecordStore) UpdateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error {
	rec, err := r.app.FindRecordById("crowd_heatmaps", h.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	if err := fillHeatmapRecord(rec, h); err != nil {
		return err
	}
	return r.app.Save(rec)
}

func (r *RecordStore) LatestHeatmap(ctx context.Context) (*models.CrowdHeatmap, error) {
	recs, err := r.app.FindRecordsByFilter("crowd_heatmaps", "id != ''", "-timestamp", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, status.ErrNotFound
	}
	return heatmapFromRecord(recs[0]), nil
}

func (r *RecordStore) HeatmapsSince(ctx context.Context, since time.Time) ([]*models.CrowdHeatmap, error) {
	cutoff, _ := types.ParseDateTime(since)
	recs, err := r.app.FindRecordsByFilter(
		"crowd_heatmaps",
		"timestamp >= {:since}",
		"+timestamp",
		0,
		0,
		dbx.Params{"since": cutoff},
	)
	if err != nil {
		return nil, err
	}
	heatmaps := make([]*models.CrowdHeatmap, 0, len(recs))
	for _, rec := range recs {
		heatmaps = append(heatmaps, heatmapFromRecord(rec))
	}
	return heatmaps, nil
}

// ---- users / dashboard ----

// FindAdminUserID returns the first admin user, or "" when none exists.
func (r *RecordStore) FindAdminUserID(ctx context.Context) string {
	rec, err := r.app.FindFirstRecordByFilter("users", "role = 'admin'")
	if err != nil {
		return ""
	}
	return rec.Id
}

// UserContact resolves a user's display name and phone for notifications.
func (r *RecordStore) UserContact(ctx context.Context, userID string) (name, phone string, err error) {
	rec, err := r.app.FindRecordById("users", userID)
	if err != nil {
		return "", "", wrapNotFound(err)
	}
	return rec.GetString("name"), rec.GetString("phone"), nil
}

// DashboardStats aggregates the admin dashboard counters.
type DashboardStats struct {
	TotalUsers         int `json:"total_users"`
	TotalVisitors      int `json:"total_visitors"`
	TotalVolunteers    int `json:"total_volunteers"`
	TotalBookings      int `json:"total_bookings"`
	ActiveBookings     int `json:"active_bookings"`
	ActiveQueues       int `json:"active_queues"`
	PendingEmergencies int `json:"pending_emergencies"`
	TotalTemples       int `json:"total_temples"`
	RecentBookings     int `json:"recent_bookings"`
}

func (r *RecordStore) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	count := func(collection string, exprs ...dbx.Expression) int {
		total, err := r.app.CountRecords(collection, exprs...)
		if err != nil {
			return 0
		}
		return int(total)
	}

	weekAgo, _ := types.ParseDateTime(now.AddDate(0, 0, -7))

	stats.TotalUsers = count("users")
	stats.TotalVisitors = count("users", dbx.HashExp{"role": "visitor"})
	stats.TotalVolunteers = count("users", dbx.HashExp{"role": "volunteer"})
	stats.TotalBookings = count("bookings")
	stats.ActiveBookings = count("bookings", dbx.HashExp{"status": string(models.BookingActive)})
	stats.ActiveQueues = count("queue_entries", dbx.HashExp{"status": string(models.QueueEntryActive)})
	stats.PendingEmergencies = count("emergency_requests", dbx.HashExp{"status": string(models.EmergencyPending)})
	stats.TotalTemples = count("temples", dbx.HashExp{"is_active": true})
	stats.RecentBookings = count("bookings", dbx.NewExp("created >= {:since}", dbx.Params{"since": weekAgo}))

	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
