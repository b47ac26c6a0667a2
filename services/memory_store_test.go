package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"temple-system/internal/status"
	"temple-system/models"
)

// In-memory store fakes. Each method is individually atomic, like a real
// database, but nothing serializes sequences of calls; that is the queue
// service's job.

type memQueueStore struct {
	mu      sync.Mutex
	seq     int
	entries map[string]*models.QueueEntry
}

func newMemQueueStore() *memQueueStore {
	return &memQueueStore{entries: map[string]*models.QueueEntry{}}
}

func (m *memQueueStore) clone(e *models.QueueEntry) *models.QueueEntry {
	c := *e
	return &c
}

func (m *memQueueStore) EntryByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return m.clone(e), nil
}

func (m *memQueueStore) EntryByBooking(ctx context.Context, bookingID string) (*models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.BookingID == bookingID {
			return m.clone(e), nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memQueueStore) CountActive(ctx context.Context, templeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.entries {
		if e.TempleID == templeID && e.Status == models.QueueEntryActive {
			count++
		}
	}
	return count, nil
}

func (m *memQueueStore) CreateEntry(ctx context.Context, entry *models.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.ID = fmt.Sprintf("entry-%d", m.seq)
	m.entries[entry.ID] = m.clone(entry)
	return nil
}

func (m *memQueueStore) UpdateEntry(ctx context.Context, entry *models.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return status.ErrNotFound
	}
	m.entries[entry.ID] = m.clone(entry)
	return nil
}

func (m *memQueueStore) ActiveEntries(ctx context.Context, templeID string) ([]*models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var active []*models.QueueEntry
	for _, e := range m.entries {
		if e.TempleID == templeID && e.Status == models.QueueEntryActive {
			active = append(active, m.clone(e))
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Position < active[j].Position })
	return active, nil
}

func (m *memQueueStore) ShiftPositionsAfter(ctx context.Context, templeID string, removedPosition int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.TempleID == templeID && e.Status == models.QueueEntryActive && e.Position > removedPosition {
			e.Position--
		}
	}
	return nil
}

func (m *memQueueStore) CompleteAndShift(ctx context.Context, templeID string) (*models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var front *models.QueueEntry
	for _, e := range m.entries {
		if e.TempleID == templeID && e.Status == models.QueueEntryActive && e.Position == 1 {
			front = e
			break
		}
	}
	if front == nil {
		return nil, nil
	}

	now := time.Now()
	front.Status = models.QueueEntryCompleted
	front.CompletedAt = &now
	for _, e := range m.entries {
		if e.TempleID == templeID && e.Status == models.QueueEntryActive && e.Position > 1 {
			e.Position--
		}
	}
	return m.clone(front), nil
}

type memBookingStore struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*models.Booking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{bookings: map[string]*models.Booking{}}
}

func (m *memBookingStore) clone(b *models.Booking) *models.Booking {
	c := *b
	if b.QueuePosition != nil {
		p := *b.QueuePosition
		c.QueuePosition = &p
	}
	if b.EstimatedWait != nil {
		w := *b.EstimatedWait
		c.EstimatedWait = &w
	}
	return &c
}

func (m *memBookingStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return m.clone(b), nil
}

func (m *memBookingStore) BookingByToken(ctx context.Context, tokenNumber string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.TokenNumber == tokenNumber {
			return m.clone(b), nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memBookingStore) BookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, m.clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memBookingStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("booking-%d", m.seq)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	m.bookings[b.ID] = m.clone(b)
	return nil
}

func (m *memBookingStore) UpdateBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return status.ErrNotFound
	}
	m.bookings[b.ID] = m.clone(b)
	return nil
}

func (m *memBookingStore) CountActiveForSlot(ctx context.Context, templeID string, visitDate time.Time, timeSlot string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.bookings {
		if b.TempleID == templeID && b.TimeSlot == timeSlot &&
			b.Status == models.BookingActive && sameDay(b.VisitDate, visitDate) {
			count++
		}
	}
	return count, nil
}

func (m *memBookingStore) FindExpired(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, b := range m.bookings {
		if b.Status == models.BookingActive && b.VisitDate.Before(now) {
			out = append(out, m.clone(b))
		}
	}
	return out, nil
}

func (m *memBookingStore) ExpireBefore(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Status == models.BookingActive && b.VisitDate.Before(now) {
			b.Status = models.BookingExpired
			b.QueueStatus = models.QueueLinkExpired
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

type memTempleStore struct {
	mu      sync.Mutex
	temples map[string]*models.Temple
}

func newMemTempleStore(temples ...*models.Temple) *memTempleStore {
	s := &memTempleStore{temples: map[string]*models.Temple{}}
	for _, t := range temples {
		s.temples[t.ID] = t
	}
	return s
}

func (m *memTempleStore) TempleByID(ctx context.Context, id string) (*models.Temple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.temples[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return t, nil
}

func (m *memTempleStore) ActiveTemples(ctx context.Context) ([]*models.Temple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Temple
	for _, t := range m.temples {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type memContacts struct {
	names  map[string]string
	phones map[string]string
}

func (m *memContacts) UserContact(ctx context.Context, userID string) (string, string, error) {
	name, ok := m.names[userID]
	if !ok {
		return "", "", status.ErrNotFound
	}
	return name, m.phones[userID], nil
}

type memEmergencyStore struct {
	mu          sync.Mutex
	seq         int
	emergencies map[string]*models.EmergencyRequest
}

func newMemEmergencyStore() *memEmergencyStore {
	return &memEmergencyStore{emergencies: map[string]*models.EmergencyRequest{}}
}

func (m *memEmergencyStore) EmergencyByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emergencies[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (m *memEmergencyStore) CreateEmergency(ctx context.Context, e *models.EmergencyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.ID = fmt.Sprintf("emergency-%d", m.seq)
	c := *e
	m.emergencies[e.ID] = &c
	return nil
}

func (m *memEmergencyStore) UpdateEmergency(ctx context.Context, e *models.EmergencyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emergencies[e.ID]; !ok {
		return status.ErrNotFound
	}
	c := *e
	m.emergencies[e.ID] = &c
	return nil
}

func (m *memEmergencyStore) EmergenciesByStatus(ctx context.Context, s models.EmergencyStatus) ([]*models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.EmergencyRequest
	for _, e := range m.emergencies {
		if s == "" || e.Status == s {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memEmergencyStore) CountEmergencies(ctx context.Context, s models.EmergencyStatus) (int, error) {
	list, _ := m.EmergenciesByStatus(ctx, s)
	return len(list), nil
}

type memParkingStore struct {
	mu    sync.Mutex
	seq   int
	slots map[string]*models.ParkingSlot
}

func newMemParkingStore() *memParkingStore {
	return &memParkingStore{slots: map[string]*models.ParkingSlot{}}
}

func (m *memParkingStore) SlotByID(ctx context.Context, id string) (*models.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (m *memParkingStore) SlotByNumber(ctx context.Context, slotNumber, zone string) (*models.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.SlotNumber == slotNumber && s.Zone == zone {
			c := *s
			return &c, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memParkingStore) CreateSlot(ctx context.Context, s *models.ParkingSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s.ID = fmt.Sprintf("slot-%d", m.seq)
	c := *s
	m.slots[s.ID] = &c
	return nil
}

func (m *memParkingStore) UpdateSlot(ctx context.Context, s *models.ParkingSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[s.ID]; !ok {
		return status.ErrNotFound
	}
	c := *s
	m.slots[s.ID] = &c
	return nil
}

func (m *memParkingStore) Slots(ctx context.Context, onlyAvailable bool) ([]*models.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ParkingSlot
	for _, s := range m.slots {
		if onlyAvailable && s.IsOccupied {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

type memCrowdStore struct {
	mu     sync.Mutex
	seq    int
	frames []*models.CrowdHeatmap
}

func newMemCrowdStore() *memCrowdStore {
	return &memCrowdStore{}
}

func (m *memCrowdStore) CreateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	h.ID = fmt.Sprintf("frame-%d", m.seq)
	c := *h
	m.frames = append(m.frames, &c)
	return nil
}

func (m *memCrowdStore) UpdateHeatmap(ctx context.Context, h *models.CrowdHeatmap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.frames {
		if f.ID == h.ID {
			c := *h
			m.frames[i] = &c
			return nil
		}
	}
	return status.ErrNotFound
}

func (m *memCrowdStore) LatestHeatmap(ctx context.Context) (*models.CrowdHeatmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return nil, status.ErrNotFound
	}
	c := *m.frames[len(m.frames)-1]
	return &c, nil
}

func (m *memCrowdStore) HeatmapsSince(ctx context.Context, since time.Time) ([]*models.CrowdHeatmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CrowdHeatmap
	for _, f := range m.frames {
		if !f.Timestamp.Before(since) {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}
