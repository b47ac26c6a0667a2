package models

// TimeSlot is one bookable window with its own capacity.
type TimeSlot struct {
	Slot     string `json:"slot"` // "HH:MM-HH:MM"
	Capacity int    `json:"capacity"`
}

// Temple is a managed site. Consumed read-only by the queue logic.
type Temple struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Capacity    int        `json:"capacity"`
	Opening     string     `json:"opening"` // "HH:MM"
	Closing     string     `json:"closing"`
	TimeSlots   []TimeSlot `json:"time_slots"`
	IsActive    bool       `json:"is_active"`
}

// SlotCapacity returns the capacity for a named slot, falling back to the
// temple-wide capacity when the slot has no explicit limit.
func (t *Temple) SlotCapacity(slot string) int {
	for _, s := range t.TimeSlots {
		if s.Slot == slot && s.Capacity > 0 {
			return s.Capacity
		}
	}
	return t.Capacity
}
