package models

import "time"

// ExplicitSlot is one entry of a template that lists its slots individually.
type ExplicitSlot struct {
	StartTime string `json:"start_time" yaml:"start_time"`
	Duration  int    `json:"duration" yaml:"duration"` // minutes
}

// AvailabilityTemplate describes one weekday of a provider's weekly schedule.
// Either the range fields or Slots are used; Slots wins when non-empty.
type AvailabilityTemplate struct {
	ID           int64          `json:"id"`
	Kind         Kind           `json:"kind"`
	ProviderID   int64          `json:"provider_id"`
	ResourceID   *int64         `json:"resource_id,omitempty"`
	DayOfWeek    int            `json:"day_of_week"` // 0 = Sunday
	IsAvailable  bool           `json:"is_available"`
	StartTime    string         `json:"start_time,omitempty"`
	EndTime      string         `json:"end_time,omitempty"`
	SlotDuration int            `json:"slot_duration,omitempty"` // minutes
	Slots        []ExplicitSlot `json:"slots,omitempty"`
	Fee          *float64       `json:"fee,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UsesExplicitSlots reports whether the template lists slots instead of a range.
func (t *AvailabilityTemplate) UsesExplicitSlots() bool {
	return len(t.Slots) > 0
}

// Slot is a bookable candidate derived from a template for a specific date. Never persisted.
type Slot struct {
	Time     string  `json:"time"`
	Duration int     `json:"duration"`
	Fee      float64 `json:"fee"`
	IsBooked bool    `json:"is_booked"`
}

// DayAvailability is the resolved view of one provider/resource on one date.
type DayAvailability struct {
	Kind             Kind   `json:"kind"`
	ProviderID       int64  `json:"provider_id"`
	ResourceID       *int64 `json:"resource_id,omitempty"`
	Date             string `json:"date"`
	DayOfWeek        int    `json:"day_of_week"`
	AvailableThisDay bool   `json:"available_this_day"`
	Slots            []Slot `json:"slots"`
}

// FreeSlots returns the slots a client may still book.
func (d *DayAvailability) FreeSlots() []Slot {
	free := make([]Slot, 0, len(d.Slots))
	for _, s := range d.Slots {
		if !s.IsBooked {
			free = append(free, s)
		}
	}
	return free
}
