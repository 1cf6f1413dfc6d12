package scheduling

import (
	"fmt"
	"sort"
	"time"

	"medibook/internal/models"
)

// GenerateSlots expands a weekday template into the candidate slots of date,
// ascending by start time. A missing template, a template for another weekday
// or one marked unavailable yields an empty list: "not available today" is a
// normal outcome. The error is reserved for malformed template data; callers
// treat it as an empty day after logging it.
func GenerateSlots(tpl *models.AvailabilityTemplate, date time.Time) ([]models.Slot, error) {
	slots := []models.Slot{}
	if tpl == nil || !tpl.IsAvailable || tpl.DayOfWeek != int(date.Weekday()) {
		return slots, nil
	}

	var fee float64
	if tpl.Fee != nil {
		fee = *tpl.Fee
	}

	if tpl.UsesExplicitSlots() {
		return explicitSlots(tpl, fee)
	}
	return rangeSlots(tpl, fee)
}

func explicitSlots(tpl *models.AvailabilityTemplate, fee float64) ([]models.Slot, error) {
	slots := make([]models.Slot, 0, len(tpl.Slots))
	seen := make(map[string]struct{}, len(tpl.Slots))

	for _, entry := range tpl.Slots {
		start, err := NormalizeTime(entry.StartTime)
		if err != nil {
			return []models.Slot{}, fmt.Errorf("%w: slot %q: %v", ErrInvalidTemplate, entry.StartTime, err)
		}
		if _, dup := seen[start]; dup {
			continue
		}
		seen[start] = struct{}{}

		duration := entry.Duration
		if duration <= 0 {
			duration = tpl.SlotDuration
		}
		slots = append(slots, models.Slot{Time: start, Duration: duration, Fee: fee})
	}

	// HH:MM сортируется лексикографически
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}

func rangeSlots(tpl *models.AvailabilityTemplate, fee float64) ([]models.Slot, error) {
	start, err := ClockMinutes(tpl.StartTime)
	if err != nil {
		return []models.Slot{}, fmt.Errorf("%w: start_time: %v", ErrInvalidTemplate, err)
	}
	end, err := ClockMinutes(tpl.EndTime)
	if err != nil {
		return []models.Slot{}, fmt.Errorf("%w: end_time: %v", ErrInvalidTemplate, err)
	}
	if tpl.SlotDuration <= 0 {
		return []models.Slot{}, fmt.Errorf("%w: slot_duration must be positive", ErrInvalidTemplate)
	}
	if end <= start {
		return []models.Slot{}, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidTemplate)
	}

	slots := make([]models.Slot, 0, (end-start)/tpl.SlotDuration)
	// Only whole slots: the last partial interval is dropped.
	for m := start; m+tpl.SlotDuration <= end; m += tpl.SlotDuration {
		slots = append(slots, models.Slot{Time: FormatClock(m), Duration: tpl.SlotDuration, Fee: fee})
	}
	return slots, nil
}

// ValidateTemplate checks a template before it is stored.
func ValidateTemplate(tpl *models.AvailabilityTemplate) error {
	if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
		return Validationf("day_of_week must be between 0 and 6, got %d", tpl.DayOfWeek)
	}
	if tpl.Fee != nil && *tpl.Fee < 0 {
		return Validationf("fee must not be negative")
	}
	if !tpl.IsAvailable {
		return nil
	}
	if tpl.UsesExplicitSlots() {
		for _, s := range tpl.Slots {
			if _, err := NormalizeTime(s.StartTime); err != nil {
				return Validationf("day %d: invalid slot start %q", tpl.DayOfWeek, s.StartTime)
			}
			if s.Duration <= 0 && tpl.SlotDuration <= 0 {
				return Validationf("day %d: slot %s needs a positive duration", tpl.DayOfWeek, s.StartTime)
			}
		}
		return nil
	}

	start, err := ClockMinutes(tpl.StartTime)
	if err != nil {
		return Validationf("day %d: invalid start_time %q", tpl.DayOfWeek, tpl.StartTime)
	}
	end, err := ClockMinutes(tpl.EndTime)
	if err != nil {
		return Validationf("day %d: invalid end_time %q", tpl.DayOfWeek, tpl.EndTime)
	}
	if end <= start {
		return Validationf("day %d: end_time must be after start_time", tpl.DayOfWeek)
	}
	if tpl.SlotDuration <= 0 {
		return Validationf("day %d: slot_duration must be positive", tpl.DayOfWeek)
	}
	return nil
}

// NormalizeTemplate rewrites template times to canonical form in place.
func NormalizeTemplate(tpl *models.AvailabilityTemplate) {
	if norm, err := NormalizeTime(tpl.StartTime); err == nil {
		tpl.StartTime = norm
	}
	if norm, err := NormalizeTime(tpl.EndTime); err == nil {
		tpl.EndTime = norm
	}
	for i := range tpl.Slots {
		if norm, err := NormalizeTime(tpl.Slots[i].StartTime); err == nil {
			tpl.Slots[i].StartTime = norm
		}
	}
}
