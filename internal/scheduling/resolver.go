package scheduling

import "medibook/internal/models"

// Conflicts reports whether an existing booking blocks a request for
// resourceID. Only active bookings block. A booking without a resource blocks
// every resource of its provider, and a request without a resource is blocked
// by every booking of the provider.
func Conflicts(b *models.Booking, resourceID *int64) bool {
	if b == nil || !b.IsActive() {
		return false
	}
	if b.ResourceID == nil || resourceID == nil {
		return true
	}
	return *b.ResourceID == *resourceID
}

// TakenTimes returns the normalized times held by bookings that conflict with
// resourceID. The booking with excludeID (0 for none) is ignored. Rows with an
// unreadable time cannot match any slot and are skipped.
func TakenTimes(bookings []models.Booking, resourceID *int64, excludeID int64) map[string]struct{} {
	taken := make(map[string]struct{}, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !Conflicts(b, resourceID) {
			continue
		}
		hhmm, err := NormalizeTime(b.Time)
		if err != nil {
			continue
		}
		taken[hhmm] = struct{}{}
	}
	return taken
}

// FindConflict returns the first booking that holds hhmm for resourceID, or nil.
func FindConflict(bookings []models.Booking, resourceID *int64, hhmm string, excludeID int64) *models.Booking {
	want, err := NormalizeTime(hhmm)
	if err != nil {
		return nil
	}
	for i := range bookings {
		b := &bookings[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !Conflicts(b, resourceID) {
			continue
		}
		if got, err := NormalizeTime(b.Time); err == nil && got == want {
			return b
		}
	}
	return nil
}

// Resolve marks each generated slot as booked when its time is taken. The
// input order is kept; slots is not modified.
func Resolve(slots []models.Slot, bookings []models.Booking, resourceID *int64, excludeID int64) []models.Slot {
	taken := TakenTimes(bookings, resourceID, excludeID)
	out := make([]models.Slot, len(slots))
	for i, s := range slots {
		_, booked := taken[s.Time]
		s.IsBooked = booked
		out[i] = s
	}
	return out
}

// Offered returns the slot starting at hhmm, if the generator produced one.
func Offered(slots []models.Slot, hhmm string) (models.Slot, bool) {
	for _, s := range slots {
		if s.Time == hhmm {
			return s, true
		}
	}
	return models.Slot{}, false
}
