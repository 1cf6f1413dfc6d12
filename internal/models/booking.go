package models

import "time"

type Booking struct {
	ID           int64     `json:"id"`
	Kind         Kind      `json:"kind"`
	SubjectID    int64     `json:"subject_id"`
	ProviderID   int64     `json:"provider_id"`
	ResourceID   *int64    `json:"resource_id,omitempty"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Time         string    `json:"time"` // HH:MM
	Status       string    `json:"status"` // scheduled, confirmed, completed, cancelled
	CancelReason *string   `json:"cancel_reason,omitempty"`
	Fee          float64   `json:"fee"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int64     `json:"version"`
}

// IsActive reports whether the booking still holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusScheduled || b.Status == StatusConfirmed
}

// SameResource reports whether two nullable resource IDs refer to the same resource.
func SameResource(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// BookingScope narrows ledger reads and absence sweeps. Zero fields are ignored.
type BookingScope struct {
	Kind       Kind
	ProviderID int64
	SubjectID  int64
}
