package models

// Actor is the caller identity supplied by upstream authentication.
// Provider IDs are namespaced by kind, so a provider actor carries its Kind too.
type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
	Kind Kind   `json:"kind,omitempty"`
}

// IsProvider reports whether the actor is the provider (kind, providerID).
func (a Actor) IsProvider(kind Kind, providerID int64) bool {
	return a.Role == RoleProvider && a.Kind == kind && a.ID == providerID
}

// IsElevated reports whether the actor bypasses subject-only time checks.
func (a Actor) IsElevated() bool {
	return a.Role == RoleAdmin
}

// Valid reports whether the role is known and carries an identity where one is needed.
func (a Actor) Valid() bool {
	switch a.Role {
	case RolePatient:
		return a.ID != 0
	case RoleProvider:
		return a.ID != 0 && a.Kind.Valid()
	case RoleAdmin:
		return true
	default:
		return false
	}
}

type CheckAvailabilityRequest struct {
	Kind             Kind   `json:"kind"`
	ProviderID       int64  `json:"provider_id"`
	ResourceID       *int64 `json:"resource_id,omitempty"`
	Date             string `json:"date"`
	ExcludeBookingID int64  `json:"exclude_booking_id,omitempty"`
}

type CreateBookingRequest struct {
	Actor      Actor    `json:"-"`
	Kind       Kind     `json:"kind"`
	SubjectID  int64    `json:"subject_id"`
	ProviderID int64    `json:"provider_id"`
	ResourceID *int64   `json:"resource_id,omitempty"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Fee        *float64 `json:"fee,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// CancelRequest cancels a booking. Version 0 skips the caller-side version check.
type CancelRequest struct {
	Actor     Actor  `json:"-"`
	BookingID int64  `json:"-"`
	Reason    string `json:"reason,omitempty"`
	Version   int64  `json:"version,omitempty"`
}

type RescheduleRequest struct {
	Actor     Actor  `json:"-"`
	BookingID int64  `json:"-"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Version   int64  `json:"version,omitempty"`
}

type ReplaceAvailabilityRequest struct {
	Actor      Actor                  `json:"-"`
	Kind       Kind                   `json:"-"`
	ProviderID int64                  `json:"-"`
	ResourceID *int64                 `json:"resource_id,omitempty"`
	Templates  []AvailabilityTemplate `json:"templates"`
}
