package domain

import (
	"context"
	"time"

	"medibook/internal/models"
)

// AvailabilityStore holds weekly templates per (kind, provider, resource).
type AvailabilityStore interface {
	ReplaceTemplates(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
		templates []models.AvailabilityTemplate) error
	// GetTemplate returns nil without error when the day has no template.
	GetTemplate(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
		dayOfWeek int) (*models.AvailabilityTemplate, error)
	ListTemplates(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64) ([]models.AvailabilityTemplate, error)
}

// BookingLedger persists bookings and enforces the no-double-booking invariant.
type BookingLedger interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListActiveBookings(ctx context.Context, kind models.Kind, providerID int64, date string) ([]models.Booking, error)
	ListBookings(ctx context.Context, scope models.BookingScope) ([]models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	CancelBookingWithVersion(ctx context.Context, id, fromVersion int64, reason string) error
	RescheduleBookingWithVersion(ctx context.Context, booking *models.Booking, fromVersion int64) error
	SweepAbsent(ctx context.Context, scope models.BookingScope, now time.Time) ([]models.Booking, error)
}

// ProviderDirectory resolves providers and resources by ID.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, kind models.Kind, id int64) (*models.Provider, error)
	GetResource(ctx context.Context, id int64) (*models.Resource, error)
}

// RateLimiter counts booking attempts per subject.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, subjectID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the operation surface exposed to transports.
type BookingService interface {
	CheckAvailability(ctx context.Context, req *models.CheckAvailabilityRequest) (*models.DayAvailability, error)
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	CancelBooking(ctx context.Context, req *models.CancelRequest) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, req *models.RescheduleRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	CompleteBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error)
	ListSubjectBookings(ctx context.Context, actor models.Actor, subjectID int64) ([]models.Booking, error)
	ListProviderBookings(ctx context.Context, actor models.Actor, kind models.Kind, providerID int64) ([]models.Booking, error)
	SweepAbsent(ctx context.Context, scope models.BookingScope) (int, error)
}

// AvailabilityService manages provider templates.
type AvailabilityService interface {
	ReplaceAvailability(ctx context.Context, req *models.ReplaceAvailabilityRequest) ([]models.AvailabilityTemplate, error)
	GetAvailability(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64) ([]models.AvailabilityTemplate, error)
}
