package scheduling

import (
	"errors"
	"fmt"
)

// ErrorKind classifies expected, caller-correctable outcomes.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is a booking outcome the caller can act on. Anything that is not an
// *Error is an infrastructure failure.
type Error struct {
	Kind ErrorKind
	Msg  string

	// base links a detailed copy back to its sentinel for errors.Is.
	base *Error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.base != nil && e.base == t
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Validationf builds a one-off validation error.
func Validationf(format string, args ...any) error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

var (
	ErrInvalidDate     = newError(KindValidation, "invalid date format; expected YYYY-MM-DD")
	ErrInvalidTime     = newError(KindValidation, "invalid time format; expected HH:MM")
	ErrInvalidKind     = newError(KindValidation, "unknown booking kind")
	ErrSlotNotOffered  = newError(KindValidation, "requested time is not an offered slot on this date")
	ErrPastMoment      = newError(KindValidation, "cannot book a slot in the past")
	ErrTooFarAhead     = newError(KindValidation, "date is too far in the future")
	ErrInvalidTemplate = newError(KindValidation, "invalid availability template")

	ErrForbidden     = newError(KindForbidden, "not allowed to act on this booking")
	ErrNotAssociated = newError(KindForbidden, "provider is not associated with this resource")

	ErrProviderNotFound = newError(KindNotFound, "provider not found")
	ErrResourceNotFound = newError(KindNotFound, "resource not found")
	ErrBookingNotFound  = newError(KindNotFound, "booking not found")

	ErrSlotTaken              = newError(KindConflict, "slot already booked")
	ErrAlreadyCancelled       = newError(KindConflict, "booking already cancelled")
	ErrCompleted              = newError(KindConflict, "booking already completed")
	ErrPastBooking            = newError(KindConflict, "cannot cancel a past booking")
	ErrPastReschedule         = newError(KindConflict, "cannot reschedule a past booking")
	ErrWindowClosed           = newError(KindConflict, "cancellation window closed")
	ErrNotScheduled           = newError(KindConflict, "only scheduled bookings can be confirmed")
	ErrConcurrentModification = newError(KindConflict, "booking was modified concurrently; reload and retry")

	ErrRateLimited = newError(KindRateLimited, "too many booking attempts; try again later")
)

// KindOf returns the kind of an expected outcome, or 0 for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
