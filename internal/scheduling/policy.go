package scheduling

import (
	"fmt"
	"time"

	"medibook/internal/models"
)

// Policy gates state changes of existing bookings.
type Policy struct {
	CancellationWindow time.Duration
	Location           *time.Location
}

// NewPolicy returns a policy with the given window; non-positive windows fall back to 24h.
func NewPolicy(window time.Duration, loc *time.Location) *Policy {
	if window <= 0 {
		window = models.DefaultCancellationWindowHours * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{CancellationWindow: window, Location: loc}
}

// relation returns how the actor relates to the booking.
func relation(actor models.Actor, b *models.Booking) (isSubject, isProvider bool) {
	switch actor.Role {
	case models.RolePatient:
		isSubject = actor.ID == b.SubjectID
	case models.RoleProvider:
		isProvider = actor.IsProvider(b.Kind, b.ProviderID)
	}
	return isSubject, isProvider
}

// CheckCancel evaluates the cancel rules in order.
func (p *Policy) CheckCancel(actor models.Actor, b *models.Booking, now time.Time) error {
	return p.check(actor, b, now, ErrPastBooking)
}

// CheckReschedule evaluates the same rules as a cancel. The new slot is
// checked separately by the caller.
func (p *Policy) CheckReschedule(actor models.Actor, b *models.Booking, now time.Time) error {
	return p.check(actor, b, now, ErrPastReschedule)
}

// check applies the shared rules; errPast names the refused action.
func (p *Policy) check(actor models.Actor, b *models.Booking, now time.Time, errPast *Error) error {
	isSubject, isProvider := relation(actor, b)
	if !isSubject && !isProvider && !actor.IsElevated() {
		return ErrForbidden
	}

	switch b.Status {
	case models.StatusCancelled:
		return ErrAlreadyCancelled
	case models.StatusCompleted:
		return ErrCompleted
	}

	if isProvider || actor.IsElevated() {
		return nil
	}

	moment, err := Moment(b.Date, b.Time, p.Location)
	if err != nil {
		return fmt.Errorf("booking %d has unreadable moment: %w", b.ID, err)
	}
	remaining := moment.Sub(now)
	if remaining < 0 {
		return errPast
	}
	if remaining < p.CancellationWindow {
		return &Error{
			Kind: KindConflict,
			Msg: fmt.Sprintf("%s: changes are not allowed within %s of the appointment",
				ErrWindowClosed.Msg, formatWindow(p.CancellationWindow)),
			base: ErrWindowClosed,
		}
	}
	return nil
}

// CheckManage gates provider-side transitions (confirm, complete).
func (p *Policy) CheckManage(actor models.Actor, b *models.Booking) error {
	_, isProvider := relation(actor, b)
	if !isProvider && !actor.IsElevated() {
		return ErrForbidden
	}
	switch b.Status {
	case models.StatusCancelled:
		return ErrAlreadyCancelled
	case models.StatusCompleted:
		return ErrCompleted
	}
	return nil
}

// DefaultCancelReason is stored when the caller gives no reason.
func DefaultCancelReason(actor models.Actor) string {
	switch actor.Role {
	case models.RoleProvider:
		return models.ReasonCancelledByProvider
	case models.RoleAdmin:
		return models.ReasonCancelledByAdmin
	default:
		return models.ReasonCancelledByPatient
	}
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
