package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medibook/internal/domain"
	"medibook/internal/events"
	"medibook/internal/metrics"
	"medibook/internal/models"
	"medibook/internal/scheduling"

	"github.com/rs/zerolog"
)

// systemActor is recorded on events produced by the sweeper.
var systemActor = models.Actor{Role: "system"}

// Options tunes the booking rules. Zero values fall back to defaults.
type Options struct {
	MaxAdvanceDays     int
	CancellationWindow time.Duration
	CreateRateLimit    int
	CreateRateWindow   time.Duration
	Location           *time.Location
	// Now is the clock; tests pin it.
	Now func() time.Time
}

type BookingService struct {
	templates domain.AvailabilityStore
	ledger    domain.BookingLedger
	directory domain.ProviderDirectory
	limiter   domain.RateLimiter
	eventBus  domain.EventPublisher

	policy         *scheduling.Policy
	maxAdvanceDays int
	rateLimit      int
	rateWindow     time.Duration
	loc            *time.Location
	now            func() time.Time
	logger         *zerolog.Logger
}

func NewBookingService(
	templates domain.AvailabilityStore,
	ledger domain.BookingLedger,
	directory domain.ProviderDirectory,
	limiter domain.RateLimiter,
	eventBus domain.EventPublisher,
	opts Options,
	logger *zerolog.Logger,
) *BookingService {
	if opts.MaxAdvanceDays <= 0 {
		opts.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if opts.CreateRateWindow <= 0 {
		opts.CreateRateWindow = models.DefaultCreateRateWindow * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &BookingService{
		templates:      templates,
		ledger:         ledger,
		directory:      directory,
		limiter:        limiter,
		eventBus:       eventBus,
		policy:         scheduling.NewPolicy(opts.CancellationWindow, opts.Location),
		maxAdvanceDays: opts.MaxAdvanceDays,
		rateLimit:      opts.CreateRateLimit,
		rateWindow:     opts.CreateRateWindow,
		loc:            opts.Location,
		now:            opts.Now,
		logger:         logger,
	}
}

func (s *BookingService) clock() time.Time {
	return s.now().In(s.loc)
}

// dayView is the resolved state of one provider day plus what produced it.
type dayView struct {
	day      *models.DayAvailability
	provider *models.Provider
	template *models.AvailabilityTemplate
}

// resolveDay generates the slots of a date and marks the taken ones.
func (s *BookingService) resolveDay(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
	date time.Time, excludeID int64) (*dayView, error) {
	provider, err := s.lookupProvider(ctx, kind, providerID, resourceID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.templates.GetTemplate(ctx, kind, providerID, resourceID, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	slots, err := scheduling.GenerateSlots(tpl, date)
	if err != nil {
		// битый шаблон: день считается недоступным
		s.logger.Warn().Err(err).
			Str("kind", string(kind)).
			Int64("provider_id", providerID).
			Int("day_of_week", int(date.Weekday())).
			Msg("invalid availability template")
		slots = []models.Slot{}
	}

	dateStr := date.Format(models.DateLayout)
	bookings, err := s.ledger.ListActiveBookings(ctx, kind, providerID, dateStr)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	return &dayView{
		day: &models.DayAvailability{
			Kind:             kind,
			ProviderID:       providerID,
			ResourceID:       resourceID,
			Date:             dateStr,
			DayOfWeek:        int(date.Weekday()),
			AvailableThisDay: len(slots) > 0,
			Slots:            scheduling.Resolve(slots, bookings, resourceID, excludeID),
		},
		provider: provider,
		template: tpl,
	}, nil
}

func (s *BookingService) lookupProvider(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64) (*models.Provider, error) {
	if !kind.Valid() {
		return nil, scheduling.ErrInvalidKind
	}
	if providerID <= 0 {
		return nil, scheduling.Validationf("provider_id is required")
	}
	provider, err := s.directory.GetProvider(ctx, kind, providerID)
	if err != nil {
		return nil, err
	}
	if resourceID != nil {
		if _, err := s.directory.GetResource(ctx, *resourceID); err != nil {
			return nil, err
		}
		if !provider.HasResource(*resourceID) {
			return nil, scheduling.ErrNotAssociated
		}
	}
	return provider, nil
}

// CheckAvailability lists the slots of one provider day with their booked flags.
func (s *BookingService) CheckAvailability(ctx context.Context, req *models.CheckAvailabilityRequest) (*models.DayAvailability, error) {
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	view, err := s.resolveDay(ctx, req.Kind, req.ProviderID, req.ResourceID, date, req.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	return view.day, nil
}

// validateMoment rejects past moments and dates beyond the advance horizon.
func (s *BookingService) validateMoment(date time.Time, hhmm string, allowPast bool) error {
	now := s.clock()
	moment, err := scheduling.Moment(date.Format(models.DateLayout), hhmm, s.loc)
	if err != nil {
		return err
	}
	if !allowPast && moment.Before(now) {
		return scheduling.ErrPastMoment
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return scheduling.ErrTooFarAhead
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	if !req.Actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	if !req.Kind.Valid() {
		return nil, scheduling.ErrInvalidKind
	}
	if req.SubjectID <= 0 {
		return nil, scheduling.Validationf("subject_id is required")
	}
	if req.ProviderID <= 0 {
		return nil, scheduling.Validationf("provider_id is required")
	}
	if req.Fee != nil && *req.Fee < 0 {
		return nil, scheduling.Validationf("fee must not be negative")
	}
	if err := authorizeCreate(req.Actor, req.Kind, req.SubjectID, req.ProviderID); err != nil {
		return nil, err
	}

	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	hhmm, err := scheduling.NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	if err := s.validateMoment(date, hhmm, false); err != nil {
		return nil, err
	}

	view, err := s.resolveDay(ctx, req.Kind, req.ProviderID, req.ResourceID, date, 0)
	if err != nil {
		return nil, err
	}
	slot, ok := scheduling.Offered(view.day.Slots, hhmm)
	if !ok {
		return nil, scheduling.ErrSlotNotOffered
	}
	if slot.IsBooked {
		metrics.IncConflict(string(req.Kind), "slot_taken")
		return nil, scheduling.ErrSlotTaken
	}

	booking := &models.Booking{
		Kind:       req.Kind,
		SubjectID:  req.SubjectID,
		ProviderID: req.ProviderID,
		ResourceID: req.ResourceID,
		Date:       view.day.Date,
		Time:       hhmm,
		Status:     models.StatusScheduled,
		Fee:        resolveFee(req.Fee, view.template, view.provider),
		Notes:      strings.TrimSpace(req.Notes),
	}

	if err := s.ledger.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, scheduling.ErrSlotTaken) {
			metrics.IncConflict(string(req.Kind), "slot_taken")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("kind", string(booking.Kind)).
		Int64("provider_id", booking.ProviderID).
		Str("date", booking.Date).
		Str("time", booking.Time).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, req.Actor, nil)
	return booking, nil
}

// authorizeCreate: пациент бронирует только себе, врач только к себе.
func authorizeCreate(actor models.Actor, kind models.Kind, subjectID, providerID int64) error {
	switch actor.Role {
	case models.RolePatient:
		if actor.ID != subjectID {
			return scheduling.ErrForbidden
		}
	case models.RoleProvider:
		if !actor.IsProvider(kind, providerID) {
			return scheduling.ErrForbidden
		}
	}
	return nil
}

// resolveFee picks request fee, then template fee, then provider default.
func resolveFee(requested *float64, tpl *models.AvailabilityTemplate, provider *models.Provider) float64 {
	switch {
	case requested != nil:
		return *requested
	case tpl != nil && tpl.Fee != nil:
		return *tpl.Fee
	case provider != nil:
		return provider.DefaultFee
	default:
		return 0
	}
}

func (s *BookingService) checkRateLimit(ctx context.Context, subjectID int64) error {
	if s.limiter == nil || s.rateLimit <= 0 {
		return nil
	}
	allowed, err := s.limiter.CheckRateLimit(ctx, subjectID, s.rateLimit, s.rateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Int64("subject_id", subjectID).Msg("rate limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		return scheduling.ErrRateLimited
	}
	return nil
}

// GetBooking returns a booking visible to the actor.
func (s *BookingService) GetBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	if !actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	booking, err := s.ledger.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, booking) {
		return nil, scheduling.ErrForbidden
	}
	return booking, nil
}

func canView(actor models.Actor, b *models.Booking) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return actor.ID == b.SubjectID
	case models.RoleProvider:
		return actor.IsProvider(b.Kind, b.ProviderID)
	default:
		return false
	}
}

func (s *BookingService) CancelBooking(ctx context.Context, req *models.CancelRequest) (*models.Booking, error) {
	if !req.Actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	booking, err := s.ledger.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckCancel(req.Actor, booking, s.clock()); err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != booking.Version {
		return nil, scheduling.ErrConcurrentModification
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = scheduling.DefaultCancelReason(req.Actor)
	}

	if err := s.ledger.CancelBookingWithVersion(ctx, booking.ID, booking.Version, reason); err != nil {
		return nil, err
	}

	updated, err := s.ledger.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("booking_id", updated.ID).Str("reason", reason).Str("by", req.Actor.Role).Msg("booking cancelled")
	s.publishEvent(events.EventBookingCancelled, updated, req.Actor, nil)
	return updated, nil
}

func (s *BookingService) RescheduleBooking(ctx context.Context, req *models.RescheduleRequest) (*models.Booking, error) {
	if !req.Actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	booking, err := s.ledger.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckReschedule(req.Actor, booking, s.clock()); err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != booking.Version {
		return nil, scheduling.ErrConcurrentModification
	}

	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	hhmm, err := scheduling.NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}

	// врач и админ могут переносить задним числом
	isProvider := req.Actor.IsProvider(booking.Kind, booking.ProviderID)
	if err := s.validateMoment(date, hhmm, isProvider || req.Actor.IsElevated()); err != nil {
		return nil, err
	}

	view, err := s.resolveDay(ctx, booking.Kind, booking.ProviderID, booking.ResourceID, date, booking.ID)
	if err != nil {
		return nil, err
	}
	slot, ok := scheduling.Offered(view.day.Slots, hhmm)
	if !ok {
		return nil, scheduling.ErrSlotNotOffered
	}
	if slot.IsBooked {
		metrics.IncConflict(string(booking.Kind), "slot_taken")
		return nil, scheduling.ErrSlotTaken
	}

	previous := *booking
	moved := *booking
	moved.Date = view.day.Date
	moved.Time = hhmm
	if err := s.ledger.RescheduleBookingWithVersion(ctx, &moved, booking.Version); err != nil {
		if errors.Is(err, scheduling.ErrSlotTaken) {
			metrics.IncConflict(string(booking.Kind), "slot_taken")
		}
		return nil, err
	}

	updated, err := s.ledger.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("booking_id", updated.ID).
		Str("from", previous.Date+" "+previous.Time).
		Str("to", updated.Date+" "+updated.Time).
		Msg("booking rescheduled")
	s.publishEvent(events.EventBookingRescheduled, updated, req.Actor, &previous)
	return updated, nil
}

// ConfirmBooking moves a scheduled booking to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	return s.transition(ctx, actor, id, models.StatusConfirmed, events.EventBookingConfirmed)
}

// CompleteBooking closes an active booking as completed.
func (s *BookingService) CompleteBooking(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	return s.transition(ctx, actor, id, models.StatusCompleted, events.EventBookingCompleted)
}

func (s *BookingService) transition(ctx context.Context, actor models.Actor, id int64, status, eventType string) (*models.Booking, error) {
	if !actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	booking, err := s.ledger.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckManage(actor, booking); err != nil {
		return nil, err
	}
	if status == models.StatusConfirmed && booking.Status != models.StatusScheduled {
		return nil, scheduling.ErrNotScheduled
	}

	if err := s.ledger.UpdateBookingStatusWithVersion(ctx, id, booking.Version, status); err != nil {
		return nil, err
	}

	updated, err := s.ledger.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(eventType, updated, actor, nil)
	return updated, nil
}

// ListSubjectBookings sweeps absences of the subject and returns their bookings, newest first.
func (s *BookingService) ListSubjectBookings(ctx context.Context, actor models.Actor, subjectID int64) ([]models.Booking, error) {
	if subjectID <= 0 {
		return nil, scheduling.Validationf("subject_id is required")
	}
	if !actor.Valid() || !(actor.IsElevated() || (actor.Role == models.RolePatient && actor.ID == subjectID)) {
		return nil, scheduling.ErrForbidden
	}
	scope := models.BookingScope{SubjectID: subjectID}
	if _, err := s.SweepAbsent(ctx, scope); err != nil {
		return nil, err
	}
	return s.ledger.ListBookings(ctx, scope)
}

// ListProviderBookings sweeps absences of the provider and returns their bookings, newest first.
func (s *BookingService) ListProviderBookings(ctx context.Context, actor models.Actor, kind models.Kind, providerID int64) ([]models.Booking, error) {
	if !actor.Valid() || !(actor.IsElevated() || actor.IsProvider(kind, providerID)) {
		return nil, scheduling.ErrForbidden
	}
	if _, err := s.lookupProvider(ctx, kind, providerID, nil); err != nil {
		return nil, err
	}
	scope := models.BookingScope{Kind: kind, ProviderID: providerID}
	if _, err := s.SweepAbsent(ctx, scope); err != nil {
		return nil, err
	}
	return s.ledger.ListBookings(ctx, scope)
}

// SweepAbsent cancels elapsed active bookings in scope with reason "absent".
func (s *BookingService) SweepAbsent(ctx context.Context, scope models.BookingScope) (int, error) {
	swept, err := s.ledger.SweepAbsent(ctx, scope, s.clock())
	if err != nil {
		return 0, err
	}
	for i := range swept {
		s.publishEvent(events.EventBookingAbsent, &swept[i], systemActor, nil)
	}
	if len(swept) > 0 {
		s.logger.Debug().Int("count", len(swept)).Msg("absent bookings swept")
	}
	return len(swept), nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actor models.Actor, previous *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewBookingPayload(booking, actor)
	if previous != nil {
		payload.PreviousDate = previous.Date
		payload.PreviousTime = previous.Time
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
