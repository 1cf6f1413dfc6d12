package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"medibook/internal/database"
	"medibook/internal/domain"
	"medibook/internal/events"
	"medibook/internal/models"
	"medibook/internal/repository"
	"medibook/internal/scheduling"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	patient   = models.Actor{ID: 100, Role: models.RolePatient}
	stranger  = models.Actor{ID: 101, Role: models.RolePatient}
	doctor    = models.Actor{ID: 10, Role: models.RoleProvider, Kind: models.KindAppointment}
	otherDoc  = models.Actor{ID: 11, Role: models.RoleProvider, Kind: models.KindAppointment}
	labDoc    = models.Actor{ID: 10, Role: models.RoleProvider, Kind: models.KindLabTest}
	admin     = models.Actor{ID: 1, Role: models.RoleAdmin}
	resource1 = int64(1)
	resource2 = int64(2)
)

const (
	monday  = "2025-03-10"
	tuesday = "2025-03-11"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) CheckRateLimit(ctx context.Context, subjectID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, subjectID, limit, window)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	db     *database.DB
	clock  *fakeClock
	svc    *BookingService
	avail  *AvailabilityService
	mu     sync.Mutex
	events []events.BookingEventPayload
	types  []string
}

func (f *fixture) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.types...)
}

func (f *fixture) lastEvent() events.BookingEventPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

// newFixture seeds a directory and a week for appointment provider 10.
// The clock starts on Monday 2025-03-10 08:00 UTC.
func newFixture(t *testing.T, limiter domain.RateLimiter, opts Options) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.SyncDirectory(ctx,
		[]models.Provider{
			{Kind: models.KindAppointment, ID: 10, Name: "Dr. Ivanova", DefaultFee: 2500, ResourceIDs: []int64{1}},
			{Kind: models.KindAppointment, ID: 11, Name: "Dr. Petrov"},
			{Kind: models.KindLabTest, ID: 10, Name: "Blood panel", DefaultFee: 800, ResourceIDs: []int64{1, 2}},
		},
		[]models.Resource{{ID: 1, Name: "Central clinic"}, {ID: 2, Name: "North lab"}},
	))

	fee := 3000.0
	require.NoError(t, db.ReplaceTemplates(ctx, models.KindAppointment, 10, nil, []models.AvailabilityTemplate{
		{DayOfWeek: 1, IsAvailable: true, StartTime: "09:00", EndTime: "12:00", SlotDuration: 30},
		{DayOfWeek: 2, IsAvailable: true, Fee: &fee, Slots: []models.ExplicitSlot{
			{StartTime: "14:00", Duration: 30},
			{StartTime: "09:00", Duration: 30},
		}},
		{DayOfWeek: 3, IsAvailable: false},
	}))
	require.NoError(t, db.ReplaceTemplates(ctx, models.KindAppointment, 10, &resource1, []models.AvailabilityTemplate{
		{DayOfWeek: 1, IsAvailable: true, StartTime: "09:00", EndTime: "11:00", SlotDuration: 60},
	}))

	f := &fixture{db: db, clock: &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}}
	bus := events.NewEventBus()
	bus.SubscribeAll(func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		f.mu.Lock()
		f.types = append(f.types, e.Type)
		f.events = append(f.events, p)
		f.mu.Unlock()
		return nil
	})

	opts.Now = f.clock.Now
	f.svc = NewBookingService(db, db, db, limiter, bus, opts, &logger)
	f.avail = NewAvailabilityService(db, db, &logger)
	return f
}

func (f *fixture) book(t *testing.T, actor models.Actor, subjectID int64, date, hhmm string) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		Actor:      actor,
		Kind:       models.KindAppointment,
		SubjectID:  subjectID,
		ProviderID: 10,
		Date:       date,
		Time:       hhmm,
	})
	require.NoError(t, err)
	return b
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	day, err := f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, Date: monday,
	})
	require.NoError(t, err)
	assert.True(t, day.AvailableThisDay)
	assert.Equal(t, 1, day.DayOfWeek)
	require.Len(t, day.Slots, 6)
	assert.Equal(t, "09:00", day.Slots[0].Time)
	assert.Equal(t, "11:30", day.Slots[5].Time)
	assert.Len(t, day.FreeSlots(), 6)

	day, err = f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, Date: tuesday,
	})
	require.NoError(t, err)
	require.Len(t, day.Slots, 2)
	assert.Equal(t, "09:00", day.Slots[0].Time)
	assert.Equal(t, 3000.0, day.Slots[0].Fee)

	t.Run("UnavailableDay", func(t *testing.T) {
		for _, date := range []string{"2025-03-12", "2025-03-13"} {
			day, err := f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
				Kind: models.KindAppointment, ProviderID: 10, Date: date,
			})
			require.NoError(t, err)
			assert.False(t, day.AvailableThisDay)
			assert.Empty(t, day.Slots)
			assert.NotNil(t, day.Slots)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		cases := []struct {
			name string
			req  models.CheckAvailabilityRequest
			want error
		}{
			{"InvalidDate", models.CheckAvailabilityRequest{Kind: models.KindAppointment, ProviderID: 10, Date: "10.03.2025"}, scheduling.ErrInvalidDate},
			{"InvalidKind", models.CheckAvailabilityRequest{Kind: "surgery", ProviderID: 10, Date: monday}, scheduling.ErrInvalidKind},
			{"UnknownProvider", models.CheckAvailabilityRequest{Kind: models.KindAppointment, ProviderID: 99, Date: monday}, scheduling.ErrProviderNotFound},
			{"UnknownResource", models.CheckAvailabilityRequest{Kind: models.KindAppointment, ProviderID: 10, ResourceID: ptr(int64(99)), Date: monday}, scheduling.ErrResourceNotFound},
			{"NotAssociated", models.CheckAvailabilityRequest{Kind: models.KindAppointment, ProviderID: 10, ResourceID: &resource2, Date: monday}, scheduling.ErrNotAssociated},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := tc.req
				_, err := f.svc.CheckAvailability(ctx, &req)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestCreateBooking_RoundTrip(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	b := f.book(t, patient, 100, monday, "10:00")
	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusScheduled, b.Status)
	assert.Equal(t, 2500.0, b.Fee)
	assert.Equal(t, int64(1), b.Version)
	assert.Equal(t, []string{events.EventBookingCreated}, f.published())
	assert.Equal(t, models.RolePatient, f.lastEvent().ChangedBy)

	day, err := f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, Date: monday,
	})
	require.NoError(t, err)
	for _, s := range day.Slots {
		assert.Equal(t, s.Time == "10:00", s.IsBooked, s.Time)
	}

	// другое написание того же времени
	_, err = f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: stranger, Kind: models.KindAppointment, SubjectID: 101, ProviderID: 10, Date: monday, Time: "10:00:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)
	assert.Equal(t, scheduling.KindConflict, scheduling.KindOf(err))

	// exclusion frees the booking's own slot
	day, err = f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, Date: monday, ExcludeBookingID: b.ID,
	})
	require.NoError(t, err)
	assert.Len(t, day.FreeSlots(), 6)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t, nil, Options{MaxAdvanceDays: 30})
	ctx := context.Background()

	base := models.CreateBookingRequest{
		Actor: patient, Kind: models.KindAppointment, SubjectID: 100, ProviderID: 10, Date: monday, Time: "10:00",
	}
	cases := []struct {
		name   string
		mutate func(r *models.CreateBookingRequest)
		want   error
		kind   scheduling.ErrorKind
	}{
		{"PastDate", func(r *models.CreateBookingRequest) { r.Date = "2025-03-03" }, scheduling.ErrPastMoment, scheduling.KindValidation},
		{"TooFar", func(r *models.CreateBookingRequest) { r.Date = "2025-04-14" }, scheduling.ErrTooFarAhead, scheduling.KindValidation},
		{"NotOffered", func(r *models.CreateBookingRequest) { r.Time = "10:15" }, scheduling.ErrSlotNotOffered, scheduling.KindValidation},
		{"ClosedDay", func(r *models.CreateBookingRequest) { r.Date = "2025-03-12" }, scheduling.ErrSlotNotOffered, scheduling.KindValidation},
		{"BadTime", func(r *models.CreateBookingRequest) { r.Time = "25:00" }, scheduling.ErrInvalidTime, scheduling.KindValidation},
		{"BadDate", func(r *models.CreateBookingRequest) { r.Date = "2025-13-01" }, scheduling.ErrInvalidDate, scheduling.KindValidation},
		{"OtherSubject", func(r *models.CreateBookingRequest) { r.SubjectID = 101 }, scheduling.ErrForbidden, scheduling.KindForbidden},
		{"OtherProviderActor", func(r *models.CreateBookingRequest) { r.Actor = otherDoc }, scheduling.ErrForbidden, scheduling.KindForbidden},
		{"UnknownProvider", func(r *models.CreateBookingRequest) { r.ProviderID = 42 }, scheduling.ErrProviderNotFound, scheduling.KindNotFound},
		{"NotAssociated", func(r *models.CreateBookingRequest) { r.ResourceID = &resource2 }, scheduling.ErrNotAssociated, scheduling.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.svc.CreateBooking(ctx, &req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.kind, scheduling.KindOf(err))
		})
	}

	t.Run("MissingSubject", func(t *testing.T) {
		req := base
		req.Actor = admin
		req.SubjectID = 0
		_, err := f.svc.CreateBooking(ctx, &req)
		assert.Equal(t, scheduling.KindValidation, scheduling.KindOf(err))
	})

	t.Run("EarlierToday", func(t *testing.T) {
		f.clock.Set(time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC))
		defer f.clock.Set(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
		req := base
		_, err := f.svc.CreateBooking(ctx, &req)
		assert.ErrorIs(t, err, scheduling.ErrPastMoment)
	})

	assert.Empty(t, f.published())
}

func TestCreateBooking_FeeChain(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	fromTemplate := f.book(t, patient, 100, tuesday, "09:00")
	assert.Equal(t, 3000.0, fromTemplate.Fee)

	fromProvider := f.book(t, patient, 100, monday, "09:00")
	assert.Equal(t, 2500.0, fromProvider.Fee)

	requested := 0.0
	free, err := f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: admin, Kind: models.KindAppointment, SubjectID: 100, ProviderID: 10,
		Date: tuesday, Time: "14:00", Fee: &requested,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, free.Fee)

	assert.Equal(t, 0.0, resolveFee(nil, nil, nil))
}

func TestCreateBooking_NullResourceIsConservative(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	f.book(t, patient, 100, monday, "09:00")

	day, err := f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, ResourceID: &resource1, Date: monday,
	})
	require.NoError(t, err)
	require.Len(t, day.Slots, 2)
	assert.True(t, day.Slots[0].IsBooked)
	assert.False(t, day.Slots[1].IsBooked)

	_, err = f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: stranger, Kind: models.KindAppointment, SubjectID: 101, ProviderID: 10,
		ResourceID: &resource1, Date: monday, Time: "09:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)

	withResource, err := f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: stranger, Kind: models.KindAppointment, SubjectID: 101, ProviderID: 10,
		ResourceID: &resource1, Date: monday, Time: "10:00",
	})
	require.NoError(t, err)
	require.NotNil(t, withResource.ResourceID)

	// запрос без ресурса видит занятость любого ресурса
	day, err = f.svc.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind: models.KindAppointment, ProviderID: 10, Date: monday,
	})
	require.NoError(t, err)
	booked := map[string]bool{}
	for _, s := range day.Slots {
		booked[s.Time] = s.IsBooked
	}
	assert.True(t, booked["09:00"])
	assert.True(t, booked["10:00"])
	assert.False(t, booked["10:30"])
}

func TestCreateBooking_Concurrent(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(subject int64) {
			defer wg.Done()
			_, err := f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
				Actor: admin, Kind: models.KindAppointment, SubjectID: subject, ProviderID: 10,
				Date: monday, Time: "11:00",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, scheduling.ErrSlotTaken):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(200 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	active, err := f.db.ListActiveBookings(ctx, models.KindAppointment, 10, monday)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreateBooking_RateLimit(t *testing.T) {
	t.Run("Exceeded", func(t *testing.T) {
		f := newFixture(t, repository.NewMemoryRateLimiter(), Options{CreateRateLimit: 1, CreateRateWindow: time.Minute})
		f.book(t, patient, 100, monday, "09:00")

		_, err := f.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
			Actor: patient, Kind: models.KindAppointment, SubjectID: 100, ProviderID: 10, Date: monday, Time: "09:30",
		})
		assert.ErrorIs(t, err, scheduling.ErrRateLimited)
		assert.Equal(t, scheduling.KindRateLimited, scheduling.KindOf(err))
	})

	t.Run("LimiterDownAllows", func(t *testing.T) {
		limiter := new(mockLimiter)
		limiter.On("CheckRateLimit", mock.Anything, int64(100), 3, time.Minute).
			Return(false, errors.New("redis: connection refused")).Once()

		f := newFixture(t, limiter, Options{CreateRateLimit: 3})
		f.book(t, patient, 100, monday, "09:00")
		limiter.AssertExpectations(t)
	})

	t.Run("Disabled", func(t *testing.T) {
		limiter := new(mockLimiter)
		f := newFixture(t, limiter, Options{})
		f.book(t, patient, 100, monday, "09:00")
		limiter.AssertNotCalled(t, "CheckRateLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetBooking(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	b := f.book(t, patient, 100, monday, "09:00")

	for _, actor := range []models.Actor{patient, doctor, admin} {
		got, err := f.svc.GetBooking(ctx, actor, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := f.svc.GetBooking(ctx, stranger, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.GetBooking(ctx, otherDoc, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.GetBooking(ctx, models.Actor{Role: "nurse", ID: 5}, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.GetBooking(ctx, admin, 9999)
	assert.ErrorIs(t, err, scheduling.ErrBookingNotFound)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	soon := f.book(t, patient, 100, monday, "10:00")
	later := f.book(t, patient, 100, tuesday, "14:00")

	t.Run("PatientInsideWindow", func(t *testing.T) {
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: patient, BookingID: soon.ID})
		assert.ErrorIs(t, err, scheduling.ErrWindowClosed)
		assert.Contains(t, err.Error(), "24 hours")
	})

	t.Run("Stranger", func(t *testing.T) {
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: stranger, BookingID: soon.ID})
		assert.ErrorIs(t, err, scheduling.ErrForbidden)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: doctor, BookingID: soon.ID, Version: 7})
		assert.ErrorIs(t, err, scheduling.ErrConcurrentModification)
	})

	t.Run("ProviderBypassesWindow", func(t *testing.T) {
		got, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: doctor, BookingID: soon.ID, Version: 1})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, got.Status)
		require.NotNil(t, got.CancelReason)
		assert.Equal(t, models.ReasonCancelledByProvider, *got.CancelReason)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: admin, BookingID: soon.ID})
		assert.ErrorIs(t, err, scheduling.ErrAlreadyCancelled)
	})

	t.Run("PatientOutsideWindow", func(t *testing.T) {
		got, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: patient, BookingID: later.ID, Reason: "  feeling better "})
		require.NoError(t, err)
		require.NotNil(t, got.CancelReason)
		assert.Equal(t, "feeling better", *got.CancelReason)
		assert.Equal(t, "feeling better", f.lastEvent().Reason)
	})

	// slot is free again once cancelled
	again := f.book(t, stranger, 101, monday, "10:00")
	assert.NotEqual(t, soon.ID, again.ID)

	t.Run("PastBooking", func(t *testing.T) {
		f.clock.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: stranger, BookingID: again.ID})
		assert.ErrorIs(t, err, scheduling.ErrPastBooking)

		_, err = f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: stranger, BookingID: again.ID, Date: tuesday, Time: "14:00"})
		assert.ErrorIs(t, err, scheduling.ErrPastReschedule)
		assert.Equal(t, scheduling.KindConflict, scheduling.KindOf(err))
	})
}

func TestRescheduleBooking(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	b := f.book(t, patient, 100, tuesday, "14:00")
	blocker := f.book(t, stranger, 101, monday, "11:30")

	t.Run("IntoOwnSlot", func(t *testing.T) {
		got, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: patient, BookingID: b.ID, Date: tuesday, Time: "14:00"})
		require.NoError(t, err)
		assert.Equal(t, "14:00", got.Time)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("MovesAndKeepsIdentity", func(t *testing.T) {
		got, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: patient, BookingID: b.ID, Date: tuesday, Time: "9:00"})
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, tuesday, got.Date)
		assert.Equal(t, "09:00", got.Time)
		assert.Equal(t, models.StatusScheduled, got.Status)

		ev := f.lastEvent()
		assert.Equal(t, "14:00", ev.PreviousTime)
		assert.Equal(t, "09:00", ev.Time)
	})

	t.Run("TakenSlot", func(t *testing.T) {
		_, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: doctor, BookingID: b.ID, Date: monday, Time: blocker.Time})
		assert.ErrorIs(t, err, scheduling.ErrSlotTaken)
	})

	t.Run("NotOffered", func(t *testing.T) {
		_, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: doctor, BookingID: b.ID, Date: monday, Time: "13:00"})
		assert.ErrorIs(t, err, scheduling.ErrSlotNotOffered)
	})

	t.Run("PatientIntoPast", func(t *testing.T) {
		_, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: patient, BookingID: b.ID, Date: "2025-03-03", Time: "09:00"})
		assert.ErrorIs(t, err, scheduling.ErrPastMoment)
	})

	t.Run("PatientInsideWindow", func(t *testing.T) {
		_, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: stranger, BookingID: blocker.ID, Date: tuesday, Time: "14:00"})
		assert.ErrorIs(t, err, scheduling.ErrWindowClosed)
	})

	t.Run("ProviderInsideWindow", func(t *testing.T) {
		got, err := f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: doctor, BookingID: blocker.ID, Date: monday, Time: "11:00"})
		require.NoError(t, err)
		assert.Equal(t, "11:00", got.Time)
	})

	t.Run("Cancelled", func(t *testing.T) {
		_, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: admin, BookingID: b.ID})
		require.NoError(t, err)
		_, err = f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: admin, BookingID: b.ID, Date: tuesday, Time: "14:00"})
		assert.ErrorIs(t, err, scheduling.ErrAlreadyCancelled)
	})
}

func TestConfirmAndComplete(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	b := f.book(t, patient, 100, tuesday, "09:00")

	_, err := f.svc.ConfirmBooking(ctx, patient, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	confirmed, err := f.svc.ConfirmBooking(ctx, doctor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = f.svc.ConfirmBooking(ctx, admin, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotScheduled)

	// confirmed still holds the slot
	_, err = f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: stranger, Kind: models.KindAppointment, SubjectID: 101, ProviderID: 10, Date: tuesday, Time: "09:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)

	completed, err := f.svc.CompleteBooking(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	_, err = f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: doctor, BookingID: b.ID})
	assert.ErrorIs(t, err, scheduling.ErrCompleted)
	_, err = f.svc.CompleteBooking(ctx, doctor, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrCompleted)

	assert.Equal(t, []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCompleted,
	}, f.published())
}

func TestListBookings_SweepsAbsent(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	missed := f.book(t, patient, 100, monday, "09:00")
	upcoming := f.book(t, patient, 100, tuesday, "14:00")

	// следующий день: вчерашний приём не состоялся
	f.clock.Set(time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC))

	list, err := f.svc.ListSubjectBookings(ctx, patient, 100)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, upcoming.ID, list[0].ID)
	assert.Equal(t, models.StatusScheduled, list[0].Status)
	assert.Equal(t, missed.ID, list[1].ID)
	assert.Equal(t, models.StatusCancelled, list[1].Status)
	require.NotNil(t, list[1].CancelReason)
	assert.Equal(t, models.ReasonAbsent, *list[1].CancelReason)

	assert.Contains(t, f.published(), events.EventBookingAbsent)

	n, err := f.svc.SweepAbsent(ctx, models.BookingScope{})
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err = f.svc.ListProviderBookings(ctx, doctor, models.KindAppointment, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListBookings_Authorization(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	f.book(t, patient, 100, monday, "09:00")

	_, err := f.svc.ListSubjectBookings(ctx, stranger, 100)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.ListSubjectBookings(ctx, doctor, 100)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.ListSubjectBookings(ctx, admin, 0)
	assert.Equal(t, scheduling.KindValidation, scheduling.KindOf(err))

	list, err := f.svc.ListSubjectBookings(ctx, admin, 100)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListProviderBookings(ctx, otherDoc, models.KindAppointment, 10)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	_, err = f.svc.ListProviderBookings(ctx, admin, models.KindAppointment, 77)
	assert.ErrorIs(t, err, scheduling.ErrProviderNotFound)

	// провайдеры разных видов не пересекаются
	_, err = f.svc.ListProviderBookings(ctx, doctor, models.KindLabTest, 10)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)
	list, err = f.svc.ListProviderBookings(ctx, labDoc, models.KindLabTest, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProviderOfOtherKind(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	// two hours ahead: inside the patient window, so only the real provider may act
	b := f.book(t, patient, 100, monday, "10:00")

	_, err := f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: labDoc, Kind: models.KindAppointment, SubjectID: 100, ProviderID: 10, Date: monday, Time: "11:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	_, err = f.svc.GetBooking(ctx, labDoc, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	_, err = f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: labDoc, BookingID: b.ID})
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	_, err = f.svc.RescheduleBooking(ctx, &models.RescheduleRequest{Actor: labDoc, BookingID: b.ID, Date: monday, Time: "11:30"})
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	_, err = f.svc.ConfirmBooking(ctx, labDoc, b.ID)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	_, err = f.svc.ListProviderBookings(ctx, labDoc, models.KindAppointment, 10)
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	got, err := f.svc.GetBooking(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, got.Status)

	// the appointment provider with the same ID still may cancel late
	cancelled, err := f.svc.CancelBooking(ctx, &models.CancelRequest{Actor: doctor, BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestSweepAbsent_Timezone(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	f := newFixture(t, nil, Options{Location: moscow})
	ctx := context.Background()
	// 08:00 UTC = 11:00 MSK, so only slots from 11:30 are bookable today
	_, err = f.svc.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor: patient, Kind: models.KindAppointment, SubjectID: 100, ProviderID: 10, Date: monday, Time: "10:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrPastMoment)

	b := f.book(t, patient, 100, monday, "11:30")

	f.clock.Set(time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC))
	n, err := f.svc.SweepAbsent(ctx, models.BookingScope{})
	require.NoError(t, err)
	assert.Zero(t, n, "slot starting exactly now is not yet absent")

	f.clock.Set(time.Date(2025, 3, 10, 8, 31, 0, 0, time.UTC))
	n, err = f.svc.SweepAbsent(ctx, models.BookingScope{SubjectID: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetBooking(ctx, patient, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func ptr[T any](v T) *T { return &v }
