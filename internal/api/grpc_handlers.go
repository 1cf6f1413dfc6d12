package api

import (
	"context"
	"errors"
	"strconv"
	"strings"

	bookingv1 "medibook/internal/api/gen/booking/v1"
	"medibook/internal/domain"
	"medibook/internal/models"
	"medibook/internal/scheduling"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// BookingGRPCService maps the booking operations onto bookingv1.
// Actor identity comes from the same X-Actor-* keys as HTTP, as metadata.
type BookingGRPCService struct {
	bookingv1.UnimplementedBookingServiceServer
	bookings domain.BookingService
	log      zerolog.Logger
}

func NewBookingGRPCService(bookings domain.BookingService, logger *zerolog.Logger) *BookingGRPCService {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "grpc_booking").Logger()
	}
	return &BookingGRPCService{bookings: bookings, log: l}
}

func (s *BookingGRPCService) CheckAvailability(ctx context.Context, req *bookingv1.CheckAvailabilityRequest) (
	*bookingv1.CheckAvailabilityResponse, error) {
	date := strings.TrimSpace(req.GetDate())
	if date == "" {
		return nil, status.Error(codes.InvalidArgument, "date is required")
	}

	day, err := s.bookings.CheckAvailability(ctx, &models.CheckAvailabilityRequest{
		Kind:             models.Kind(strings.TrimSpace(req.GetKind())),
		ProviderID:       req.GetProviderId(),
		ResourceID:       optionalID(req.GetResourceId()),
		Date:             date,
		ExcludeBookingID: req.GetExcludeBookingId(),
	})
	if err != nil {
		return nil, s.statusError(err)
	}

	slots := make([]*bookingv1.Slot, 0, len(day.Slots))
	for _, sl := range day.Slots {
		slots = append(slots, &bookingv1.Slot{
			Time:            sl.Time,
			DurationMinutes: int32(sl.Duration),
			Fee:             sl.Fee,
			IsBooked:        sl.IsBooked,
		})
	}
	return &bookingv1.CheckAvailabilityResponse{
		Kind:             string(day.Kind),
		ProviderId:       day.ProviderID,
		Date:             day.Date,
		DayOfWeek:        int32(day.DayOfWeek),
		AvailableThisDay: day.AvailableThisDay,
		Slots:            slots,
	}, nil
}

func (s *BookingGRPCService) CreateBooking(ctx context.Context, req *bookingv1.CreateBookingRequest) (
	*bookingv1.CreateBookingResponse, error) {
	actor, err := actorFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.CreateBooking(ctx, &models.CreateBookingRequest{
		Actor:      actor,
		Kind:       models.Kind(strings.TrimSpace(req.GetKind())),
		SubjectID:  req.GetSubjectId(),
		ProviderID: req.GetProviderId(),
		ResourceID: optionalID(req.GetResourceId()),
		Date:       strings.TrimSpace(req.GetDate()),
		Time:       strings.TrimSpace(req.GetTime()),
		Notes:      req.GetNotes(),
	})
	if err != nil {
		return nil, s.statusError(err)
	}
	return &bookingv1.CreateBookingResponse{Booking: bookingToProto(b)}, nil
}

func (s *BookingGRPCService) GetBooking(ctx context.Context, req *bookingv1.GetBookingRequest) (
	*bookingv1.GetBookingResponse, error) {
	if req.GetId() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid booking id")
	}
	actor, err := actorFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetBooking(ctx, actor, req.GetId())
	if err != nil {
		return nil, s.statusError(err)
	}
	return &bookingv1.GetBookingResponse{Booking: bookingToProto(b)}, nil
}

// statusError: доменные ошибки отдаются как есть, остальное как Internal без деталей.
func (s *BookingGRPCService) statusError(err error) error {
	var code codes.Code
	switch scheduling.KindOf(err) {
	case scheduling.KindValidation:
		code = codes.InvalidArgument
	case scheduling.KindForbidden:
		code = codes.PermissionDenied
	case scheduling.KindNotFound:
		code = codes.NotFound
	case scheduling.KindConflict:
		switch {
		case errors.Is(err, scheduling.ErrSlotTaken):
			code = codes.AlreadyExists
		case errors.Is(err, scheduling.ErrConcurrentModification):
			code = codes.Aborted
		default:
			code = codes.FailedPrecondition
		}
	case scheduling.KindRateLimited:
		code = codes.ResourceExhausted
	default:
		s.log.Error().Err(err).Msg("grpc request failed")
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func actorFromMetadata(ctx context.Context) (models.Actor, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	role := strings.ToLower(first(md.Get(headerActorRole)))
	var id int64
	if raw := first(md.Get(headerActorID)); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Actor{}, status.Error(codes.Unauthenticated, errMissingActor.Error())
		}
		id = parsed
	}
	actor := models.Actor{ID: id, Role: role}
	if role == models.RoleProvider {
		actor.Kind = models.Kind(strings.ToLower(first(md.Get(headerActorKind))))
	}
	if !actor.Valid() {
		return models.Actor{}, status.Error(codes.Unauthenticated, errMissingActor.Error())
	}
	return actor, nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func bookingToProto(b *models.Booking) *bookingv1.Booking {
	out := &bookingv1.Booking{
		Id:         b.ID,
		Kind:       string(b.Kind),
		SubjectId:  b.SubjectID,
		ProviderId: b.ProviderID,
		Date:       b.Date,
		Time:       b.Time,
		Status:     b.Status,
		Fee:        b.Fee,
		Notes:      b.Notes,
		Version:    b.Version,
	}
	if b.ResourceID != nil {
		out.ResourceId = *b.ResourceID
	}
	if b.CancelReason != nil {
		out.CancelReason = *b.CancelReason
	}
	return out
}
