package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"medibook/internal/models"
	"medibook/internal/scheduling"
)

var errMissingActor = errors.New("missing or invalid actor headers")

// actorFrom reads the identity set by upstream auth middleware.
func actorFrom(r *http.Request) (models.Actor, error) {
	role := strings.ToLower(strings.TrimSpace(r.Header.Get(headerActorRole)))
	var id int64
	if raw := strings.TrimSpace(r.Header.Get(headerActorID)); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Actor{}, errMissingActor
		}
		id = parsed
	}
	actor := models.Actor{ID: id, Role: role}
	if role == models.RoleProvider {
		actor.Kind = models.Kind(strings.ToLower(strings.TrimSpace(r.Header.Get(headerActorKind))))
	}
	if !actor.Valid() {
		return models.Actor{}, errMissingActor
	}
	return actor, nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, scheduling.Validationf("%s must be a positive integer", name)
	}
	return &id, nil
}

// decodeBody decodes JSON into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return scheduling.Validationf("invalid JSON body")
	}
	return nil
}

// writeServiceError maps outcome kinds to status codes; anything else is a 500.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	switch scheduling.KindOf(err) {
	case scheduling.KindValidation:
		statusCode = http.StatusBadRequest
	case scheduling.KindForbidden:
		statusCode = http.StatusForbidden
	case scheduling.KindNotFound:
		statusCode = http.StatusNotFound
	case scheduling.KindConflict:
		statusCode = http.StatusConflict
	case scheduling.KindRateLimited:
		statusCode = http.StatusTooManyRequests
	default:
		s.log.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.log.Debug().Err(err).Str("request_id", requestIDFrom(r.Context())).Int("status", statusCode).Msg("request rejected")
	writeError(w, statusCode, err.Error())
}

func (s *HTTPServer) handleListProviders(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.PathValue("kind"))
	if !kind.Valid() {
		s.writeServiceError(w, r, scheduling.ErrInvalidKind)
		return
	}
	providers := []models.Provider{}
	if s.providers != nil {
		providers = append(providers, s.providers.ListProviders(kind)...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	resourceID, err := queryID(r, "resource_id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var excludeID int64
	if ex, err := queryID(r, "exclude_booking_id"); err != nil {
		s.writeServiceError(w, r, err)
		return
	} else if ex != nil {
		excludeID = *ex
	}

	day, err := s.bookings.CheckAvailability(r.Context(), &models.CheckAvailabilityRequest{
		Kind:             models.Kind(r.PathValue("kind")),
		ProviderID:       providerID,
		ResourceID:       resourceID,
		Date:             date,
		ExcludeBookingID: excludeID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *HTTPServer) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}
	resourceID, err := queryID(r, "resource_id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	templates, err := s.availability.GetAvailability(r.Context(), models.Kind(r.PathValue("kind")), providerID, resourceID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *HTTPServer) handleReplaceAvailability(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	providerID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}

	var req models.ReplaceAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	req.Actor = actor
	req.Kind = models.Kind(r.PathValue("kind"))
	req.ProviderID = providerID

	templates, err := s.availability.ReplaceAvailability(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req models.CreateBookingRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	req.Actor = actor
	req.Kind = models.Kind(r.PathValue("kind"))

	booking, err := s.bookings.CreateBooking(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// bookingAction wraps handlers that act on /bookings/{id} as an actor.
func (s *HTTPServer) bookingAction(w http.ResponseWriter, r *http.Request,
	fn func(actor models.Actor, id int64) (*models.Booking, error)) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := fn(actor, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	s.bookingAction(w, r, func(actor models.Actor, id int64) (*models.Booking, error) {
		return s.bookings.GetBooking(r.Context(), actor, id)
	})
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.bookingAction(w, r, func(actor models.Actor, id int64) (*models.Booking, error) {
		var req models.CancelRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		req.Actor = actor
		req.BookingID = id
		return s.bookings.CancelBooking(r.Context(), &req)
	})
}

func (s *HTTPServer) handleReschedule(w http.ResponseWriter, r *http.Request) {
	s.bookingAction(w, r, func(actor models.Actor, id int64) (*models.Booking, error) {
		var req models.RescheduleRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		req.Actor = actor
		req.BookingID = id
		return s.bookings.RescheduleBooking(r.Context(), &req)
	})
}

func (s *HTTPServer) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.bookingAction(w, r, func(actor models.Actor, id int64) (*models.Booking, error) {
		return s.bookings.ConfirmBooking(r.Context(), actor, id)
	})
}

func (s *HTTPServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.bookingAction(w, r, func(actor models.Actor, id int64) (*models.Booking, error) {
		return s.bookings.CompleteBooking(r.Context(), actor, id)
	})
}

func (s *HTTPServer) handleSubjectBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	subjectID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subject id")
		return
	}

	list, err := s.bookings.ListSubjectBookings(r.Context(), actor, subjectID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": nonNil(list)})
}

func (s *HTTPServer) handleProviderBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	providerID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}

	list, err := s.bookings.ListProviderBookings(r.Context(), actor, models.Kind(r.PathValue("kind")), providerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": nonNil(list)})
}

func (s *HTTPServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !actor.IsElevated() {
		s.writeServiceError(w, r, scheduling.ErrForbidden)
		return
	}

	var scope models.BookingScope
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("kind")); raw != "" {
		scope.Kind = models.Kind(raw)
		if !scope.Kind.Valid() {
			s.writeServiceError(w, r, scheduling.ErrInvalidKind)
			return
		}
	}
	for name, dst := range map[string]*int64{"provider_id": &scope.ProviderID, "subject_id": &scope.SubjectID} {
		id, err := queryID(r, name)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if id != nil {
			*dst = *id
		}
	}

	swept, err := s.bookings.SweepAbsent(r.Context(), scope)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"swept": swept})
}

func nonNil(list []models.Booking) []models.Booking {
	if list == nil {
		return []models.Booking{}
	}
	return list
}
