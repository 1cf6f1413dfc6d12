package metrics

import (
	"sync"

	"medibook/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medibook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created by kind.",
		},
		[]string{"kind"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Rejected booking mutations by kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	bookingsCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Cancelled bookings by kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	absenceSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "absence_swept_total",
			Help:      "Bookings moved to cancelled/absent by the sweeper.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, bookingsCancelled, absenceSwept)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncConflict counts a rejected create or reschedule.
func IncConflict(kind, reason string) {
	bookingConflicts.WithLabelValues(kind, reason).Inc()
}

// Subscribe feeds booking counters from lifecycle events.
func Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		bookingsCreated.WithLabelValues(string(p.Kind)).Inc()
		return nil
	})

	countCancel := func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		bookingsCancelled.WithLabelValues(string(p.Kind), p.Reason).Inc()
		if e.Type == events.EventBookingAbsent {
			absenceSwept.Inc()
		}
		return nil
	}
	bus.Subscribe(events.EventBookingCancelled, countCancel)
	bus.Subscribe(events.EventBookingAbsent, countCancel)
}
