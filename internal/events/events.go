package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medibook/internal/models"
)

const (
	EventBookingCreated     = "booking_created"
	EventBookingConfirmed   = "booking_confirmed"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingRescheduled = "booking_rescheduled"
	EventBookingCompleted   = "booking_completed"
	EventBookingAbsent      = "booking_absent"
)

// BookingEvents lists every booking lifecycle event type.
var BookingEvents = []string{
	EventBookingCreated,
	EventBookingConfirmed,
	EventBookingCancelled,
	EventBookingRescheduled,
	EventBookingCompleted,
	EventBookingAbsent,
}

// BookingEventPayload describes the booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID    int64       `json:"booking_id"`
	Kind         models.Kind `json:"kind"`
	SubjectID    int64       `json:"subject_id"`
	ProviderID   int64       `json:"provider_id"`
	ResourceID   *int64      `json:"resource_id,omitempty"`
	Date         string      `json:"date"`
	Time         string      `json:"time"`
	Status       string      `json:"status"`
	Reason       string      `json:"reason,omitempty"`
	PreviousDate string      `json:"previous_date,omitempty"`
	PreviousTime string      `json:"previous_time,omitempty"`
	ChangedBy    string      `json:"changed_by,omitempty"`
	ChangedByID  int64       `json:"changed_by_id,omitempty"`
}

// NewBookingPayload snapshots b as changed by actor.
func NewBookingPayload(b *models.Booking, actor models.Actor) BookingEventPayload {
	p := BookingEventPayload{
		BookingID:   b.ID,
		Kind:        b.Kind,
		SubjectID:   b.SubjectID,
		ProviderID:  b.ProviderID,
		ResourceID:  b.ResourceID,
		Date:        b.Date,
		Time:        b.Time,
		Status:      b.Status,
		ChangedBy:   actor.Role,
		ChangedByID: actor.ID,
	}
	if b.CancelReason != nil {
		p.Reason = *b.CancelReason
	}
	return p
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     func(event *Event, err error)
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError sets a callback for handler failures. Without one they are dropped.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every booking event.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, eventType := range BookingEvents {
		b.Subscribe(eventType, handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
