package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrDispatcherClosed = errors.New("event dispatcher closed")

// Event records one successful appointment transition.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	AppointmentID int       `json:"appointment_id"`
	PatientID     int       `json:"patient_id"`
	SlotID        int       `json:"slot_id"`
	Status        Status    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, appt Appointment) Event {
	ev := Event{
		ID:            uuid.New(),
		Type:          eventType,
		AppointmentID: appt.ID,
		SlotID:        appt.SlotID(),
		Status:        appt.Status,
		OccurredAt:    appt.UpdatedAt,
	}
	if appt.Patient != nil {
		ev.PatientID = appt.Patient.PatientID()
	}
	return ev
}

// EventSink receives appointment events.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }

// LogSink writes every event as a structured log line.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) LogSink {
	return LogSink{log: logger.With().Str("component", "events").Logger()}
}

func (s LogSink) Publish(_ context.Context, ev Event) error {
	s.log.Info().
		Str("event_id", ev.ID.String()).
		Str("event_type", ev.Type).
		Int("appointment_id", ev.AppointmentID).
		Int("patient_id", ev.PatientID).
		Int("slot_id", ev.SlotID).
		Str("status", string(ev.Status)).
		Time("occurred_at", ev.OccurredAt).
		Msg("appointment event")
	return nil
}

// MultiSink publishes to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher hands events to a sink on a background worker so slow sinks
// never hold up booking. When the buffer is full the event is dropped.
type Dispatcher struct {
	sink    EventSink
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}
}

func NewDispatcher(sink EventSink, buffer int, logger zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		sink:    sink,
		timeout: 5 * time.Second,
		log:     logger.With().Str("component", "dispatcher").Logger(),
		events:  make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Publish(_ context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.events <- ev:
	default:
		d.log.Warn().
			Str("event_type", ev.Type).
			Int("appointment_id", ev.AppointmentID).
			Msg("event buffer full, dropping event")
	}
	return nil
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Publish(ctx, ev); err != nil {
			d.log.Error().Err(err).
				Str("event_type", ev.Type).
				Int("appointment_id", ev.AppointmentID).
				Msg("failed to deliver event")
		}
		cancel()
	}
}
