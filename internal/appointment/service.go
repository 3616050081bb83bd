package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentAttended  = "APPOINTMENT_ATTENDED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentRebooked  = "APPOINTMENT_REBOOKED"
)

// Engine owns every appointment record and is the only writer of slot occupancy
// and appointment status. One mutex covers all check-then-act sequences, because
// the time conflict check reads across a patient's other appointments.
// Events are published while the lock is held, so the sink must not block;
// production wires the Dispatcher, whose Publish only enqueues.
type Engine struct {
	ids  IDSource
	sink EventSink
	log  zerolog.Logger
	now  func() time.Time

	mu      sync.RWMutex
	records map[int]*Appointment
	order   []int
}

func NewEngine(ids IDSource, sink EventSink, logger zerolog.Logger) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		ids:     ids,
		sink:    sink,
		log:     logger.With().Str("component", "engine").Logger(),
		now:     time.Now,
		records: make(map[int]*Appointment),
	}
}

// Book reserves the slot for the patient and returns the new appointment ID.
// On failure neither the slot, the patient list nor the collection change.
func (e *Engine) Book(ctx context.Context, patient Patient, slot Slot) (int, error) {
	e.mu.Lock()

	if slot.IsBooked() {
		e.mu.Unlock()
		return 0, &BookingError{PatientID: patient.PatientID(), SlotID: slotID(slot), Reason: ErrSlotAlreadyBooked}
	}
	if e.hasTimeConflict(patient, slot.Timestamp()) {
		e.mu.Unlock()
		return 0, &BookingError{PatientID: patient.PatientID(), SlotID: slotID(slot), Reason: ErrPatientTimeConflict}
	}

	now := e.now()
	appt := &Appointment{
		ID:        e.ids.NextAppointmentID(),
		Patient:   patient,
		Slot:      slot,
		Status:    StatusBooked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slot.SetBooked(true)
	patient.AddAppointment(appt.ID)
	e.records[appt.ID] = appt
	e.order = append(e.order, appt.ID)
	snapshot := *appt

	// published under the lock so sinks see transitions in the order they happened
	e.emit(ctx, EventAppointmentBooked, snapshot)
	e.mu.Unlock()

	return snapshot.ID, nil
}

// Get returns a copy of the appointment.
func (e *Engine) Get(ctx context.Context, id int) (Appointment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	appt, ok := e.records[id]
	if !ok {
		return Appointment{}, &AppointmentError{Op: "get", ID: id, Reason: ErrAppointmentNotFound}
	}
	return *appt, nil
}

// Attend marks a booked appointment as attended. Attended is terminal.
func (e *Engine) Attend(ctx context.Context, id int) error {
	e.mu.Lock()

	appt, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return &AppointmentError{Op: "attend", ID: id, Reason: ErrAppointmentNotFound}
	}
	switch appt.Status {
	case StatusAttended:
		e.mu.Unlock()
		return &AppointmentError{Op: "attend", ID: id, Reason: ErrAlreadyAttended}
	case StatusCancelled:
		e.mu.Unlock()
		return &AppointmentError{Op: "attend", ID: id, Reason: ErrCancelled}
	}

	appt.Status = StatusAttended
	appt.UpdatedAt = e.now()
	snapshot := *appt

	e.emit(ctx, EventAppointmentAttended, snapshot)
	e.mu.Unlock()

	return nil
}

// Cancel frees the slot of a booked appointment. The record stays in the
// collection and in the patient's list so it can be rebooked.
func (e *Engine) Cancel(ctx context.Context, id int) error {
	e.mu.Lock()

	appt, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return &AppointmentError{Op: "cancel", ID: id, Reason: ErrAppointmentNotFound}
	}
	switch appt.Status {
	case StatusCancelled:
		e.mu.Unlock()
		return &AppointmentError{Op: "cancel", ID: id, Reason: ErrCancelled}
	case StatusAttended:
		e.mu.Unlock()
		return &AppointmentError{Op: "cancel", ID: id, Reason: ErrCannotCancelAttended}
	}

	appt.Status = StatusCancelled
	appt.UpdatedAt = e.now()
	appt.Slot.SetBooked(false)
	snapshot := *appt

	e.emit(ctx, EventAppointmentCancelled, snapshot)
	e.mu.Unlock()

	return nil
}

// Rebook restores a cancelled appointment into its original slot, keeping its ID.
func (e *Engine) Rebook(ctx context.Context, id int) (int, error) {
	e.mu.Lock()

	appt, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return 0, &RebookError{ID: id, Reason: ErrAppointmentNotFound}
	}
	if appt.Status != StatusCancelled {
		e.mu.Unlock()
		return 0, &RebookError{ID: id, Reason: ErrNotCancelled}
	}
	if appt.Slot.IsBooked() {
		e.mu.Unlock()
		return 0, &RebookError{ID: id, Reason: ErrSlotNoLongerAvailable}
	}
	// the record itself is Cancelled, so the scan never matches it
	if e.hasTimeConflict(appt.Patient, appt.Slot.Timestamp()) {
		e.mu.Unlock()
		return 0, &RebookError{ID: id, Reason: ErrPatientTimeConflict}
	}

	appt.Status = StatusBooked
	appt.UpdatedAt = e.now()
	appt.Slot.SetBooked(true)
	snapshot := *appt

	e.emit(ctx, EventAppointmentRebooked, snapshot)
	e.mu.Unlock()

	return snapshot.ID, nil
}

// List returns copies of all appointments in the order they were created.
func (e *Engine) List() []Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Appointment, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.records[id])
	}
	return out
}

// hasTimeConflict reports whether the patient holds a Booked appointment at the given time.
// Caller must hold e.mu.
func (e *Engine) hasTimeConflict(patient Patient, at time.Time) bool {
	for _, id := range patient.AppointmentIDs() {
		appt, ok := e.records[id]
		if !ok || appt.Status != StatusBooked {
			continue
		}
		if appt.Slot.Timestamp().Equal(at) {
			return true
		}
	}
	return false
}

func (e *Engine) emit(ctx context.Context, eventType string, appt Appointment) {
	ev := NewEvent(eventType, appt)
	if err := e.sink.Publish(ctx, ev); err != nil {
		e.log.Warn().Err(err).
			Str("event_type", eventType).
			Int("appointment_id", appt.ID).
			Msg("failed to publish appointment event")
	}
}
