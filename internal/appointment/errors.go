package appointment

import (
	"errors"
	"fmt"
)

var (
	ErrSlotAlreadyBooked     = errors.New("slot already booked")
	ErrPatientTimeConflict   = errors.New("patient already has a booked appointment at this time")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrAlreadyAttended       = errors.New("appointment already attended")
	ErrCancelled             = errors.New("appointment is cancelled")
	ErrCannotCancelAttended  = errors.New("cannot cancel an attended appointment")
	ErrNotCancelled          = errors.New("appointment is not cancelled")
	ErrSlotNoLongerAvailable = errors.New("slot is no longer available")
)

// BookingError is returned by Book. Reason is ErrSlotAlreadyBooked or ErrPatientTimeConflict.
type BookingError struct {
	PatientID int
	SlotID    int
	Reason    error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("book slot %d for patient %d: %v", e.SlotID, e.PatientID, e.Reason)
}

func (e *BookingError) Unwrap() error { return e.Reason }

// AppointmentError is returned by Get, Attend and Cancel. Reason is one of
// ErrAppointmentNotFound, ErrAlreadyAttended, ErrCancelled or ErrCannotCancelAttended.
type AppointmentError struct {
	Op     string
	ID     int
	Reason error
}

func (e *AppointmentError) Error() string {
	return fmt.Sprintf("%s appointment %d: %v", e.Op, e.ID, e.Reason)
}

func (e *AppointmentError) Unwrap() error { return e.Reason }

// RebookError is returned by Rebook. Reason is one of ErrAppointmentNotFound,
// ErrNotCancelled, ErrSlotNoLongerAvailable or ErrPatientTimeConflict.
type RebookError struct {
	ID     int
	Reason error
}

func (e *RebookError) Error() string {
	return fmt.Sprintf("rebook appointment %d: %v", e.ID, e.Reason)
}

func (e *RebookError) Unwrap() error { return e.Reason }
