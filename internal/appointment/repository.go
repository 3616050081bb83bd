package appointment

import "time"

// Patient is what the engine needs from a patient: its ID and the ordered
// list of appointment IDs it holds.
type Patient interface {
	PatientID() int
	AppointmentIDs() []int
	AddAppointment(id int)
}

// Slot is a bookable unit of time. The engine is the only writer of its booked flag.
type Slot interface {
	Timestamp() time.Time
	IsBooked() bool
	SetBooked(booked bool)
}

type IDSource interface {
	NextAppointmentID() int
}
