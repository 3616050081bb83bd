package appointment

import "time"

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusAttended  Status = "attended"
)

// Appointment ties a patient to a timetable slot. The ID stays the same across
// cancel and rebook cycles.
type Appointment struct {
	ID        int
	Patient   Patient
	Slot      Slot
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotID returns the directory ID of the booked slot, or 0 if the slot does not expose one.
func (a Appointment) SlotID() int {
	return slotID(a.Slot)
}

func slotID(s Slot) int {
	if ided, ok := s.(interface{ SlotID() int }); ok {
		return ided.SlotID()
	}
	return 0
}
