package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
)

// TimeLayout renders slot times as e.g. "Monday, 06 January 2025 - 9:00 AM".
const TimeLayout = "Monday, 02 January 2006 - 3:04 PM"

type AppointmentLister interface {
	List() []appointment.Appointment
}

type PhysiotherapistLister interface {
	Physiotherapists() []*clinic.Physiotherapist
}

type AppointmentRow struct {
	AppointmentID   int    `json:"appointment_id"`
	Physiotherapist string `json:"physiotherapist"`
	Treatment       string `json:"treatment"`
	Patient         string `json:"patient"`
	Time            string `json:"time"`
	Status          string `json:"status"`
}

type PhysiotherapistRow struct {
	PhysiotherapistID int    `json:"physiotherapist_id"`
	Name              string `json:"name"`
	Attended          int    `json:"attended"`
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func StatusLabel(s appointment.Status) string {
	switch s {
	case appointment.StatusBooked:
		return "Booked"
	case appointment.StatusCancelled:
		return "Cancelled"
	case appointment.StatusAttended:
		return "Attended"
	default:
		return string(s)
	}
}

// Appointments lists every appointment in booking order. A non-nil physio limits
// the rows to that physiotherapist's slots.
func Appointments(engine AppointmentLister, physio *clinic.Physiotherapist) []AppointmentRow {
	rows := []AppointmentRow{}
	for _, appt := range engine.List() {
		slot, ok := appt.Slot.(*clinic.TimetableSlot)
		if !ok {
			continue
		}
		if physio != nil && slot.Physiotherapist() != physio {
			continue
		}
		rows = append(rows, AppointmentRow{
			AppointmentID:   appt.ID,
			Physiotherapist: slot.Physiotherapist().FullName,
			Treatment:       slot.Treatment().Name,
			Patient:         patientName(appt.Patient),
			Time:            FormatTime(slot.Timestamp()),
			Status:          StatusLabel(appt.Status),
		})
	}
	return rows
}

// Physiotherapists counts attended appointments per physiotherapist, busiest first.
func Physiotherapists(dir PhysiotherapistLister, engine AppointmentLister) []PhysiotherapistRow {
	attended := make(map[*clinic.Physiotherapist]int)
	for _, appt := range engine.List() {
		if appt.Status != appointment.StatusAttended {
			continue
		}
		if slot, ok := appt.Slot.(*clinic.TimetableSlot); ok {
			attended[slot.Physiotherapist()]++
		}
	}

	rows := []PhysiotherapistRow{}
	for _, p := range dir.Physiotherapists() {
		rows = append(rows, PhysiotherapistRow{
			PhysiotherapistID: p.ID,
			Name:              p.FullName,
			Attended:          attended[p],
		})
	}
	slices.SortStableFunc(rows, func(a, b PhysiotherapistRow) int {
		return cmp.Compare(b.Attended, a.Attended)
	})
	return rows
}

func patientName(p appointment.Patient) string {
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}
