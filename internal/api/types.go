package api

import (
	"time"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
	"github.com/hackgods/physio-booking/internal/report"
)

type CreateAppointmentRequest struct {
	PatientID int `json:"patient_id"`
	SlotID    int `json:"slot_id"`
}

type CreatePatientRequest struct {
	FullName  string `json:"full_name"`
	Address   string `json:"address"`
	Telephone string `json:"telephone"`
}

type AppointmentResponse struct {
	ID              int       `json:"id"`
	PatientID       int       `json:"patient_id"`
	SlotID          int       `json:"slot_id"`
	Status          string    `json:"status"`
	Physiotherapist string    `json:"physiotherapist,omitempty"`
	Treatment       string    `json:"treatment,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PatientResponse struct {
	ID             int    `json:"id"`
	FullName       string `json:"full_name"`
	Address        string `json:"address"`
	Telephone      string `json:"telephone"`
	AppointmentIDs []int  `json:"appointment_ids"`
}

type PhysiotherapistResponse struct {
	ID        int      `json:"id"`
	FullName  string   `json:"full_name"`
	Address   string   `json:"address"`
	Telephone string   `json:"telephone"`
	Expertise []string `json:"expertise"`
}

type SlotResponse struct {
	ID                int       `json:"id"`
	PhysiotherapistID int       `json:"physiotherapist_id"`
	Treatment         string    `json:"treatment"`
	StartsAt          time.Time `json:"starts_at"`
	Display           string    `json:"display"`
	Booked            bool      `json:"booked"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:        a.ID,
		SlotID:    a.SlotID(),
		Status:    string(a.Status),
		StartsAt:  a.Slot.Timestamp(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Patient != nil {
		resp.PatientID = a.Patient.PatientID()
	}
	if slot, ok := a.Slot.(*clinic.TimetableSlot); ok {
		resp.Physiotherapist = slot.Physiotherapist().FullName
		resp.Treatment = slot.Treatment().Name
	}
	return resp
}

func toPatientResponse(p *clinic.Patient) PatientResponse {
	ids := p.AppointmentIDs()
	if ids == nil {
		ids = []int{}
	}
	return PatientResponse{
		ID:             p.ID,
		FullName:       p.FullName,
		Address:        p.Address,
		Telephone:      p.Tel,
		AppointmentIDs: ids,
	}
}

func toPhysiotherapistResponse(p *clinic.Physiotherapist) PhysiotherapistResponse {
	return PhysiotherapistResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Address:   p.Address,
		Telephone: p.Tel,
		Expertise: p.Expertise,
	}
}

func toSlotResponse(s *clinic.TimetableSlot) SlotResponse {
	return SlotResponse{
		ID:                s.SlotID(),
		PhysiotherapistID: s.Physiotherapist().ID,
		Treatment:         s.Treatment().Name,
		StartsAt:          s.Timestamp(),
		Display:           report.FormatTime(s.Timestamp()),
		Booked:            s.IsBooked(),
	}
}
