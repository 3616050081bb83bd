package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
)

func bookAppointmentHandler(engine *appointment.Engine, dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.PatientID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a positive integer")
			return
		}
		if req.SlotID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "slot_id must be a positive integer")
			return
		}

		patient, ok := dir.Patient(req.PatientID)
		if !ok {
			writeError(w, http.StatusNotFound, "patient_not_found", "no patient with that id")
			return
		}
		slot, ok := dir.Slot(req.SlotID)
		if !ok {
			writeError(w, http.StatusNotFound, "slot_not_found", "no slot with that id")
			return
		}

		id, err := engine.Book(r.Context(), patient, slot)
		if err != nil {
			handleBookError(w, err)
			return
		}

		writeAppointment(w, r, engine, http.StatusCreated, id)
	}
}

func getAppointmentHandler(engine *appointment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}
		writeAppointment(w, r, engine, http.StatusOK, id)
	}
}

func attendAppointmentHandler(engine *appointment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}
		if err := engine.Attend(r.Context(), id); err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeAppointment(w, r, engine, http.StatusOK, id)
	}
}

func cancelAppointmentHandler(engine *appointment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}
		if err := engine.Cancel(r.Context(), id); err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeAppointment(w, r, engine, http.StatusOK, id)
	}
}

func rebookAppointmentHandler(engine *appointment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
			return
		}
		rebooked, err := engine.Rebook(r.Context(), id)
		if err != nil {
			handleRebookError(w, err)
			return
		}
		writeAppointment(w, r, engine, http.StatusOK, rebooked)
	}
}

func writeAppointment(w http.ResponseWriter, r *http.Request, engine *appointment.Engine, status, id int) {
	appt, err := engine.Get(r.Context(), id)
	if err != nil {
		handleAppointmentError(w, err)
		return
	}
	writeJSON(w, status, toAppointmentResponse(appt))
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrSlotAlreadyBooked):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, appointment.ErrPatientTimeConflict):
		writeError(w, http.StatusConflict, "patient_time_conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrAlreadyAttended):
		writeError(w, http.StatusConflict, "already_attended", err.Error())
	case errors.Is(err, appointment.ErrCancelled):
		writeError(w, http.StatusConflict, "appointment_cancelled", err.Error())
	case errors.Is(err, appointment.ErrCannotCancelAttended):
		writeError(w, http.StatusConflict, "cannot_cancel_attended", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleRebookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrNotCancelled):
		writeError(w, http.StatusConflict, "not_cancelled", err.Error())
	case errors.Is(err, appointment.ErrSlotNoLongerAvailable):
		writeError(w, http.StatusConflict, "slot_no_longer_available", err.Error())
	case errors.Is(err, appointment.ErrPatientTimeConflict):
		writeError(w, http.StatusConflict, "patient_time_conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
