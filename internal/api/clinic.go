package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
)

func listPatientsHandler(dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients := dir.Patients()
		resp := make([]PatientResponse, 0, len(patients))
		for _, p := range patients {
			resp = append(resp, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createPatientHandler(dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		id, err := dir.AddPatient(req.FullName, req.Address, req.Telephone)
		if err != nil {
			handlePatientError(w, err)
			return
		}

		p, _ := dir.Patient(id)
		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func deletePatientHandler(dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a positive integer")
			return
		}
		if !dir.DeletePatient(id) {
			writeError(w, http.StatusNotFound, "patient_not_found", "no patient with that id")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listPatientAppointmentsHandler(engine *appointment.Engine, dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a positive integer")
			return
		}
		p, ok := dir.Patient(id)
		if !ok {
			writeError(w, http.StatusNotFound, "patient_not_found", "no patient with that id")
			return
		}

		resp := []AppointmentResponse{}
		for _, apptID := range p.AppointmentIDs() {
			appt, err := engine.Get(r.Context(), apptID)
			if err != nil {
				continue
			}
			resp = append(resp, toAppointmentResponse(appt))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// listPhysiotherapistsHandler filters by name when given, otherwise by expertise.
func listPhysiotherapistsHandler(dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var physios []*clinic.Physiotherapist
		switch q := r.URL.Query(); {
		case q.Get("name") != "":
			physios = dir.PhysiotherapistsByName(q.Get("name"))
		case q.Get("expertise") != "":
			physios = dir.PhysiotherapistsByExpertise(q.Get("expertise"))
		default:
			physios = dir.Physiotherapists()
		}

		resp := make([]PhysiotherapistResponse, 0, len(physios))
		for _, p := range physios {
			resp = append(resp, toPhysiotherapistResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listSlotsHandler(dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_physiotherapist_id", "id must be a positive integer")
			return
		}
		physio, ok := dir.Physiotherapist(id)
		if !ok {
			writeError(w, http.StatusNotFound, "physiotherapist_not_found", "no physiotherapist with that id")
			return
		}

		onlyAvailable := false
		if raw := r.URL.Query().Get("available"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_available", "available must be a boolean")
				return
			}
			onlyAvailable = v
		}

		resp := []SlotResponse{}
		for _, s := range physio.Timetable() {
			if onlyAvailable && s.IsBooked() {
				continue
			}
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handlePatientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrNameTooShort):
		writeError(w, http.StatusBadRequest, "name_too_short", err.Error())
	case errors.Is(err, clinic.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, clinic.ErrInvalidTelephone):
		writeError(w, http.StatusBadRequest, "invalid_telephone", err.Error())
	case errors.Is(err, clinic.ErrPatientExists):
		writeError(w, http.StatusConflict, "patient_exists", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
