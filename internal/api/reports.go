package api

import (
	"net/http"
	"strconv"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
	"github.com/hackgods/physio-booking/internal/report"
)

func appointmentReportHandler(engine *appointment.Engine, dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var physio *clinic.Physiotherapist
		if raw := r.URL.Query().Get("physiotherapist_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_physiotherapist_id", "physiotherapist_id must be a positive integer")
				return
			}
			p, ok := dir.Physiotherapist(id)
			if !ok {
				writeError(w, http.StatusNotFound, "physiotherapist_not_found", "no physiotherapist with that id")
				return
			}
			physio = p
		}
		writeJSON(w, http.StatusOK, report.Appointments(engine, physio))
	}
}

func physiotherapistReportHandler(engine *appointment.Engine, dir *clinic.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, report.Physiotherapists(dir, engine))
	}
}
