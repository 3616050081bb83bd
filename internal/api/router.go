package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
)

type RouterConfig struct {
	Engine       *appointment.Engine
	Directory    *clinic.Directory
	Dependencies []Dependency
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/patients", func(r chi.Router) {
		r.Get("/", listPatientsHandler(cfg.Directory))
		r.Post("/", createPatientHandler(cfg.Directory))
		r.Delete("/{id}", deletePatientHandler(cfg.Directory))
		r.Get("/{id}/appointments", listPatientAppointmentsHandler(cfg.Engine, cfg.Directory))
	})

	r.Get("/physiotherapists", listPhysiotherapistsHandler(cfg.Directory))
	r.Get("/physiotherapists/{id}/slots", listSlotsHandler(cfg.Directory))

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", bookAppointmentHandler(cfg.Engine, cfg.Directory))
		r.Get("/{id}", getAppointmentHandler(cfg.Engine))
		r.Post("/{id}/attend", attendAppointmentHandler(cfg.Engine))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Engine))
		r.Post("/{id}/rebook", rebookAppointmentHandler(cfg.Engine))
	})

	r.Get("/reports/appointments", appointmentReportHandler(cfg.Engine, cfg.Directory))
	r.Get("/reports/physiotherapists", physiotherapistReportHandler(cfg.Engine, cfg.Directory))

	return r
}
