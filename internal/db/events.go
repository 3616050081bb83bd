package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackgods/physio-booking/internal/appointment"
)

const createEventLogs = `
CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_id       UUID        NOT NULL UNIQUE,
	event_type     TEXT        NOT NULL,
	appointment_id INTEGER     NOT NULL,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertEventLog = `
INSERT INTO event_logs (event_id, event_type, appointment_id, payload, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
ON CONFLICT (event_id) DO NOTHING`

// Execer is the part of pgxpool.Pool the event log uses.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EventLog appends appointment events to the event_logs table. Nothing reads them back.
type EventLog struct {
	db Execer
}

func NewEventLog(db Execer) *EventLog {
	return &EventLog{db: db}
}

func (l *EventLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, createEventLogs); err != nil {
		return fmt.Errorf("create event_logs: %w", err)
	}
	return nil
}

func (l *EventLog) Publish(ctx context.Context, ev appointment.Event) error {
	payload, err := json.Marshal(eventPayload{
		PatientID: ev.PatientID,
		SlotID:    ev.SlotID,
		Status:    string(ev.Status),
	})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = l.db.Exec(ctx, insertEventLog, ev.ID, ev.Type, ev.AppointmentID, payload, nullableTime(ev.OccurredAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

type eventPayload struct {
	PatientID int    `json:"patient_id"`
	SlotID    int    `json:"slot_id"`
	Status    string `json:"status"`
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
