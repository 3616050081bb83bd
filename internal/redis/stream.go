package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/physio-booking/internal/appointment"
)

// defaultMaxLen caps the stream so it behaves as a recent-activity feed.
const defaultMaxLen = 10000

type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// EventStream publishes appointment events onto a Redis stream.
type EventStream struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewEventStream(client StreamAdder, stream string) *EventStream {
	return &EventStream{client: client, stream: stream, maxLen: defaultMaxLen}
}

func (s *EventStream) Publish(ctx context.Context, ev appointment.Event) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: streamValues(ev),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func streamValues(ev appointment.Event) map[string]any {
	return map[string]any{
		"event_id":       ev.ID.String(),
		"event_type":     ev.Type,
		"appointment_id": strconv.Itoa(ev.AppointmentID),
		"patient_id":     strconv.Itoa(ev.PatientID),
		"slot_id":        strconv.Itoa(ev.SlotID),
		"status":         string(ev.Status),
		"occurred_at":    ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
