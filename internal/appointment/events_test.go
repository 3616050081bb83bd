package appointment

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	rec     recordingSink
}

func (s *blockingSink) Publish(ctx context.Context, ev Event) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.rec.Publish(ctx, ev)
}

func TestDispatcher_DeliversQueuedEventsOnClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, 16, zerolog.Nop())

	for i := range 10 {
		require.NoError(t, d.Publish(context.Background(), Event{Type: EventAppointmentBooked, AppointmentID: 10000 + i}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	require.Len(t, sink.events, 10)
	for i, ev := range sink.events {
		assert.Equal(t, 10000+i, ev.AppointmentID)
	}
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	var logs bytes.Buffer
	sink := &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	d := NewDispatcher(sink, 1, zerolog.New(&logs))

	require.NoError(t, d.Publish(context.Background(), Event{AppointmentID: 1}))
	<-sink.entered

	require.NoError(t, d.Publish(context.Background(), Event{AppointmentID: 2}))
	require.NoError(t, d.Publish(context.Background(), Event{AppointmentID: 3}))
	close(sink.release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	require.Len(t, sink.rec.events, 2)
	assert.Equal(t, 1, sink.rec.events[0].AppointmentID)
	assert.Equal(t, 2, sink.rec.events[1].AppointmentID)
	assert.Contains(t, logs.String(), "dropping event")
}

func TestDispatcher_RejectsAfterClose(t *testing.T) {
	d := NewDispatcher(NopSink{}, 4, zerolog.Nop())
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	err := d.Publish(context.Background(), Event{})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	sink := &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	d := NewDispatcher(sink, 1, zerolog.Nop())
	defer close(sink.release)

	require.NoError(t, d.Publish(context.Background(), Event{AppointmentID: 1}))
	<-sink.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func TestMultiSink_PublishesToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{}
	b := &recordingSink{err: boom}
	c := &recordingSink{}

	err := MultiSink{a, b, c}.Publish(context.Background(), Event{Type: EventAppointmentCancelled})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.events, 1)
	assert.Len(t, c.events, 1)
}

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	require.NoError(t, sink.Publish(context.Background(), Event{
		Type:          EventAppointmentAttended,
		AppointmentID: 10003,
		PatientID:     10,
		SlotID:        4,
		Status:        StatusAttended,
	}))

	out := buf.String()
	assert.Contains(t, out, `"event_type":"APPOINTMENT_ATTENDED"`)
	assert.Contains(t, out, `"appointment_id":10003`)
	assert.Contains(t, out, `"component":"events"`)
}
