package appointment

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/physio-booking/internal/clinic"
	"github.com/hackgods/physio-booking/internal/idgen"
)

var tenAM = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	engine *Engine
	sink   *recordingSink
	dir    *clinic.Directory
	physio *clinic.Physiotherapist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids := idgen.NewSource()
	dir := clinic.NewDirectory(ids)
	sink := &recordingSink{}
	return &fixture{
		engine: NewEngine(ids, sink, zerolog.Nop()),
		sink:   sink,
		dir:    dir,
		physio: dir.AddPhysiotherapist("Alice Smith", "123 Main St", "1234567890", []string{"Osteopathy"}),
	}
}

func (f *fixture) slot(at time.Time) *clinic.TimetableSlot {
	return f.dir.AddSlot(f.physio, clinic.Treatment{Name: "Massage"}, at)
}

func patient(id int, name string) *clinic.Patient {
	return clinic.NewPatient(id, name, "10 Baker St", "+441234567890")
}

func TestBook_SameTimeDifferentSlotConflicts(t *testing.T) {
	f := newFixture(t)
	p1 := patient(1, "Patient One")
	s1, s2 := f.slot(tenAM), f.slot(tenAM)

	id, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)
	assert.Equal(t, 10000, id)

	_, err = f.engine.Book(context.Background(), p1, s2)
	var bookErr *BookingError
	require.ErrorAs(t, err, &bookErr)
	assert.ErrorIs(t, err, ErrPatientTimeConflict)
	assert.Equal(t, s2.SlotID(), bookErr.SlotID)
	assert.False(t, s2.IsBooked())
	assert.Equal(t, []int{10000}, p1.AppointmentIDs())
}

func TestBook_SlotAlreadyBooked(t *testing.T) {
	f := newFixture(t)
	p1, p2 := patient(1, "Patient One"), patient(2, "Patient Two")
	s1 := f.slot(tenAM)

	_, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)

	_, err = f.engine.Book(context.Background(), p2, s1)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.Empty(t, p2.AppointmentIDs())
	assert.Len(t, f.engine.List(), 1)
}

func TestCancel_FreesSlotAndBlocksAttend(t *testing.T) {
	f := newFixture(t)
	p1 := patient(1, "Patient One")
	s1 := f.slot(tenAM)

	id, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)

	require.NoError(t, f.engine.Cancel(context.Background(), id))
	assert.False(t, s1.IsBooked())
	assert.Equal(t, []int{id}, p1.AppointmentIDs(), "cancelled id stays in the patient list")

	err = f.engine.Attend(context.Background(), id)
	var apptErr *AppointmentError
	require.ErrorAs(t, err, &apptErr)
	assert.Equal(t, "attend", apptErr.Op)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRebook_RestoresSameID(t *testing.T) {
	f := newFixture(t)
	p1 := patient(1, "Patient One")
	s1 := f.slot(tenAM)

	id, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(context.Background(), id))

	got, err := f.engine.Rebook(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 10000, got)
	assert.True(t, s1.IsBooked())

	appt, err := f.engine.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, appt.Status)
	assert.Equal(t, []int{10000}, p1.AppointmentIDs())
}

func TestRebook_SlotTakenBySomeoneElse(t *testing.T) {
	f := newFixture(t)
	p1, p2 := patient(1, "Patient One"), patient(2, "Patient Two")
	s1 := f.slot(tenAM)

	id, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(context.Background(), id))

	other, err := f.engine.Book(context.Background(), p2, s1)
	require.NoError(t, err)
	assert.Equal(t, 10001, other)

	_, err = f.engine.Rebook(context.Background(), id)
	var rebookErr *RebookError
	require.ErrorAs(t, err, &rebookErr)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

	appt, err := f.engine.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, appt.Status)
}

func TestRebook_PatientBookedElsewhereMeanwhile(t *testing.T) {
	f := newFixture(t)
	p1 := patient(1, "Patient One")
	s1, s2 := f.slot(tenAM), f.slot(tenAM)

	id, err := f.engine.Book(context.Background(), p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(context.Background(), id))
	_, err = f.engine.Book(context.Background(), p1, s2)
	require.NoError(t, err)

	_, err = f.engine.Rebook(context.Background(), id)
	assert.ErrorIs(t, err, ErrPatientTimeConflict)
	assert.False(t, s1.IsBooked())
}

func TestAttend_UnknownID(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Attend(context.Background(), 9999)
	var apptErr *AppointmentError
	require.ErrorAs(t, err, &apptErr)
	assert.Equal(t, 9999, apptErr.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.engine.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, f.engine.Cancel(context.Background(), 9999), ErrAppointmentNotFound)
	_, err = f.engine.Rebook(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTransitionsOutOfTerminalStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := patient(1, "Patient One")
	s1 := f.slot(tenAM)
	s2 := f.slot(tenAM.Add(time.Hour))

	attended, err := f.engine.Book(ctx, p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Attend(ctx, attended))

	assert.ErrorIs(t, f.engine.Attend(ctx, attended), ErrAlreadyAttended)
	assert.ErrorIs(t, f.engine.Cancel(ctx, attended), ErrCannotCancelAttended)
	_, err = f.engine.Rebook(ctx, attended)
	assert.ErrorIs(t, err, ErrNotCancelled)
	assert.True(t, s1.IsBooked(), "attending keeps the slot occupied")

	booked, err := f.engine.Book(ctx, p1, s2)
	require.NoError(t, err)
	_, err = f.engine.Rebook(ctx, booked)
	assert.ErrorIs(t, err, ErrNotCancelled)

	require.NoError(t, f.engine.Cancel(ctx, booked))
	assert.ErrorIs(t, f.engine.Cancel(ctx, booked), ErrCancelled)
}

func TestBook_CancelledAppointmentDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := patient(1, "Patient One")
	s1, s2 := f.slot(tenAM), f.slot(tenAM)

	id, err := f.engine.Book(ctx, p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(ctx, id))

	_, err = f.engine.Book(ctx, p1, s2)
	require.NoError(t, err)
	assert.Equal(t, []int{10000, 10001}, p1.AppointmentIDs())
}

func TestEngine_EmitsEventPerTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := patient(7, "Patient One")
	s1 := f.slot(tenAM)

	id, err := f.engine.Book(ctx, p1, s1)
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(ctx, id))
	_, err = f.engine.Rebook(ctx, id)
	require.NoError(t, err)
	require.NoError(t, f.engine.Attend(ctx, id))
	_ = f.engine.Attend(ctx, id)

	assert.Equal(t, []string{
		EventAppointmentBooked,
		EventAppointmentCancelled,
		EventAppointmentRebooked,
		EventAppointmentAttended,
	}, f.sink.types())

	first := f.sink.events[0]
	assert.Equal(t, id, first.AppointmentID)
	assert.Equal(t, 7, first.PatientID)
	assert.Equal(t, s1.SlotID(), first.SlotID)
	assert.Equal(t, StatusBooked, first.Status)
	assert.Equal(t, StatusAttended, f.sink.events[3].Status)
}

func TestEngine_EventsFollowTransitionOrder(t *testing.T) {
	ids := idgen.NewSource()
	dir := clinic.NewDirectory(ids)
	physio := dir.AddPhysiotherapist("Alice Smith", "123 Main St", "1234567890", []string{"Osteopathy"})
	s1 := dir.AddSlot(physio, clinic.Treatment{Name: "Massage"}, tenAM)

	sink := &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	engine := NewEngine(ids, sink, zerolog.Nop())
	ctx := context.Background()

	booked := make(chan int, 1)
	go func() {
		id, err := engine.Book(ctx, patient(1, "Patient One"), s1)
		assert.NoError(t, err)
		booked <- id
	}()
	<-sink.entered

	cancelled := make(chan error, 1)
	go func() {
		cancelled <- engine.Cancel(ctx, 10000)
	}()

	// give Cancel the chance to run ahead of the blocked BOOKED publish
	time.Sleep(50 * time.Millisecond)
	close(sink.release)

	require.Equal(t, 10000, <-booked)
	require.NoError(t, <-cancelled)
	assert.Equal(t, []string{EventAppointmentBooked, EventAppointmentCancelled}, sink.rec.types())
}

func TestEngine_SinkFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("sink down")

	_, err := f.engine.Book(context.Background(), patient(1, "Patient One"), f.slot(tenAM))
	assert.NoError(t, err)
}

func TestBook_ConcurrentSameSlotHasOneWinner(t *testing.T) {
	f := newFixture(t)
	s1 := f.slot(tenAM)

	const n = 64
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Book(context.Background(), patient(i+1, "Racer"), s1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, ErrSlotAlreadyBooked) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, rejected)
	assert.Len(t, f.engine.List(), 1)
	assert.True(t, s1.IsBooked())
}

// TestEngine_RandomOperationsKeepInvariants drives a random mix of operations and checks
// slot exclusivity, per-patient time uniqueness and ID uniqueness after every step.
func TestEngine_RandomOperationsKeepInvariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	patients := make([]*clinic.Patient, 4)
	for i := range patients {
		patients[i] = patient(i+1, "Patient")
	}
	slots := make([]*clinic.TimetableSlot, 6)
	for i := range slots {
		// three distinct times, two slots each
		slots[i] = f.slot(tenAM.Add(time.Duration(i%3) * time.Hour))
	}

	for step := 0; step < 500; step++ {
		before := len(f.engine.List())
		switch rng.IntN(4) {
		case 0:
			p := patients[rng.IntN(len(patients))]
			s := slots[rng.IntN(len(slots))]
			wasBooked := s.IsBooked()
			listBefore := p.AppointmentIDs()
			if _, err := f.engine.Book(ctx, p, s); err != nil {
				assert.Equal(t, wasBooked, s.IsBooked())
				assert.Equal(t, listBefore, p.AppointmentIDs())
				assert.Len(t, f.engine.List(), before)
			}
		case 1:
			_ = f.engine.Cancel(ctx, 10000+rng.IntN(before+1))
		case 2:
			_, _ = f.engine.Rebook(ctx, 10000+rng.IntN(before+1))
		case 3:
			_ = f.engine.Attend(ctx, 10000+rng.IntN(before+1))
		}
		checkInvariants(t, f.engine.List(), slots)
	}
}

func checkInvariants(t *testing.T, appts []Appointment, slots []*clinic.TimetableSlot) {
	t.Helper()

	seen := make(map[int]bool)
	occupying := make(map[Slot]int)
	type patientTime struct {
		patient int
		at      time.Time
	}
	times := make(map[patientTime]int)

	for _, a := range appts {
		require.False(t, seen[a.ID], "duplicate appointment id %d", a.ID)
		seen[a.ID] = true
		if a.Status == StatusCancelled {
			continue
		}
		// an attended session keeps its slot
		occupying[a.Slot]++
		if a.Status != StatusBooked {
			continue
		}
		times[patientTime{a.Patient.PatientID(), a.Slot.Timestamp().UTC()}]++
	}

	for _, s := range slots {
		n := occupying[s]
		require.LessOrEqual(t, n, 1, "slot %d has %d active appointments", s.SlotID(), n)
		require.Equal(t, n == 1, s.IsBooked(), "slot %d occupancy out of sync", s.SlotID())
	}
	for k, n := range times {
		require.Equal(t, 1, n, "patient %d double booked at %s", k.patient, k.at)
	}
}
