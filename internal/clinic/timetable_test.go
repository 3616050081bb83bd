package clinic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/physio-booking/internal/idgen"
)

func TestGenerateTimetable_RotatesExpertiseAndDays(t *testing.T) {
	dir := NewDirectory(idgen.NewSource())
	physio := dir.AddPhysiotherapist("Alice Smith", "123 Main St", "1234567890",
		[]string{"Sports Medicine", "Post-Op Recovery"})

	GenerateTimetable(dir, TimetableStart)

	slots := physio.Timetable()
	// weeks 0 and 2 use Sports Medicine (3 treatments), weeks 1 and 3 Post-Op Recovery (2), two days each
	require.Len(t, slots, 2*(3+2)*2)

	first := slots[0]
	assert.Equal(t, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), first.Timestamp())
	assert.Equal(t, "Sports Injury Assessment", first.Treatment().Name)
	assert.Equal(t, time.Date(2025, 1, 6, 11, 0, 0, 0, time.UTC), slots[2].Timestamp())

	// second working day of week 0 is Wednesday
	assert.Equal(t, time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC), slots[3].Timestamp())

	// week 1 starts on Tuesday with the second expertise area
	assert.Equal(t, time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC), slots[6].Timestamp())
	assert.Equal(t, "Surgical Rehabilitation", slots[6].Treatment().Name)

	for _, s := range slots {
		assert.False(t, s.IsBooked())
		assert.Same(t, physio, s.Physiotherapist())
	}
}

func TestGenerateTimetable_SkipsTimesAlreadyTaken(t *testing.T) {
	dir := NewDirectory(idgen.NewSource())
	physio := dir.AddPhysiotherapist("Bob Johnson", "456 Oak Ave", "9876543210", []string{"Osteopathy"})
	dir.AddSlot(physio, Treatment{Name: "Massage"}, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))

	GenerateTimetable(dir, TimetableStart)

	slots := physio.Timetable()
	assert.Equal(t, "Massage", slots[0].Treatment().Name)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), slots[1].Timestamp())
	assert.Equal(t, "Fall Prevention Session", slots[1].Treatment().Name)
}

func TestTreatmentsFor_UnknownExpertise(t *testing.T) {
	assert.Equal(t, []Treatment{{Name: "General Physiotherapy Session"}}, TreatmentsFor("Juggling"))
}

func TestSeed_IsDeterministic(t *testing.T) {
	opts := SeedOptions{Seed: 7, Patients: 10, Physiotherapists: 3}

	a := NewDirectory(idgen.NewSource())
	require.NoError(t, Seed(a, opts))
	b := NewDirectory(idgen.NewSource())
	require.NoError(t, Seed(b, opts))

	require.Len(t, a.Patients(), 10)
	require.Len(t, a.Physiotherapists(), 3)
	assert.NotEmpty(t, a.Slots())
	assert.Equal(t, len(a.Slots()), len(b.Slots()))

	for i, p := range a.Patients() {
		assert.Equal(t, p.FullName, b.Patients()[i].FullName)
	}
	for _, p := range a.Physiotherapists() {
		assert.GreaterOrEqual(t, len(p.Expertise), 2)
		assert.NotEmpty(t, p.Timetable())
	}
}
