package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_StartsAtBase(t *testing.T) {
	s := NewSource()

	assert.Equal(t, 10000, s.NextAppointmentID())
	assert.Equal(t, 10001, s.NextAppointmentID())
	assert.Equal(t, 10000, s.NextPersonnelID())
}

func TestSource_CountersAreIndependent(t *testing.T) {
	s := NewSourceFrom(1)

	for range 5 {
		s.NextAppointmentID()
	}

	assert.Equal(t, 1, s.NextPersonnelID())
	assert.Equal(t, 6, s.NextAppointmentID())
}

func TestSource_ConcurrentCallersGetUniqueIncreasingIDs(t *testing.T) {
	s := NewSource()

	const workers = 16
	const perWorker = 500

	results := make([][]int, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int, 0, perWorker)
			for range perWorker {
				ids = append(ids, s.NextAppointmentID())
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int]struct{}, workers*perWorker)
	for _, ids := range results {
		for i, id := range ids {
			if i > 0 {
				require.Greater(t, id, ids[i-1], "ids from one caller must increase")
			}
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %d", id)
			seen[id] = struct{}{}
		}
	}

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, 10000+workers*perWorker, s.NextAppointmentID())
}
