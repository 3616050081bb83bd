package idgen

import "sync/atomic"

// DefaultBase is the first value handed out by each counter.
const DefaultBase = 10000

// Source hands out appointment and personnel IDs from two independent counters.
// It is safe for concurrent use.
type Source struct {
	appointments atomic.Int64
	personnel    atomic.Int64
}

func NewSource() *Source {
	return NewSourceFrom(DefaultBase)
}

// NewSourceFrom creates a source whose counters both start at base.
func NewSourceFrom(base int) *Source {
	s := &Source{}
	s.appointments.Store(int64(base) - 1)
	s.personnel.Store(int64(base) - 1)
	return s
}

func (s *Source) NextAppointmentID() int {
	return int(s.appointments.Add(1))
}

func (s *Source) NextPersonnelID() int {
	return int(s.personnel.Add(1))
}
