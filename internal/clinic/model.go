package clinic

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Treatment struct {
	Name string
}

func (t Treatment) String() string {
	return t.Name
}

// Person holds the contact fields shared by patients and physiotherapists.
type Person struct {
	ID       int
	FullName string
	Address  string
	Tel      string
}

// Patient carries the ordered list of appointment IDs the patient holds.
// The list is only extended by the booking engine; it does not validate anything itself.
type Patient struct {
	Person

	mu           sync.RWMutex
	appointments []int
}

func NewPatient(id int, fullName, address, tel string) *Patient {
	return &Patient{Person: Person{ID: id, FullName: fullName, Address: address, Tel: tel}}
}

func (p *Patient) PatientID() int {
	return p.ID
}

func (p *Patient) Name() string {
	return p.FullName
}

// AppointmentIDs returns a copy of the patient's appointment IDs in booking order.
func (p *Patient) AppointmentIDs() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.appointments)
}

func (p *Patient) AddAppointment(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appointments = append(p.appointments, id)
}

func (p *Patient) RemoveAppointment(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.appointments, id); i >= 0 {
		p.appointments = slices.Delete(p.appointments, i, i+1)
	}
}

type Physiotherapist struct {
	Person
	Expertise []string

	mu        sync.RWMutex
	timetable []*TimetableSlot
}

func NewPhysiotherapist(id int, fullName, address, tel string, expertise []string) *Physiotherapist {
	return &Physiotherapist{
		Person:    Person{ID: id, FullName: fullName, Address: address, Tel: tel},
		Expertise: slices.Clone(expertise),
	}
}

// Timetable returns the physiotherapist's slots in the order they were added.
func (p *Physiotherapist) Timetable() []*TimetableSlot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.timetable)
}

func (p *Physiotherapist) hasSlotAt(at time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.timetable {
		if s.at.Equal(at) {
			return true
		}
	}
	return false
}

func (p *Physiotherapist) addSlot(s *TimetableSlot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timetable = append(p.timetable, s)
}

// TimetableSlot is one bookable (physiotherapist, treatment, time) unit.
// The booked flag is written only by the booking engine.
type TimetableSlot struct {
	id        int
	physio    *Physiotherapist
	treatment Treatment
	at        time.Time
	booked    atomic.Bool
}

func (s *TimetableSlot) SlotID() int {
	return s.id
}

func (s *TimetableSlot) Physiotherapist() *Physiotherapist {
	return s.physio
}

func (s *TimetableSlot) Treatment() Treatment {
	return s.treatment
}

func (s *TimetableSlot) Timestamp() time.Time {
	return s.at
}

func (s *TimetableSlot) IsBooked() bool {
	return s.booked.Load()
}

func (s *TimetableSlot) SetBooked(booked bool) {
	s.booked.Store(booked)
}
