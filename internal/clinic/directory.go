package clinic

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrNameTooShort     = errors.New("patient name too short")
	ErrInvalidAddress   = errors.New("patient address too short")
	ErrInvalidTelephone = errors.New("invalid telephone number")
	ErrPatientExists    = errors.New("patient with this name already exists")
)

var telephonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

// PersonnelIDs issues IDs for patients and physiotherapists.
type PersonnelIDs interface {
	NextPersonnelID() int
}

// Directory owns the clinic's patients, physiotherapists and timetable slots.
type Directory struct {
	ids PersonnelIDs

	mu       sync.RWMutex
	patients []*Patient
	physios  []*Physiotherapist
	slots    []*TimetableSlot
}

func NewDirectory(ids PersonnelIDs) *Directory {
	return &Directory{ids: ids}
}

// AddPatient validates the contact details and registers a new patient.
func (d *Directory) AddPatient(fullName, address, tel string) (int, error) {
	if len(fullName) < 3 {
		return 0, ErrNameTooShort
	}
	if len(address) < 4 {
		return 0, ErrInvalidAddress
	}
	if len(tel) < 7 || !telephonePattern.MatchString(tel) {
		return 0, ErrInvalidTelephone
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.patients {
		if p.FullName == fullName {
			return 0, ErrPatientExists
		}
	}

	p := NewPatient(d.ids.NextPersonnelID(), fullName, address, tel)
	d.patients = append(d.patients, p)
	return p.ID, nil
}

func (d *Directory) DeletePatient(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.patients, func(p *Patient) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	d.patients = slices.Delete(d.patients, i, i+1)
	return true
}

func (d *Directory) Patient(id int) (*Patient, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.patients {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (d *Directory) Patients() []*Patient {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.patients)
}

func (d *Directory) AddPhysiotherapist(fullName, address, tel string, expertise []string) *Physiotherapist {
	p := NewPhysiotherapist(d.ids.NextPersonnelID(), fullName, address, tel, expertise)

	d.mu.Lock()
	d.physios = append(d.physios, p)
	d.mu.Unlock()

	return p
}

func (d *Directory) Physiotherapist(id int) (*Physiotherapist, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.physios {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (d *Directory) Physiotherapists() []*Physiotherapist {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.physios)
}

// PhysiotherapistsByName matches a case-insensitive substring of the full name.
func (d *Directory) PhysiotherapistsByName(name string) []*Physiotherapist {
	needle := strings.ToLower(name)
	return d.filterPhysios(func(p *Physiotherapist) bool {
		return strings.Contains(strings.ToLower(p.FullName), needle)
	})
}

// PhysiotherapistsByExpertise matches a case-insensitive substring of any expertise area.
func (d *Directory) PhysiotherapistsByExpertise(expertise string) []*Physiotherapist {
	needle := strings.ToLower(expertise)
	return d.filterPhysios(func(p *Physiotherapist) bool {
		return slices.ContainsFunc(p.Expertise, func(e string) bool {
			return strings.Contains(strings.ToLower(e), needle)
		})
	})
}

func (d *Directory) filterPhysios(match func(*Physiotherapist) bool) []*Physiotherapist {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*Physiotherapist
	for _, p := range d.physios {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

// AddSlot creates a slot on the physiotherapist's timetable. Slot IDs start at 1.
func (d *Directory) AddSlot(physio *Physiotherapist, treatment Treatment, at time.Time) *TimetableSlot {
	d.mu.Lock()
	s := &TimetableSlot{
		id:        len(d.slots) + 1,
		physio:    physio,
		treatment: treatment,
		at:        at,
	}
	d.slots = append(d.slots, s)
	d.mu.Unlock()

	physio.addSlot(s)
	return s
}

func (d *Directory) Slot(id int) (*TimetableSlot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if id < 1 || id > len(d.slots) {
		return nil, false
	}
	return d.slots[id-1], true
}

func (d *Directory) Slots() []*TimetableSlot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.slots)
}
