package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
)

// DataPool holds the IDs workers pick from. Appointment IDs grow as bookings succeed.
type DataPool struct {
	Patients []int
	Slots    []int

	mu           sync.RWMutex
	appointments []int
}

func (dp *DataPool) AddAppointment(id int) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (int, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return 0, false
	}
	return dp.appointments[rng.IntN(len(dp.appointments))], true
}

func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	pool := &DataPool{}

	var patients []struct {
		ID int `json:"id"`
	}
	if err := s.getJSON(ctx, "/patients", &patients); err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	for _, p := range patients {
		pool.Patients = append(pool.Patients, p.ID)
	}

	var physios []struct {
		ID int `json:"id"`
	}
	if err := s.getJSON(ctx, "/physiotherapists", &physios); err != nil {
		return nil, fmt.Errorf("load physiotherapists: %w", err)
	}
	for _, p := range physios {
		var slots []struct {
			ID int `json:"id"`
		}
		if err := s.getJSON(ctx, fmt.Sprintf("/physiotherapists/%d/slots?available=true", p.ID), &slots); err != nil {
			return nil, fmt.Errorf("load slots for physiotherapist %d: %w", p.ID, err)
		}
		for _, slot := range slots {
			pool.Slots = append(pool.Slots, slot.ID)
		}
	}

	if len(pool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	if len(pool.Slots) == 0 {
		return nil, fmt.Errorf("no slots loaded")
	}

	return pool, nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}
