// Package boatstatus keeps the latest known state of every boat seen during
// a run.
package boatstatus

import (
	"sort"
	"sync"
	"time"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
)

// LastTrip mirrors the summary of the most recent trip of a boat.
type LastTrip struct {
	Trip      int       `json:"trip"`
	DistanceM float64   `json:"distance_m"`
	EnergyWh  float64   `json:"energy_wh"`
	Timestamp time.Time `json:"timestamp"`
}

// Status captures the current known state of a boat.
type Status struct {
	Boat              string    `json:"boat"`
	Port              string    `json:"port,omitempty"`
	RunID             string    `json:"run_id"`
	CurrentStatus     string    `json:"current_status"`
	SoCPercent        float64   `json:"soc_percent"`
	AvailableEnergyWh float64   `json:"available_energy_wh"`
	LastTrip          *LastTrip `json:"last_trip,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Filter struct {
	Port   string
	Status string
}

type Store interface {
	Set(Status)
	List(Filter) []Status
}

// MemoryStore is a Store fed as a metrics sink. Boats are keyed by name.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.Boat] = st
	s.mu.Unlock()
}

// RecordTrip stores the trip as the last trip of its boat.
func (s *MemoryStore) RecordTrip(r coremetrics.TripRecord) error {
	s.mu.Lock()
	st := s.data[r.Boat]
	st.Boat = r.Boat
	st.RunID = r.RunID
	st.LastTrip = &LastTrip{Trip: r.Trip, DistanceM: r.DistanceM, EnergyWh: r.EnergyWh, Timestamp: r.Time}
	s.data[r.Boat] = st
	s.mu.Unlock()
	return nil
}

// RecordBoatState updates the battery figures. The port and last trip of a
// previous snapshot are kept when the new one does not carry them.
func (s *MemoryStore) RecordBoatState(b coremetrics.BoatState) error {
	s.mu.Lock()
	st := s.data[b.Boat]
	st.Boat = b.Boat
	st.RunID = b.RunID
	if b.Port != "" {
		st.Port = b.Port
	}
	st.CurrentStatus = b.Context
	st.SoCPercent = b.SoCPercent
	st.AvailableEnergyWh = b.AvailableEnergyWh
	st.UpdatedAt = b.Time
	s.data[b.Boat] = st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.Port != "" && st.Port != f.Port {
			continue
		}
		if f.Status != "" && st.CurrentStatus != f.Status {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Boat < res[j].Boat })
	return res
}
