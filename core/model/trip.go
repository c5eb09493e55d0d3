package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoBoatAssigned is returned when simulating a trip that has no boat.
var ErrNoBoatAssigned = errors.New("trip simulation failed: no boat assigned")

// ErrUnknownBoat is returned when the assigned boat cannot be resolved.
var ErrUnknownBoat = errors.New("unknown boat")

// TripState tracks where a trip is in its lifecycle.
type TripState int

const (
	TripUnassigned TripState = iota
	TripAssigned
	TripSimulated
)

// String returns a human-readable representation of the state.
func (s TripState) String() string {
	switch s {
	case TripUnassigned:
		return "unassigned"
	case TripAssigned:
		return "assigned"
	case TripSimulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// BoatRegistry resolves a boat by ID. Port implements it.
type BoatRegistry interface {
	BoatByID(id string) (*Boat, bool)
}

// Trip is a scheduled voyage over a fixed time window and distance.
type Trip struct {
	Departure time.Time
	Arrival   time.Time
	DistanceM float64
	Duration  time.Duration // Arrival - Departure

	state            TripState
	boatID           string
	boat             string
	expectedEnergyWh float64
	actualEnergyWh   float64
}

// NewTrip creates an unassigned trip.
func NewTrip(departure, arrival time.Time, distanceM float64) *Trip {
	return &Trip{
		Departure: departure,
		Arrival:   arrival,
		DistanceM: distanceM,
		Duration:  arrival.Sub(departure),
	}
}

// State returns the current lifecycle state.
func (t *Trip) State() TripState { return t.state }

// BoatName returns the name of the assigned boat, or "" when unassigned.
func (t *Trip) BoatName() string { return t.boat }

// BoatID returns the ID of the assigned boat, or "" when unassigned.
func (t *Trip) BoatID() string { return t.boatID }

// ExpectedEnergyWh is populated by AssignBoat.
func (t *Trip) ExpectedEnergyWh() float64 { return t.expectedEnergyWh }

// ActualEnergyWh is populated by Simulate.
func (t *Trip) ActualEnergyWh() float64 { return t.actualEnergyWh }

// AssignBoat records b as responsible for the trip and estimates the energy it
// needs. Calling it again replaces the previous assignment.
func (t *Trip) AssignBoat(b *Boat) {
	t.boatID = b.ID
	t.boat = b.Name
	t.expectedEnergyWh = b.EstimateTripEnergyWh(t.DistanceM)
	t.state = TripAssigned
}

// Simulate runs the trip: the assigned boat, resolved by ID through reg, loses
// the trip energy and its state of charge is floored at 0. Nothing is mutated
// when an error is returned. A boat that reg does not hold yields
// ErrUnknownBoat. Simulating twice depletes the boat twice.
func (t *Trip) Simulate(reg BoatRegistry) error {
	if t.state == TripUnassigned {
		return ErrNoBoatAssigned
	}
	b, ok := reg.BoatByID(t.boatID)
	if !ok {
		return fmt.Errorf("trip simulation failed: %w %q (%s)", ErrUnknownBoat, t.boat, t.boatID)
	}
	// No consumption model beyond the estimate yet.
	t.actualEnergyWh = t.expectedEnergyWh
	b.Deplete(t.actualEnergyWh)
	t.state = TripSimulated
	return nil
}
