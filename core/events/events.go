package events

import (
	"time"

	"github.com/kilianp07/porttwin/core/model"
)

// Event is implemented by every event published during a run.
type Event interface {
	Kind() string
}

// Meta is shared by all events.
type Meta struct {
	RunID string
	Time  time.Time
}

// BoatRegistered is published when a boat is added to the port.
type BoatRegistered struct {
	Meta
	Port              string
	Boat              string
	SoCPercent        float64
	AvailableEnergyWh float64
	RosterSize        int
}

// TripAssigned is published after a boat is assigned to a trip.
type TripAssigned struct {
	Meta
	Trip             int
	Boat             string
	DistanceM        float64
	ExpectedEnergyWh float64
}

// TripSimulated is published after a trip depleted its boat.
type TripSimulated struct {
	Meta
	Trip              int
	Boat              string
	DistanceM         float64
	Duration          time.Duration
	ActualEnergyWh    float64
	SoCBefore         float64
	SoCAfter          float64
	AvailableEnergyWh float64
}

// BoatCharged is published for every boat after a charging step.
type BoatCharged struct {
	Meta
	Result            model.ChargeResult
	Duration          time.Duration
	AvailableEnergyWh float64
}

// ChargerCapExceeded flags a port whose flat per-boat share is above its
// per-charger cap.
type ChargerCapExceeded struct {
	Meta
	Port   string
	ShareW float64
	CapW   float64
}

func (BoatRegistered) Kind() string     { return "boat_registered" }
func (TripAssigned) Kind() string       { return "trip_assigned" }
func (TripSimulated) Kind() string      { return "trip_simulated" }
func (BoatCharged) Kind() string        { return "boat_charged" }
func (ChargerCapExceeded) Kind() string { return "charger_cap_exceeded" }
