package metrics

import "time"

// TripRecord describes a simulated trip.
type TripRecord struct {
	RunID     string
	Trip      int
	Boat      string
	DistanceM float64
	Duration  time.Duration
	EnergyWh  float64
	SoCAfter  float64
	Time      time.Time
}

// MetricsSink records simulation results for observability purposes.
type MetricsSink interface {
	RecordTrip(rec TripRecord) error
}

// ChargeRecord describes one charging step applied to a boat.
type ChargeRecord struct {
	RunID         string
	Boat          string
	PowerW        float64
	EnergyAddedWh float64
	SoCBefore     float64
	SoCAfter      float64
	Duration      time.Duration
	Time          time.Time
}

// ChargeRecorder records charging steps.
type ChargeRecorder interface {
	RecordCharge(rec ChargeRecord) error
}

// BoatState is a snapshot of a boat battery.
type BoatState struct {
	RunID             string
	Port              string
	Boat              string
	SoCPercent        float64
	AvailableEnergyWh float64
	// Context tells what produced the snapshot, e.g. "registered", "trip", "charge".
	Context string
	Time    time.Time
}

// BoatStateRecorder records boat snapshots.
type BoatStateRecorder interface {
	RecordBoatState(st BoatState) error
}

// TripAssignment describes a boat assigned to a trip with its energy estimate.
type TripAssignment struct {
	RunID            string
	Trip             int
	Boat             string
	DistanceM        float64
	ExpectedEnergyWh float64
	Time             time.Time
}

// TripAssignmentRecorder records trip assignments.
type TripAssignmentRecorder interface {
	RecordTripAssignment(a TripAssignment) error
}

// CapAlert reports a flat per-boat share above the per-charger cap.
type CapAlert struct {
	RunID  string
	Port   string
	ShareW float64
	CapW   float64
	Time   time.Time
}

// CapAlertRecorder records charger cap alerts.
type CapAlertRecorder interface {
	RecordChargerCapExceeded(a CapAlert) error
}

// FleetSizeRecorder records the number of boats registered at a port.
type FleetSizeRecorder interface {
	RecordFleetSize(port string, size int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTrip(TripRecord) error       { return nil }
func (NopSink) RecordCharge(ChargeRecord) error   { return nil }
func (NopSink) RecordBoatState(BoatState) error   { return nil }
func (NopSink) RecordFleetSize(string, int) error { return nil }

func (NopSink) RecordTripAssignment(TripAssignment) error { return nil }
func (NopSink) RecordChargerCapExceeded(CapAlert) error   { return nil }
