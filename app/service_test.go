package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/porttwin/config"
	"github.com/kilianp07/porttwin/core/factory"
	coremetrics "github.com/kilianp07/porttwin/core/metrics"
)

type recordingSink struct {
	mu      sync.Mutex
	trips   []coremetrics.TripRecord
	charges []coremetrics.ChargeRecord
	states  []coremetrics.BoatState
	fleet   []int
	closed  bool
}

func (r *recordingSink) RecordTrip(rec coremetrics.TripRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips = append(r.trips, rec)
	return nil
}

func (r *recordingSink) RecordCharge(rec coremetrics.ChargeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges = append(r.charges, rec)
	return nil
}

func (r *recordingSink) RecordBoatState(st coremetrics.BoatState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
	return nil
}

func (r *recordingSink) RecordFleetSize(_ string, size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fleet = append(r.fleet, size)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestSimulatorSampleScenario(t *testing.T) {
	sink := &recordingSink{}
	sim := NewWithSink(config.Sample(), sink, nil)
	sum, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sim.RunID(), sum.RunID)
	assert.Equal(t, "Marina Verde", sum.Port)
	assert.Equal(t, 2, sum.SimulatedTrips)
	require.Len(t, sum.Boats, 2)

	// EcoWave: 80% -> 3 kWh trip -> 76.25% -> +10 kWh -> 88.75%
	assert.InDelta(t, 88.75, sum.Boats[0].SoCPercent, 1e-9)
	assert.InDelta(t, 3000, sum.Boats[0].TripEnergyWh, 1e-9)
	// SeaVolt: 80% -> 4.5 kWh trip -> 75.5% -> +10 kWh -> 85.5%
	assert.InDelta(t, 85.5, sum.Boats[1].SoCPercent, 1e-9)
	assert.InDelta(t, 4500, sum.Boats[1].TripEnergyWh, 1e-9)
	assert.InDelta(t, 20000, sum.TotalChargedWh, 1e-6)

	require.Len(t, sink.trips, 2)
	assert.Equal(t, "EcoWave", sink.trips[0].Boat)
	assert.Equal(t, "SeaVolt", sink.trips[1].Boat)
	assert.Equal(t, sim.RunID(), sink.trips[0].RunID)
	require.Len(t, sink.charges, 2)
	assert.Equal(t, time.Hour, sink.charges[0].Duration)
	assert.Equal(t, []int{1, 2}, sink.fleet)
	// registered + trip + charge per boat
	assert.Len(t, sink.states, 6)

	require.NoError(t, sim.Close())
	assert.True(t, sink.closed)
}

func TestSimulatorStopsAtFullPort(t *testing.T) {
	cfg := config.Sample()
	cfg.Port.Capacity = 1
	sink := &recordingSink{}
	sum, err := NewWithSink(cfg, sink, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Boats, 1)
	assert.Equal(t, "EcoWave", sum.Boats[0].Name)
	// both trips go to the only registered boat
	assert.Equal(t, 2, sum.Boats[0].Trips)
	assert.InDelta(t, 7500, sum.Boats[0].TripEnergyWh, 1e-9)
}

func TestSimulatorEmptyRoster(t *testing.T) {
	cfg := config.Sample()
	cfg.Port.Capacity = 0
	sum, err := NewWithSink(cfg, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sum.Boats)
	assert.Equal(t, 2, sum.Trips)
	assert.Equal(t, 0, sum.SimulatedTrips)
}

func TestSimulatorNoChargers(t *testing.T) {
	cfg := config.Sample()
	cfg.Port.NumChargers = 0
	sink := &recordingSink{}
	sum, err := NewWithSink(cfg, sink, nil).Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 76.25, sum.Boats[0].SoCPercent, 1e-9)
	assert.Zero(t, sum.TotalChargedWh)
	assert.Empty(t, sink.charges)
}

func TestSimulatorCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewWithSink(config.Sample(), nil, nil).Run(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewBuildsConfiguredSinks(t *testing.T) {
	cfg := config.Sample()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	sim, err := New(cfg)
	require.NoError(t, err)
	_, err = sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, sim.Close())

	extra := &recordingSink{}
	sim, err = New(cfg, extra)
	require.NoError(t, err)
	_, err = sim.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, extra.trips, 2)
	assert.Equal(t, []int{1, 2}, extra.fleet)
	require.NoError(t, sim.Close())
	assert.True(t, extra.closed)

	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected unknown sink error")
	}
}

func TestSimulatorDuplicateBoatNames(t *testing.T) {
	cfg := config.Sample()
	cfg.Boats[1].Name = cfg.Boats[0].Name
	sink := &recordingSink{}
	sim := NewWithSink(cfg, sink, nil)
	sum, err := sim.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Boats, 2)
	assert.NotEqual(t, sum.Boats[0].ID, sum.Boats[1].ID)
	assert.Equal(t, 1, sum.Boats[0].Trips)
	assert.Equal(t, 1, sum.Boats[1].Trips)
	assert.InDelta(t, 3000, sum.Boats[0].TripEnergyWh, 1e-9)
	assert.InDelta(t, 4500, sum.Boats[1].TripEnergyWh, 1e-9)
	assert.InDelta(t, 88.75, sum.Boats[0].SoCPercent, 1e-9)
	assert.InDelta(t, 85.5, sum.Boats[1].SoCPercent, 1e-9)
}
