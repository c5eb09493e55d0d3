package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/porttwin/core/events"
	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	"github.com/kilianp07/porttwin/core/model"
	"github.com/kilianp07/porttwin/infra/logger"
	"github.com/kilianp07/porttwin/internal/eventbus"
)

type captureSink struct {
	trips   []coremetrics.TripRecord
	charges []coremetrics.ChargeRecord
	states  []coremetrics.BoatState
	fleet   map[string]int
	assigns []coremetrics.TripAssignment
	alerts  []coremetrics.CapAlert
}

func (c *captureSink) RecordTripAssignment(a coremetrics.TripAssignment) error {
	c.assigns = append(c.assigns, a)
	return nil
}

func (c *captureSink) RecordChargerCapExceeded(a coremetrics.CapAlert) error {
	c.alerts = append(c.alerts, a)
	return nil
}

func (c *captureSink) RecordTrip(r coremetrics.TripRecord) error {
	c.trips = append(c.trips, r)
	return nil
}

func (c *captureSink) RecordCharge(r coremetrics.ChargeRecord) error {
	c.charges = append(c.charges, r)
	return nil
}

func (c *captureSink) RecordBoatState(st coremetrics.BoatState) error {
	c.states = append(c.states, st)
	return nil
}

func (c *captureSink) RecordFleetSize(port string, size int) error {
	if c.fleet == nil {
		c.fleet = map[string]int{}
	}
	c.fleet[port] = size
	return nil
}

func TestEventCollectorRecordsEvents(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	sink := &captureSink{}
	done := StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})

	meta := events.Meta{RunID: "run", Time: time.Now()}
	bus.Publish(events.BoatRegistered{Meta: meta, Port: "Marina", Boat: "EcoWave", SoCPercent: 80, AvailableEnergyWh: 64000, RosterSize: 1})
	bus.Publish(events.TripAssigned{Meta: meta, Trip: 1, Boat: "EcoWave", ExpectedEnergyWh: 3000})
	bus.Publish(events.TripSimulated{Meta: meta, Trip: 1, Boat: "EcoWave", ActualEnergyWh: 3000, SoCAfter: 76.25, AvailableEnergyWh: 61000})
	bus.Publish(events.BoatCharged{Meta: meta, Duration: time.Hour, AvailableEnergyWh: 71000,
		Result: model.ChargeResult{Boat: "EcoWave", PowerW: 10000, EnergyAddedWh: 10000, SoCBefore: 76.25, SoCAfter: 88.75}})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}

	assert.Equal(t, 1, sink.fleet["Marina"])
	require.Len(t, sink.trips, 1)
	assert.Equal(t, 3000.0, sink.trips[0].EnergyWh)
	assert.Equal(t, "run", sink.trips[0].RunID)
	require.Len(t, sink.charges, 1)
	assert.Equal(t, time.Hour, sink.charges[0].Duration)
	require.Len(t, sink.states, 3)
	assert.Equal(t, []string{"registered", "trip", "charge"},
		[]string{sink.states[0].Context, sink.states[1].Context, sink.states[2].Context})
	assert.Equal(t, 71000.0, sink.states[2].AvailableEnergyWh)
	require.Len(t, sink.assigns, 1)
	assert.Equal(t, 3000.0, sink.assigns[0].ExpectedEnergyWh)
	assert.Equal(t, "EcoWave", sink.assigns[0].Boat)
}

func TestEventCollectorRecordsCapAlert(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	sink := &captureSink{}
	done := StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})
	bus.Publish(events.ChargerCapExceeded{Meta: events.Meta{RunID: "run"}, Port: "Marina", ShareW: 40000, CapW: 10000})
	bus.Close()
	<-done

	require.Len(t, sink.alerts, 1)
	assert.Equal(t, coremetrics.CapAlert{RunID: "run", Port: "Marina", ShareW: 40000, CapW: 10000}, sink.alerts[0])
}

func TestEventCollectorOptionalRecorders(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	sink := &tripOnly{}
	done := StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})
	bus.Publish(events.TripAssigned{Trip: 1, Boat: "b"})
	bus.Publish(events.ChargerCapExceeded{Port: "p"})
	bus.Publish(events.TripSimulated{Trip: 1, Boat: "b"})
	bus.Close()
	<-done
	if sink.count != 1 {
		t.Fatalf("expected 1 trip got %d", sink.count)
	}
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{}, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorNilSink(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.NewTyped[events.Event](), nil, nil)
	if _, ok := <-done; ok {
		t.Fatal("expected closed channel")
	}
}
