package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/porttwin/config"
	"github.com/kilianp07/porttwin/core/events"
	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	"github.com/kilianp07/porttwin/core/model"
	"github.com/kilianp07/porttwin/core/report"
	"github.com/kilianp07/porttwin/infra/logger"
	"github.com/kilianp07/porttwin/infra/metrics"
	"github.com/kilianp07/porttwin/internal/eventbus"
)

// Simulator runs a scenario end to end: registration, round-robin trip
// assignment, trip simulation and one charging step.
type Simulator struct {
	cfg   *config.Config
	sink  coremetrics.MetricsSink
	log   logger.Logger
	runID string
	now   func() time.Time
}

// New creates a Simulator from the configuration. The sinks listed under
// metrics.sinks are built from the sink registry and joined with extra.
func New(cfg *config.Config, extra ...coremetrics.MetricsSink) (*Simulator, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks, metrics.Join)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if len(extra) > 0 {
		sink = metrics.Join(append([]coremetrics.MetricsSink{sink}, extra...)...)
	}
	return NewWithSink(cfg, sink, logger.New("simulator")), nil
}

// NewWithSink creates a Simulator recording on sink.
func NewWithSink(cfg *config.Config, sink coremetrics.MetricsSink, log logger.Logger) *Simulator {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Simulator{cfg: cfg, sink: sink, log: log, runID: uuid.NewString(), now: time.Now}
}

// RunID identifies the run on every event and record.
func (s *Simulator) RunID() string { return s.runID }

// Run executes the scenario once and returns the fleet summary. The port and
// boats are rebuilt from the configuration on every call.
func (s *Simulator) Run(ctx context.Context) (report.Summary, error) {
	if err := ctx.Err(); err != nil {
		return report.Summary{}, err
	}
	cfg := s.cfg
	start := cfg.Simulation.Start
	if start.IsZero() {
		start = s.now()
	}

	bus := eventbus.NewTypedWithBuffer[events.Event](eventBuffer(cfg))
	done := metrics.StartEventCollector(ctx, bus, s.sink, s.log)
	defer func() {
		bus.Close()
		<-done
		if n := bus.Dropped(); n > 0 {
			s.log.Warnf("%d events dropped", n)
		}
	}()

	s.log.Infof("starting port simulation run=%s port=%s", s.runID, cfg.Port.Name)
	port := cfg.Port.Build()
	if err := s.register(port, bus); err != nil {
		return report.Summary{}, err
	}

	trips := make([]*model.Trip, len(cfg.Trips))
	for i, tc := range cfg.Trips {
		trips[i] = tc.Build(start)
	}
	s.assign(port, trips, bus)
	s.simulate(port, trips, bus)
	charges := s.charge(port, cfg.Simulation.ChargeDuration, bus)

	sum := report.Summarize(s.runID, port, trips, charges)
	s.log.Infof("simulation complete: %d/%d trips simulated", sum.SimulatedTrips, sum.Trips)
	return sum, nil
}

// register adds the configured boats until the port rejects one.
func (s *Simulator) register(port *model.Port, bus *eventbus.TypedBus[events.Event]) error {
	for _, bc := range s.cfg.Boats {
		b := bc.Build()
		if err := port.AddBoat(b); err != nil {
			if errors.Is(err, model.ErrPortFull) {
				s.log.Warnf("boat %s not registered: %v", b.Name, err)
				break
			}
			return err
		}
		bus.Publish(events.BoatRegistered{
			Meta:              s.meta(),
			Port:              port.Name,
			Boat:              b.Name,
			SoCPercent:        b.SoC(),
			AvailableEnergyWh: b.AvailableEnergyWh(),
			RosterSize:        port.Len(),
		})
	}
	s.log.Infof("registered %d boats at port %s", port.Len(), port.Name)
	return nil
}

// assign gives trip i to boat i mod n of the roster. Trips stay unassigned
// when the roster is empty.
func (s *Simulator) assign(port *model.Port, trips []*model.Trip, bus *eventbus.TypedBus[events.Event]) {
	boats := port.Boats()
	if len(boats) == 0 {
		if len(trips) > 0 {
			s.log.Warnf("no boat registered, %d trips left unassigned", len(trips))
		}
		return
	}
	for i, t := range trips {
		b := boats[i%len(boats)]
		t.AssignBoat(b)
		s.log.Infof("trip %d assigned to %s, distance %.1f km", i+1, b.Name, t.DistanceM/1000)
		bus.Publish(events.TripAssigned{
			Meta:             s.meta(),
			Trip:             i + 1,
			Boat:             b.Name,
			DistanceM:        t.DistanceM,
			ExpectedEnergyWh: t.ExpectedEnergyWh(),
		})
	}
}

func (s *Simulator) simulate(port *model.Port, trips []*model.Trip, bus *eventbus.TypedBus[events.Event]) {
	for i, t := range trips {
		b, _ := port.BoatByID(t.BoatID())
		var before float64
		if b != nil {
			before = b.SoC()
		}
		if err := t.Simulate(port); err != nil {
			s.log.Errorf("trip %d: %v", i+1, err)
			continue
		}
		s.log.Infof("%s used ~%.0f Wh, new SoC %.1f%%", b.Name, t.ActualEnergyWh(), b.SoC())
		bus.Publish(events.TripSimulated{
			Meta:              s.meta(),
			Trip:              i + 1,
			Boat:              b.Name,
			DistanceM:         t.DistanceM,
			Duration:          t.Duration,
			ActualEnergyWh:    t.ActualEnergyWh(),
			SoCBefore:         before,
			SoCAfter:          b.SoC(),
			AvailableEnergyWh: b.AvailableEnergyWh(),
		})
	}
}

func (s *Simulator) charge(port *model.Port, d time.Duration, bus *eventbus.TypedBus[events.Event]) []model.ChargeResult {
	if port.ChargerCapExceeded() {
		s.log.Warnf("per-boat share %.0f W exceeds charger cap %.0f W", port.PowerPerBoatW(), port.Power.ChargerMaxPowerW)
		bus.Publish(events.ChargerCapExceeded{
			Meta:   s.meta(),
			Port:   port.Name,
			ShareW: port.PowerPerBoatW(),
			CapW:   port.Power.ChargerMaxPowerW,
		})
	}
	if port.NumChargers == 0 {
		s.log.Warnf("port %s has no chargers, skipping charging", port.Name)
	} else {
		s.log.Infof("charging for %s at %.0f W per boat", d, port.PowerPerBoatW())
	}
	// results follow roster order
	res := port.SimulateCharging(d)
	boats := port.Boats()
	for i, r := range res {
		s.log.Infof("%s SoC after charging: %.1f%%", r.Boat, r.SoCAfter)
		bus.Publish(events.BoatCharged{
			Meta:              s.meta(),
			Result:            r,
			Duration:          d,
			AvailableEnergyWh: boats[i].AvailableEnergyWh(),
		})
	}
	return res
}

func (s *Simulator) meta() events.Meta {
	return events.Meta{RunID: s.runID, Time: s.now()}
}

// Close releases the sinks.
func (s *Simulator) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// eventBuffer sizes the collector subscription so a run never drops events.
func eventBuffer(cfg *config.Config) int {
	return 2*len(cfg.Boats) + 2*len(cfg.Trips) + eventbus.DefaultBuffer
}
