package metrics

import (
	"context"

	"github.com/kilianp07/porttwin/core/events"
	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	"github.com/kilianp07/porttwin/infra/logger"
	"github.com/kilianp07/porttwin/internal/eventbus"
)

// StartEventCollector subscribes to the bus and records every event on sink.
// The returned channel is closed once the bus is closed and the subscription
// drained, or when ctx is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %s: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.BoatRegistered:
		if r, ok := sink.(coremetrics.FleetSizeRecorder); ok {
			if err := r.RecordFleetSize(e.Port, e.RosterSize); err != nil {
				return err
			}
		}
		return recordState(sink, coremetrics.BoatState{
			RunID: e.RunID, Port: e.Port, Boat: e.Boat, SoCPercent: e.SoCPercent,
			AvailableEnergyWh: e.AvailableEnergyWh, Context: "registered", Time: e.Time,
		})
	case events.TripAssigned:
		if r, ok := sink.(coremetrics.TripAssignmentRecorder); ok {
			return r.RecordTripAssignment(coremetrics.TripAssignment{
				RunID:            e.RunID,
				Trip:             e.Trip,
				Boat:             e.Boat,
				DistanceM:        e.DistanceM,
				ExpectedEnergyWh: e.ExpectedEnergyWh,
				Time:             e.Time,
			})
		}
		return nil
	case events.ChargerCapExceeded:
		if r, ok := sink.(coremetrics.CapAlertRecorder); ok {
			return r.RecordChargerCapExceeded(coremetrics.CapAlert{
				RunID:  e.RunID,
				Port:   e.Port,
				ShareW: e.ShareW,
				CapW:   e.CapW,
				Time:   e.Time,
			})
		}
		return nil
	case events.TripSimulated:
		if err := sink.RecordTrip(coremetrics.TripRecord{
			RunID:     e.RunID,
			Trip:      e.Trip,
			Boat:      e.Boat,
			DistanceM: e.DistanceM,
			Duration:  e.Duration,
			EnergyWh:  e.ActualEnergyWh,
			SoCAfter:  e.SoCAfter,
			Time:      e.Time,
		}); err != nil {
			return err
		}
		return recordState(sink, coremetrics.BoatState{
			RunID: e.RunID, Boat: e.Boat, SoCPercent: e.SoCAfter,
			AvailableEnergyWh: e.AvailableEnergyWh, Context: "trip", Time: e.Time,
		})
	case events.BoatCharged:
		if r, ok := sink.(coremetrics.ChargeRecorder); ok {
			if err := r.RecordCharge(coremetrics.ChargeRecord{
				RunID:         e.RunID,
				Boat:          e.Result.Boat,
				PowerW:        e.Result.PowerW,
				EnergyAddedWh: e.Result.EnergyAddedWh,
				SoCBefore:     e.Result.SoCBefore,
				SoCAfter:      e.Result.SoCAfter,
				Duration:      e.Duration,
				Time:          e.Time,
			}); err != nil {
				return err
			}
		}
		return recordState(sink, coremetrics.BoatState{
			RunID: e.RunID, Boat: e.Result.Boat, SoCPercent: e.Result.SoCAfter,
			AvailableEnergyWh: e.AvailableEnergyWh, Context: "charge", Time: e.Time,
		})
	}
	return nil
}

func recordState(sink coremetrics.MetricsSink, st coremetrics.BoatState) error {
	if r, ok := sink.(coremetrics.BoatStateRecorder); ok {
		return r.RecordBoatState(st)
	}
	return nil
}
