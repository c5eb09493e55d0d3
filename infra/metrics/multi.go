package metrics

import (
	"errors"
	"io"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Join adapts NewMultiSink to coremetrics.NewMetricsSink.
func Join(sinks ...coremetrics.MetricsSink) coremetrics.MetricsSink {
	return NewMultiSink(sinks...)
}

// RecordTrip forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTrip(r coremetrics.TripRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordTrip(r); err != nil {
			return err
		}
	}
	return nil
}

// RecordCharge forwards charge records to sinks that support them.
func (m *MultiSink) RecordCharge(r coremetrics.ChargeRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ChargeRecorder); ok {
			if err := rec.RecordCharge(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBoatState forwards boat snapshots.
func (m *MultiSink) RecordBoatState(st coremetrics.BoatState) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.BoatStateRecorder); ok {
			if err := rec.RecordBoatState(st); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards fleet size metrics when supported by the sink.
func (m *MultiSink) RecordFleetSize(port string, size int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := rec.RecordFleetSize(port, size); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTripAssignment forwards assignments to sinks that support them.
func (m *MultiSink) RecordTripAssignment(a coremetrics.TripAssignment) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TripAssignmentRecorder); ok {
			if err := rec.RecordTripAssignment(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordChargerCapExceeded forwards cap alerts to sinks that support them.
func (m *MultiSink) RecordChargerCapExceeded(a coremetrics.CapAlert) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.CapAlertRecorder); ok {
			if err := rec.RecordChargerCapExceeded(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink implementing io.Closer and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
