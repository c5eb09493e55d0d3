package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
)

// PromSink exposes simulation results as Prometheus metrics.
type PromSink struct {
	trips          *prometheus.CounterVec
	tripEnergy     *prometheus.HistogramVec
	expectedEnergy *prometheus.HistogramVec
	chargeTotal    *prometheus.CounterVec
	soc            *prometheus.GaugeVec
	fleet          *prometheus.GaugeVec
	capExceeded    *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one. Metrics already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "porttwin_trips_total",
			Help: "Number of simulated trips per boat",
		}, []string{"boat"}),
		tripEnergy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "porttwin_trip_energy_wh",
			Help:    "Energy consumed by simulated trips",
			Buckets: prometheus.ExponentialBuckets(500, 2, 10),
		}, []string{"boat"}),
		expectedEnergy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "porttwin_trip_expected_energy_wh",
			Help:    "Energy estimated when a trip is assigned",
			Buckets: prometheus.ExponentialBuckets(500, 2, 10),
		}, []string{"boat"}),
		chargeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "porttwin_charge_energy_wh_total",
			Help: "Energy stored by charging steps",
		}, []string{"boat"}),
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "porttwin_boat_soc_percent",
			Help: "Last known state of charge per boat",
		}, []string{"boat"}),
		fleet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "porttwin_port_boats",
			Help: "Number of boats registered at a port",
		}, []string{"port"}),
		capExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "porttwin_charger_cap_exceeded_total",
			Help: "Charging steps whose per-boat share exceeded the charger cap",
		}, []string{"port"}),
	}
	var err error
	if s.trips, err = register(reg, s.trips); err != nil {
		return nil, err
	}
	if s.tripEnergy, err = register(reg, s.tripEnergy); err != nil {
		return nil, err
	}
	if s.expectedEnergy, err = register(reg, s.expectedEnergy); err != nil {
		return nil, err
	}
	if s.chargeTotal, err = register(reg, s.chargeTotal); err != nil {
		return nil, err
	}
	if s.soc, err = register(reg, s.soc); err != nil {
		return nil, err
	}
	if s.fleet, err = register(reg, s.fleet); err != nil {
		return nil, err
	}
	if s.capExceeded, err = register(reg, s.capExceeded); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTrip counts the trip and observes its energy.
func (s *PromSink) RecordTrip(r coremetrics.TripRecord) error {
	s.trips.WithLabelValues(r.Boat).Inc()
	s.tripEnergy.WithLabelValues(r.Boat).Observe(r.EnergyWh)
	s.soc.WithLabelValues(r.Boat).Set(r.SoCAfter)
	return nil
}

// RecordCharge adds the stored energy. Negative steps are ignored by the
// counter but still update the gauge.
func (s *PromSink) RecordCharge(r coremetrics.ChargeRecord) error {
	if r.EnergyAddedWh > 0 {
		s.chargeTotal.WithLabelValues(r.Boat).Add(r.EnergyAddedWh)
	}
	s.soc.WithLabelValues(r.Boat).Set(r.SoCAfter)
	return nil
}

// RecordBoatState sets the state of charge gauge.
func (s *PromSink) RecordBoatState(st coremetrics.BoatState) error {
	s.soc.WithLabelValues(st.Boat).Set(st.SoCPercent)
	return nil
}

// RecordFleetSize sets the roster gauge.
func (s *PromSink) RecordFleetSize(port string, size int) error {
	s.fleet.WithLabelValues(port).Set(float64(size))
	return nil
}

// RecordTripAssignment observes the expected trip energy.
func (s *PromSink) RecordTripAssignment(a coremetrics.TripAssignment) error {
	s.expectedEnergy.WithLabelValues(a.Boat).Observe(a.ExpectedEnergyWh)
	return nil
}

// RecordChargerCapExceeded counts the alert.
func (s *PromSink) RecordChargerCapExceeded(a coremetrics.CapAlert) error {
	s.capExceeded.WithLabelValues(a.Port).Inc()
	return nil
}
