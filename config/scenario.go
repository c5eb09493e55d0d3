package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/porttwin/core/model"
)

// PortConfig describes the marina.
type PortConfig struct {
	Name             string  `json:"name"`
	Capacity         int     `json:"capacity"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	SiteMaxPowerW    float64 `json:"site_max_power_w"`
	ChargerMaxPowerW float64 `json:"charger_max_power_w"`
	NumChargers      int     `json:"num_chargers"`
}

// Validate checks the port fields.
func (c PortConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0, got %d", c.Capacity)
	}
	if c.NumChargers < 0 {
		return fmt.Errorf("num_chargers must be >= 0, got %d", c.NumChargers)
	}
	if c.SiteMaxPowerW < 0 || c.ChargerMaxPowerW < 0 {
		return errors.New("power limits must be >= 0")
	}
	return nil
}

// Build creates the port with an empty roster.
func (c PortConfig) Build() *model.Port {
	return model.NewPort(c.Name, c.Capacity,
		model.Location{Lat: c.Lat, Lon: c.Lon},
		model.PowerSettings{SiteMaxPowerW: c.SiteMaxPowerW, ChargerMaxPowerW: c.ChargerMaxPowerW},
		c.NumChargers)
}

// BoatConfig describes one boat. SoCPercent and MotorEfficiency default to
// 100 and 1 when omitted.
type BoatConfig struct {
	Name                   string   `json:"name"`
	BatteryCapacityWh      float64  `json:"battery_capacity_wh"`
	ChargingRateW          float64  `json:"charging_rate_w"`
	SoCPercent             *float64 `json:"soc_percent"`
	LengthM                float64  `json:"length"`
	WidthM                 float64  `json:"width"`
	PassengerCapacity      int      `json:"passenger_capacity"`
	CruiseSpeedKmh         float64  `json:"cruise_speed_kmh"`
	BaseConsumptionWhPerKm float64  `json:"base_consumption_wh_per_km"`
	MotorPowerW            float64  `json:"motor_power_w"`
	MotorEfficiency        *float64 `json:"motor_efficiency"`
}

// SetDefaults fills the optional fields.
func (c *BoatConfig) SetDefaults() {
	if c.SoCPercent == nil {
		c.SoCPercent = ptr(100.0)
	}
	if c.MotorEfficiency == nil {
		c.MotorEfficiency = ptr(1.0)
	}
}

// Validate checks the name and the battery parameters.
func (c BoatConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if err := c.Specs().Validate(); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// Specs converts the configuration into model specs.
func (c BoatConfig) Specs() model.BoatSpecs {
	s := model.BoatSpecs{
		BatteryCapacityWh:      c.BatteryCapacityWh,
		ChargingRateW:          c.ChargingRateW,
		SoCPercent:             100,
		LengthM:                c.LengthM,
		WidthM:                 c.WidthM,
		PassengerCapacity:      c.PassengerCapacity,
		CruiseSpeedKmh:         c.CruiseSpeedKmh,
		BaseConsumptionWhPerKm: c.BaseConsumptionWhPerKm,
		MotorPowerW:            c.MotorPowerW,
		MotorEfficiency:        1,
	}
	if c.SoCPercent != nil {
		s.SoCPercent = *c.SoCPercent
	}
	if c.MotorEfficiency != nil {
		s.MotorEfficiency = *c.MotorEfficiency
	}
	return s
}

// Build creates the boat.
func (c BoatConfig) Build() *model.Boat {
	return model.NewBoat(c.Name, c.Specs())
}

// TripConfig schedules a trip either at absolute times or relative to the
// simulation start. Absolute times win when set.
type TripConfig struct {
	Departure       time.Time     `json:"departure"`
	Arrival         time.Time     `json:"arrival"`
	DepartureOffset time.Duration `json:"departure_offset"`
	Duration        time.Duration `json:"duration"`
	DistanceM       float64       `json:"distance_m"`
}

// Window resolves the departure and arrival times against start.
func (c TripConfig) Window(start time.Time) (time.Time, time.Time) {
	dep := c.Departure
	if dep.IsZero() {
		dep = start.Add(c.DepartureOffset)
	}
	arr := c.Arrival
	if arr.IsZero() {
		arr = dep.Add(c.Duration)
	}
	return dep, arr
}

// Validate rejects negative distances and arrivals before departure.
func (c TripConfig) Validate() error {
	if c.DistanceM < 0 {
		return fmt.Errorf("distance_m must be >= 0, got %v", c.DistanceM)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be >= 0, got %v", c.Duration)
	}
	dep, arr := c.Window(time.Unix(0, 0))
	if arr.Before(dep) {
		return fmt.Errorf("arrival %s before departure %s", arr.Format(time.RFC3339), dep.Format(time.RFC3339))
	}
	return nil
}

// Build creates the unassigned trip.
func (c TripConfig) Build(start time.Time) *model.Trip {
	dep, arr := c.Window(start)
	return model.NewTrip(dep, arr, c.DistanceM)
}

// SimulationConfig controls a run.
type SimulationConfig struct {
	// Start anchors relative trips. Zero means the time of the run.
	Start          time.Time     `json:"start"`
	ChargeDuration time.Duration `json:"charge_duration"`
}

// SetDefaults applies a one hour charging window.
func (c *SimulationConfig) SetDefaults() {
	if c.ChargeDuration == 0 {
		c.ChargeDuration = time.Hour
	}
}

// Validate checks the charging window.
func (c SimulationConfig) Validate() error {
	if c.ChargeDuration < 0 {
		return fmt.Errorf("charge_duration must be >= 0, got %v", c.ChargeDuration)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
