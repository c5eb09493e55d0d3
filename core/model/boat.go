package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BoatSpecs lists the static characteristics of an electric boat.
// Only BatteryCapacityWh, ChargingRateW and BaseConsumptionWhPerKm take part in
// the energy model; the remaining fields are descriptive.
type BoatSpecs struct {
	BatteryCapacityWh      float64 `json:"battery_capacity_wh"`
	ChargingRateW          float64 `json:"charging_rate_w"`
	SoCPercent             float64 `json:"soc_percent"` // initial state of charge in [0,100]
	LengthM                float64 `json:"length"`
	WidthM                 float64 `json:"width"`
	PassengerCapacity      int     `json:"passenger_capacity"`
	CruiseSpeedKmh         float64 `json:"cruise_speed_kmh"`
	BaseConsumptionWhPerKm float64 `json:"base_consumption_wh_per_km"`
	MotorPowerW            float64 `json:"motor_power_w"`
	MotorEfficiency        float64 `json:"motor_efficiency"`
}

// Validate checks that the specs are physically sound. The energy model itself
// never calls it.
func (s BoatSpecs) Validate() error {
	if s.BatteryCapacityWh <= 0 {
		return errors.New("battery capacity must be positive")
	}
	if s.SoCPercent < 0 || s.SoCPercent > 100 {
		return fmt.Errorf("soc_percent %.2f outside [0,100]", s.SoCPercent)
	}
	if s.ChargingRateW < 0 || s.BaseConsumptionWhPerKm < 0 {
		return errors.New("charging rate and consumption must not be negative")
	}
	return nil
}

// Boat is an electric boat whose only mutable state is its state of charge.
// The available energy is always derived from it. Names may repeat; ID is
// unique per boat.
type Boat struct {
	ID   string
	Name string

	specs BoatSpecs
	mu    sync.Mutex
	soc   float64
}

// NewBoat creates a boat starting at specs.SoCPercent.
func NewBoat(name string, specs BoatSpecs) *Boat {
	return &Boat{ID: uuid.NewString(), Name: name, specs: specs, soc: specs.SoCPercent}
}

// Specs returns the construction-time specs. SoCPercent holds the
// initial value, not the current one.
func (b *Boat) Specs() BoatSpecs { return b.specs }

// BatteryCapacityWh returns the total battery capacity.
func (b *Boat) BatteryCapacityWh() float64 { return b.specs.BatteryCapacityWh }

// SoC returns the current state of charge in percent.
func (b *Boat) SoC() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soc
}

// SetSoC overwrites the state of charge. The value is not validated.
func (b *Boat) SetSoC(soc float64) {
	b.mu.Lock()
	b.soc = soc
	b.mu.Unlock()
}

// AvailableEnergyWh returns the energy currently stored in the battery.
func (b *Boat) AvailableEnergyWh() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.availableLocked()
}

func (b *Boat) availableLocked() float64 {
	return b.specs.BatteryCapacityWh * b.soc / 100
}

// EstimateTripEnergyWh returns the energy needed to cover distanceM metres
// using the linear base consumption.
func (b *Boat) EstimateTripEnergyWh(distanceM float64) float64 {
	return b.specs.BaseConsumptionWhPerKm * (distanceM / 1000)
}

// Charge applies d of charging at no more than siteMaxPowerW and returns the
// energy actually stored in Wh. The state of charge saturates at 100.
// Negative durations are applied as-is. A zero capacity is not rejected: any
// positive energy saturates at 100 and zero energy yields NaN.
func (b *Boat) Charge(d time.Duration, siteMaxPowerW float64) float64 {
	rate := min(b.specs.ChargingRateW, siteMaxPowerW)
	added := rate * d.Seconds() / 3600

	b.mu.Lock()
	defer b.mu.Unlock()
	before := b.availableLocked()
	b.soc = min(100, (before+added)/b.specs.BatteryCapacityWh*100)
	return b.availableLocked() - before
}

// Deplete removes energyWh from the battery, flooring the state of charge at 0.
// With a zero capacity any positive energy floors at 0.
func (b *Boat) Deplete(energyWh float64) {
	ratio := energyWh / b.specs.BatteryCapacityWh
	b.mu.Lock()
	b.soc = max(0, b.soc-ratio*100)
	b.mu.Unlock()
}
