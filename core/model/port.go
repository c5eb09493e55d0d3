package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrPortFull is returned when registering a boat at a port with no free berth.
var ErrPortFull = errors.New("port is at full capacity")

// Location is the geographic position of a port. It has no role in the model.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PowerSettings describes the electrical limits of a port.
type PowerSettings struct {
	SiteMaxPowerW    float64 `json:"site_max_power_w"`
	ChargerMaxPowerW float64 `json:"charger_max_power_w"` // stored, not enforced
}

// ChargeResult reports the effect of one charging step on a boat.
type ChargeResult struct {
	BoatID        string
	Boat          string
	PowerW        float64
	EnergyAddedWh float64
	SoCBefore     float64
	SoCAfter      float64
}

// Port hosts a bounded roster of boats sharing a site power budget.
type Port struct {
	Name        string
	Capacity    int
	Location    Location
	Power       PowerSettings
	NumChargers int

	boats []*Boat
}

// NewPort creates a port with an empty roster.
func NewPort(name string, capacity int, loc Location, power PowerSettings, numChargers int) *Port {
	return &Port{
		Name:        name,
		Capacity:    capacity,
		Location:    loc,
		Power:       power,
		NumChargers: numChargers,
	}
}

// AddBoat appends b to the roster. The roster is left untouched when the port
// is full. Names are not checked for duplicates.
func (p *Port) AddBoat(b *Boat) error {
	if len(p.boats) >= p.Capacity {
		return fmt.Errorf("port %q (%d boats): %w", p.Name, p.Capacity, ErrPortFull)
	}
	p.boats = append(p.boats, b)
	return nil
}

// Boats returns the registered boats in registration order.
func (p *Port) Boats() []*Boat {
	out := make([]*Boat, len(p.boats))
	copy(out, p.boats)
	return out
}

// Len returns the number of registered boats.
func (p *Port) Len() int { return len(p.boats) }

// BoatByID returns the registered boat with the given ID.
func (p *Port) BoatByID(id string) (*Boat, bool) {
	for _, b := range p.boats {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// PowerPerBoatW is the flat share of the site budget every boat charges at.
// It is 0 without chargers.
func (p *Port) PowerPerBoatW() float64 {
	if p.NumChargers == 0 {
		return 0
	}
	return p.Power.SiteMaxPowerW / float64(p.NumChargers)
}

// ChargerCapExceeded reports whether the per-boat share is above the
// per-charger cap. The cap is never applied to the share.
func (p *Port) ChargerCapExceeded() bool {
	return p.NumChargers > 0 && p.Power.ChargerMaxPowerW > 0 && p.PowerPerBoatW() > p.Power.ChargerMaxPowerW
}

// SimulateCharging charges every registered boat for d at the flat per-boat
// share, in registration order. With zero chargers it does nothing.
func (p *Port) SimulateCharging(d time.Duration) []ChargeResult {
	if p.NumChargers == 0 {
		return nil
	}
	share := p.PowerPerBoatW()
	res := make([]ChargeResult, 0, len(p.boats))
	for _, b := range p.boats {
		before := b.SoC()
		added := b.Charge(d, share)
		res = append(res, ChargeResult{
			BoatID:        b.ID,
			Boat:          b.Name,
			PowerW:        min(b.specs.ChargingRateW, share),
			EnergyAddedWh: added,
			SoCBefore:     before,
			SoCAfter:      b.SoC(),
		})
	}
	return res
}
