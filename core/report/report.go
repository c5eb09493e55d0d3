// Package report summarizes the outcome of a simulation run.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/porttwin/core/model"
)

// BoatRow is the per-boat line of a summary.
type BoatRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CapacityWh        float64 `json:"battery_capacity_wh"`
	SoCPercent        float64 `json:"soc_percent"`
	AvailableEnergyWh float64 `json:"available_energy_wh"`
	Trips             int     `json:"trips"`
	TripEnergyWh      float64 `json:"trip_energy_wh"`
	ChargedWh         float64 `json:"charged_wh"`
}

// Summary aggregates a run over the port roster.
type Summary struct {
	RunID             string    `json:"run_id"`
	Port              string    `json:"port"`
	Boats             []BoatRow `json:"boats"`
	Trips             int       `json:"trips"`
	SimulatedTrips    int       `json:"simulated_trips"`
	TotalTripEnergyWh float64   `json:"total_trip_energy_wh"`
	TotalChargedWh    float64   `json:"total_charged_wh"`
	StoredEnergyWh    float64   `json:"stored_energy_wh"`
	MeanSoCPercent    float64   `json:"mean_soc_percent"`
	MinSoCPercent     float64   `json:"min_soc_percent"`
}

// Summarize builds a Summary from the port roster, the trips of the run and
// the charging results. Trips and charges are attributed to boats by ID.
func Summarize(runID string, port *model.Port, trips []*model.Trip, charges []model.ChargeResult) Summary {
	boats := port.Boats()
	s := Summary{RunID: runID, Port: port.Name, Trips: len(trips), Boats: make([]BoatRow, len(boats))}
	index := make(map[string]int, len(boats))
	for i, b := range boats {
		index[b.ID] = i
		s.Boats[i] = BoatRow{
			ID:                b.ID,
			Name:              b.Name,
			CapacityWh:        b.BatteryCapacityWh(),
			SoCPercent:        b.SoC(),
			AvailableEnergyWh: b.AvailableEnergyWh(),
		}
	}
	for _, t := range trips {
		if t.State() != model.TripSimulated {
			continue
		}
		s.SimulatedTrips++
		if i, ok := index[t.BoatID()]; ok {
			s.Boats[i].Trips++
			s.Boats[i].TripEnergyWh += t.ActualEnergyWh()
		}
	}
	for _, c := range charges {
		if i, ok := index[c.BoatID]; ok {
			s.Boats[i].ChargedWh += c.EnergyAddedWh
		}
	}
	if len(boats) == 0 {
		return s
	}

	soc := make([]float64, len(boats))
	stored := make([]float64, len(boats))
	used := make([]float64, len(boats))
	charged := make([]float64, len(boats))
	for i, r := range s.Boats {
		soc[i] = r.SoCPercent
		stored[i] = r.AvailableEnergyWh
		used[i] = r.TripEnergyWh
		charged[i] = r.ChargedWh
	}
	s.TotalTripEnergyWh = floats.Sum(used)
	s.TotalChargedWh = floats.Sum(charged)
	s.StoredEnergyWh = floats.Sum(stored)
	s.MeanSoCPercent = stat.Mean(soc, nil)
	s.MinSoCPercent = floats.Min(soc)
	return s
}

// Write prints s as an aligned table.
func Write(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "BOAT\tSOC %%\tENERGY Wh\tCAPACITY Wh\tTRIPS\tUSED Wh\tCHARGED Wh\t\n")
	for _, r := range s.Boats {
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f\t%.0f\t%d\t%.0f\t%.0f\t\n",
			r.Name, r.SoCPercent, r.AvailableEnergyWh, r.CapacityWh, r.Trips, r.TripEnergyWh, r.ChargedWh)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "port=%s run=%s trips=%d/%d used=%.0fWh charged=%.0fWh stored=%.0fWh mean_soc=%.2f%% min_soc=%.2f%%\n",
		s.Port, s.RunID, s.SimulatedTrips, s.Trips, s.TotalTripEnergyWh, s.TotalChargedWh,
		s.StoredEnergyWh, s.MeanSoCPercent, s.MinSoCPercent)
	return err
}
