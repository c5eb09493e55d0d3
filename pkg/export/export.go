// Package export serializes run summaries.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/porttwin/core/report"
)

// WriteJSON writes the summary to w as indented JSON.
func WriteJSON(w io.Writer, s report.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one line per boat to w.
func WriteCSV(w io.Writer, s report.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "port", "boat", "battery_capacity_wh", "soc_percent",
		"available_energy_wh", "trips", "trip_energy_wh", "charged_wh"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range s.Boats {
		rec := []string{
			s.RunID,
			s.Port,
			r.Name,
			formatFloat(r.CapacityWh),
			formatFloat(r.SoCPercent),
			formatFloat(r.AvailableEnergyWh),
			strconv.Itoa(r.Trips),
			formatFloat(r.TripEnergyWh),
			formatFloat(r.ChargedWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
