package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/porttwin/core/report"
)

// execute runs the root command with flags reset to their defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunSampleTable(t *testing.T) {
	out, err := execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "EcoWave")
	assert.Contains(t, out, "SeaVolt")
	assert.Contains(t, out, "port=Marina Verde")
	assert.Contains(t, out, "trips=2/2")
	assert.Contains(t, out, "88.75")
}

func TestRunJSONWithChargeDuration(t *testing.T) {
	out, err := execute(t, "run", "-o", "json", "--charge-duration", "2h")
	require.NoError(t, err)
	var sum report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Boats, 2)
	// 76.25% + 25% is capped
	assert.InDelta(t, 100, sum.Boats[0].SoCPercent, 1e-9)
	assert.InDelta(t, 95.5, sum.Boats[1].SoCPercent, 1e-9)
}

func TestRunCSV(t *testing.T) {
	out, err := execute(t, "run", "--output", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,port,boat"))
}

func TestRunUnknownOutput(t *testing.T) {
	if _, err := execute(t, "run", "-o", "xml"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunNegativeChargeDuration(t *testing.T) {
	_, err := execute(t, "run", "--charge-duration", "-1h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charge-duration")
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := `port:
  name: Harbour
  capacity: 1
  site_max_power_w: 5000
  num_chargers: 1
boats:
  - name: Solo
    battery_capacity_wh: 50000
    charging_rate_w: 7000
    soc_percent: 50
    base_consumption_wh_per_km: 200
trips:
  - departure_offset: 30m
    duration: 1h
    distance_m: 5000
metrics:
  sinks:
    - type: nop
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := execute(t, "run", "-c", path, "-o", "json")
	require.NoError(t, err)
	var sum report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Boats, 1)
	// 50% - 1 kWh (2%) + 5 kWh (10%)
	assert.InDelta(t, 58, sum.Boats[0].SoCPercent, 1e-9)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Equal(t, "config OK: port Marina Verde, 2 boats, 2 trips, 0 sinks\n", out)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := `port:
  name: p
  capacity: 0
boats:
  - name: b
    battery_capacity_wh: 1000
metrics:
  sinks:
    - type: nop
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	out, err = execute(t, "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: 1 boats configured, port holds 0")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port:\n  name: p\nmetrics:\n  sinks:\n    - type: pigeon\n"), 0o644))
	if _, err := execute(t, "validate", "-c", bad); err == nil {
		t.Fatal("expected unknown sink error")
	}
}

func TestEstimate(t *testing.T) {
	out, err := execute(t, "estimate", "--boat", "EcoWave", "--distance", "10000")
	require.NoError(t, err)
	assert.Equal(t, "EcoWave: 10000 m needs 3000 Wh, 64000 Wh available (80.0% SoC)\n", out)

	if _, err := execute(t, "estimate", "--boat", "Titanic", "--distance", "1"); err == nil {
		t.Fatal("expected unknown boat error")
	}
	if _, err := execute(t, "estimate", "--distance", "1"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "validate", "estimate"} {
		if !names[want] {
			t.Fatalf("missing command %s", want)
		}
	}
}
