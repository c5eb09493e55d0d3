package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	"github.com/kilianp07/porttwin/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB instance.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		timeout:  5 * time.Second,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrip writes a "trip" point.
func (s *InfluxSink) RecordTrip(r coremetrics.TripRecord) error {
	p := write.NewPointWithMeasurement("trip").
		AddTag("boat", r.Boat).
		AddTag("run_id", r.RunID).
		AddTag("trip", strconv.Itoa(r.Trip)).
		AddField("distance_m", round3(r.DistanceM)).
		AddField("duration_s", round3(r.Duration.Seconds())).
		AddField("energy_wh", round3(r.EnergyWh)).
		AddField("soc_after", round3(r.SoCAfter)).
		SetTime(r.Time)
	return s.write(p)
}

// RecordCharge writes a "charge" point.
func (s *InfluxSink) RecordCharge(r coremetrics.ChargeRecord) error {
	p := write.NewPointWithMeasurement("charge").
		AddTag("boat", r.Boat).
		AddTag("run_id", r.RunID).
		AddField("power_w", round3(r.PowerW)).
		AddField("energy_added_wh", round3(r.EnergyAddedWh)).
		AddField("soc_before", round3(r.SoCBefore)).
		AddField("soc_after", round3(r.SoCAfter)).
		AddField("duration_s", round3(r.Duration.Seconds())).
		SetTime(r.Time)
	return s.write(p)
}

// RecordBoatState writes a "boat_state" point.
func (s *InfluxSink) RecordBoatState(st coremetrics.BoatState) error {
	p := write.NewPointWithMeasurement("boat_state").
		AddTag("boat", st.Boat).
		AddTag("run_id", st.RunID)
	if st.Port != "" {
		p = p.AddTag("port", st.Port)
	}
	if st.Context != "" {
		p = p.AddTag("context", st.Context)
	}
	p = p.AddField("soc_percent", round3(st.SoCPercent)).
		AddField("available_energy_wh", round3(st.AvailableEnergyWh)).
		SetTime(st.Time)
	return s.write(p)
}

// RecordTripAssignment writes a "trip_assignment" point.
func (s *InfluxSink) RecordTripAssignment(a coremetrics.TripAssignment) error {
	p := write.NewPointWithMeasurement("trip_assignment").
		AddTag("boat", a.Boat).
		AddTag("run_id", a.RunID).
		AddTag("trip", strconv.Itoa(a.Trip)).
		AddField("distance_m", round3(a.DistanceM)).
		AddField("expected_energy_wh", round3(a.ExpectedEnergyWh)).
		SetTime(a.Time)
	return s.write(p)
}

// RecordChargerCapExceeded writes a "charger_cap" point.
func (s *InfluxSink) RecordChargerCapExceeded(a coremetrics.CapAlert) error {
	p := write.NewPointWithMeasurement("charger_cap").
		AddTag("port", a.Port).
		AddTag("run_id", a.RunID).
		AddField("share_w", round3(a.ShareW)).
		AddField("cap_w", round3(a.CapW)).
		SetTime(a.Time)
	return s.write(p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
