package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	"github.com/kilianp07/porttwin/infra/logger"
)

// ErrPublishTimeout is returned when the broker does not confirm a publish in time.
var ErrPublishTimeout = errors.New("timeout waiting for publish")

// StatePublisher publishes boat snapshots and trip results as JSON.
//
// Topics:
//
//	<prefix>/boat/<name>/state
//	<prefix>/boat/<name>/trip
type StatePublisher struct {
	cli     pahoClient
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

type statePayload struct {
	RunID             string    `json:"run_id"`
	Port              string    `json:"port,omitempty"`
	Boat              string    `json:"name"`
	SoCPercent        float64   `json:"soc_percent"`
	AvailableEnergyWh float64   `json:"available_energy_wh"`
	Context           string    `json:"context,omitempty"`
	Time              time.Time `json:"time"`
}

type tripPayload struct {
	RunID     string    `json:"run_id"`
	Trip      int       `json:"trip"`
	Boat      string    `json:"name"`
	DistanceM float64   `json:"distance_m"`
	DurationS float64   `json:"duration_s"`
	EnergyWh  float64   `json:"energy_wh"`
	SoCAfter  float64   `json:"soc_after"`
	Time      time.Time `json:"time"`
}

// NewStatePublisher connects to the broker described by cfg.
func NewStatePublisher(cfg Config) (*StatePublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cli, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return newStatePublisher(cli, cfg), nil
}

func newStatePublisher(cli pahoClient, cfg Config) *StatePublisher {
	return &StatePublisher{
		cli:     cli,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.PublishTimeout,
		log:     logger.New("mqtt-publisher"),
	}
}

// topicLevel replaces the level separator and wildcards so a boat name
// always fits in a single topic level.
var topicLevel = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// Topic returns the topic used for a boat and kind ("state" or "trip").
func (p *StatePublisher) Topic(boat, kind string) string {
	return fmt.Sprintf("%s/boat/%s/%s", p.prefix, topicLevel.Replace(boat), kind)
}

func (p *StatePublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := p.cli.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("%s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.log.Debugf("published %s", topic)
	return nil
}

// RecordBoatState publishes the snapshot on the state topic.
func (p *StatePublisher) RecordBoatState(st coremetrics.BoatState) error {
	return p.publish(p.Topic(st.Boat, "state"), statePayload{
		RunID:             st.RunID,
		Port:              st.Port,
		Boat:              st.Boat,
		SoCPercent:        st.SoCPercent,
		AvailableEnergyWh: st.AvailableEnergyWh,
		Context:           st.Context,
		Time:              st.Time,
	})
}

// RecordTrip publishes the trip result on the trip topic.
func (p *StatePublisher) RecordTrip(r coremetrics.TripRecord) error {
	return p.publish(p.Topic(r.Boat, "trip"), tripPayload{
		RunID:     r.RunID,
		Trip:      r.Trip,
		Boat:      r.Boat,
		DistanceM: r.DistanceM,
		DurationS: r.Duration.Seconds(),
		EnergyWh:  r.EnergyWh,
		SoCAfter:  r.SoCAfter,
		Time:      r.Time,
	})
}

// Close disconnects from the broker.
func (p *StatePublisher) Close() error {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
