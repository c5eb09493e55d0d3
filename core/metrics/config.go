package metrics

import "github.com/kilianp07/porttwin/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, serves /metrics on this address during a run.
	PrometheusAddr string `json:"prometheus_addr"`
}
