// Package plugins links the built-in metrics sinks into the binary.
// Importing it registers nop, prometheus, influx and mqtt.
package plugins

import (
	coremetrics "github.com/kilianp07/porttwin/core/metrics"
	_ "github.com/kilianp07/porttwin/infra/metrics"
	_ "github.com/kilianp07/porttwin/infra/mqtt"
)

// Sinks lists the sink types accepted under metrics.sinks.
func Sinks() []string { return coremetrics.SinkTypes() }
