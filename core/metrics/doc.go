// Package metrics defines the recorder interfaces fed by the simulation and
// the sink registry. Concrete sinks (Prometheus, InfluxDB, MQTT) live in
// infra/metrics and infra/mqtt and register themselves in init. A sink only
// has to record trips; charge, boat state and fleet size recording are
// optional and detected with type assertions.
package metrics
