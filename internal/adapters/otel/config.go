package otel

// Config holds metrics exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
	// Prometheus adds a pull reader served on /metrics.
	Prometheus bool
}

// Active reports whether any reader would be configured.
func (c Config) Active() bool {
	return (c.Enabled && c.Endpoint != "") || c.Prometheus
}
