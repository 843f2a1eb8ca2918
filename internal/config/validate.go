package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks configuration invariants. Called by Load after
// normalization; direct constructors (tests) may call it themselves.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("config: database_path is required")
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		return fmt.Errorf("config: storage_dir is required")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: log_format: unsupported value %q", c.LogFormat)
	}
	if c.ConnectorIdleTimeout < 0 {
		return fmt.Errorf("config: connector_idle_timeout must not be negative")
	}
	if c.ConnectorMaxItems < 1 {
		return fmt.Errorf("config: connector_max_items must be at least 1")
	}
	if c.ConnectorBind != "" {
		host, _, err := net.SplitHostPort(c.ConnectorBind)
		if err != nil {
			return fmt.Errorf("config: connector_bind: %w", err)
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			// The capture protocol is unauthenticated by design.
			return fmt.Errorf("config: connector_bind must be a loopback address, got %q", c.ConnectorBind)
		}
	}
	return nil
}
