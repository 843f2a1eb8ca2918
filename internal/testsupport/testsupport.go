// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/library"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(base, "bello.db")
	cfg.StorageDir = filepath.Join(base, "storage")
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.ConnectorBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithConnectorMaxItems overrides the connector item-list cap.
func WithConnectorMaxItems(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.ConnectorMaxItems = n
	}
}

// MustOpenStore opens a store for the given config and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
