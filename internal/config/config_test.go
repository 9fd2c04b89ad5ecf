package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expeditor/internal/models"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  metrics_port: 9900
database:
  path: /tmp/kds.db
nats:
  url: nats://localhost:4222
queue:
  max_orders_in_queue: 25
  sla_minutes: 15
  escalation_interval_seconds: 30
  auto_escalation: false
  station_capacity:
    kitchen: 12
    bar: 6
  weights:
    wait_time: 0.4
    modifiers: 0.1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9900, cfg.Server.MetricsPort)
	assert.Equal(t, "/tmp/kds.db", cfg.Database.Path)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)

	qc := cfg.QueueConfig()
	assert.Equal(t, 25, qc.MaxOrdersInQueue)
	assert.Equal(t, 15.0, qc.SLAMinutes)
	assert.Equal(t, 30*time.Second, qc.SweepInterval)
	assert.False(t, qc.AutoEscalation)
	assert.Equal(t, 12, qc.CapacityFor(models.StationKitchen))
	assert.Equal(t, 6, qc.CapacityFor(models.StationBar))
	assert.Equal(t, 10, qc.CapacityFor(models.StationService))

	// Overridden weights apply, the rest keep reference values
	assert.Equal(t, 0.4, qc.Weights.WaitTime)
	assert.Equal(t, 0.1, qc.Weights.Modifiers)
	assert.Equal(t, 0.15, qc.Weights.Complexity)
}

func TestLoad_DefaultsWhenSectionsOmitted(t *testing.T) {
	path := writeConfig(t, "database:\n  path: custom.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "custom.db", cfg.Database.Path)

	qc := cfg.QueueConfig()
	require.NoError(t, qc.Validate())
	assert.Equal(t, 50, qc.MaxOrdersInQueue)
	assert.Equal(t, 20.0, qc.SLAMinutes)
	assert.True(t, qc.AutoEscalation)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
