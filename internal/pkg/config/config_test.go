package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "crewmap", DBName: "crewmap"},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Temporal: TemporalConfig{Enabled: true, TaskQueue: "listing-expiry"},
		Map:      MapConfig{Enabled: true, StyleURL: "https://tiles.example/style.json", FlyToZoom: 12, FlyToDurationMS: 1500},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_AccumulatesProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Database.Host = ""
	cfg.Map.FlyToZoom = 40

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "server.port"), msg)
	assert.True(t, strings.Contains(msg, "database.host"), msg)
	assert.True(t, strings.Contains(msg, "map.fly_to_zoom"), msg)
}

func TestMapConfig_Available(t *testing.T) {
	m := MapConfig{Enabled: true}
	assert.False(t, m.Available(), "missing style url disables the map")
	m.StyleURL = "https://tiles.example/style.json"
	assert.True(t, m.Available())
	m.Enabled = false
	assert.False(t, m.Available())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CREWMAP_SERVER_PORT", "9090")
	t.Setenv("CREWMAP_MAP_STYLE_URL", "https://tiles.example/style.json")
	t.Setenv("CREWMAP_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("crewmap-test")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "crewmap-test", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Map.Available())
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 12.0, cfg.Map.FlyToZoom)
	assert.Equal(t, int64(1500), cfg.Map.FlyToDuration().Milliseconds())
}
