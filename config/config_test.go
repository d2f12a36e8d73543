package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wassel-delivery/dispatch/core/dispatch"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  addr: ":9000"
  auth_token: "secret"
  prom_addr: ":9100"
dispatch:
  default_algorithm: "zone_based"
  retry:
    initial_delay_seconds: 60
    max_attempts: 5
zones:
  - id: "olaya"
    name: "Olaya"
    latitude: 24.69
    longitude: 46.68
    radius_meters: 4000
    priority: 1
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "dispatch"
  topic_prefix: "wassel"
metrics:
  prometheus: true
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.auth_token", cfg.Server.AuthToken, "secret"},
		{"server.prom_addr", cfg.Server.PromAddr, ":9100"},
		{"default_algorithm", cfg.Dispatch.DefaultAlgorithm, "zone_based"},
		{"retry.initial_delay", cfg.Dispatch.Retry.InitialDelaySeconds, 60},
		{"retry.max_attempts", cfg.Dispatch.Retry.MaxAttempts, 5},
		{"retry.no_driver_default", cfg.Dispatch.Retry.NoDriverDelaySeconds, 600},
		{"zone.id", cfg.Zones[0].ID, "olaya"},
		{"zone.count", len(cfg.Zones), 1},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.prefix", cfg.MQTT.TopicPrefix, "wassel"},
		{"metrics.prometheus", cfg.Metrics.Prometheus, true},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DD_SERVER__ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env override not applied: %s", cfg.Server.Addr)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestDefault_RiyadhZones(t *testing.T) {
	cfg := Default()
	if len(cfg.Zones) != 5 {
		t.Fatalf("expected 5 default zones, got %d", len(cfg.Zones))
	}
	if cfg.Zones[0].ID != "central" || cfg.Zones[0].RadiusMeters != 5000 {
		t.Errorf("unexpected central zone: %+v", cfg.Zones[0])
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected default addr: %s", cfg.Server.Addr)
	}
	if cfg.Dispatch.DefaultAlgorithm != dispatch.AlgorithmOptimalScore {
		t.Errorf("unexpected default algorithm: %s", cfg.Dispatch.DefaultAlgorithm)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDispatchConfig_RetryConversion(t *testing.T) {
	c := DispatchConfig{Retry: RetryConfig{
		InitialDelaySeconds:  30,
		NoDriverDelaySeconds: 60,
		ErrorDelaySeconds:    90,
		MaxAttempts:          2,
	}}
	rc := c.RetryConfig()
	if rc.InitialDelay != 30*time.Second || rc.NoDriverDelay != time.Minute || rc.ErrorDelay != 90*time.Second || rc.MaxAttempts != 2 {
		t.Errorf("unexpected conversion: %+v", rc)
	}
}

func TestLoadZonesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.yaml")
	data := `- id: "diriyah"
  name: "Diriyah"
  latitude: 24.73
  longitude: 46.57
  radius_meters: 3000
  priority: 3
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write zones: %v", err)
	}
	zones, err := LoadZonesFile(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if len(zones) != 1 || zones[0].ID != "diriyah" {
		t.Fatalf("unexpected zones: %+v", zones)
	}
	z := zones[0].Model()
	if z.Center.Latitude != 24.73 || z.RadiusMeters != 3000 {
		t.Errorf("unexpected model: %+v", z)
	}
}

func TestLoadZonesFile_InvalidZone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.json")
	if err := os.WriteFile(path, []byte(`[{"id": "", "radius_meters": -1}]`), 0o644); err != nil {
		t.Fatalf("write zones: %v", err)
	}
	if _, err := LoadZonesFile(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
