package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServiceName != "api" {
		t.Errorf("ServiceName = %q, want api", cfg.ServiceName)
	}
	if cfg.HTTPPort != "8080" || cfg.MetricsPort != "9090" {
		t.Errorf("api ports = %s/%s, want 8080/9090", cfg.HTTPPort, cfg.MetricsPort)
	}
	if cfg.TopicGameResultRecorded == "" || cfg.TopicBetSettled == "" {
		t.Error("topic defaults must be set")
	}
}

func TestLoadWorkerPorts(t *testing.T) {
	t.Setenv("SERVICE_NAME", "settlement-worker")

	cfg := Load()
	if cfg.ServiceName != "settlement-worker" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.HTTPPort != "" {
		t.Error("worker must not expose a public HTTP port by default")
	}
	if cfg.MetricsPort != "9091" {
		t.Errorf("worker metrics port = %q, want 9091", cfg.MetricsPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/x?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092,kafka2:9092")

	cfg := Load()
	if cfg.PostgresDSN != "postgres://u:p@db:5432/x?sslmode=disable" {
		t.Errorf("PostgresDSN override not applied: %q", cfg.PostgresDSN)
	}
	if cfg.KafkaBrokers != "kafka1:9092,kafka2:9092" {
		t.Errorf("KafkaBrokers override not applied: %q", cfg.KafkaBrokers)
	}
}
