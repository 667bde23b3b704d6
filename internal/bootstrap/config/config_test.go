package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenConfigFileMissing(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "mcpgate" {
		t.Fatalf("app.name = %q, want mcpgate", cfg.App.Name)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("server.addr = %q, want :8000", cfg.Server.Addr)
	}
	if cfg.Policy.AutoApproveBelow != 25 || cfg.Policy.MaxRiskScore != 75 {
		t.Fatalf("policy thresholds = %v/%v, want 25/75", cfg.Policy.AutoApproveBelow, cfg.Policy.MaxRiskScore)
	}
	if cfg.Proxy.UpstreamTimeoutSeconds != 60 {
		t.Fatalf("proxy.upstream_timeout_seconds = %d, want 60", cfg.Proxy.UpstreamTimeoutSeconds)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: mcpgate
  env: test
server:
  addr: ":9000"
  auth_token: secret-token
database:
  dsn: gateway.sqlite
policy:
  auto_approve_below: 10
  max_risk_score: 50
events:
  nats_url: nats://127.0.0.1:4222
  subject_prefix: gateway.audit
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Env != "test" {
		t.Fatalf("app.env = %q, want test", cfg.App.Env)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("server.addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Server.AuthToken != "secret-token" {
		t.Fatalf("server.auth_token = %q", cfg.Server.AuthToken)
	}
	if cfg.Policy.AutoApproveBelow != 10 || cfg.Policy.MaxRiskScore != 50 {
		t.Fatalf("policy thresholds = %v/%v, want 10/50", cfg.Policy.AutoApproveBelow, cfg.Policy.MaxRiskScore)
	}
	if cfg.Events.NATSURL != "nats://127.0.0.1:4222" {
		t.Fatalf("events.nats_url = %q", cfg.Events.NATSURL)
	}
	if cfg.Events.SubjectPrefix != "gateway.audit" {
		t.Fatalf("events.subject_prefix = %q", cfg.Events.SubjectPrefix)
	}
}

func TestLoadRejectsThresholdInversion(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: gateway.sqlite
policy:
  auto_approve_below: 80
  max_risk_score: 75
`)

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error when auto_approve_below >= max_risk_score")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: ""
`)

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for empty database.dsn")
	}
}
