package config

import (
	"os"
	"path/filepath"
	"testing"

	"rosterd/core/roster"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	data := `engine:
  policy:
    coverage_mode: "minimum"
    opening_policy: "global"
    permanent_week_target: 38
    on_call_restricted: true
  solver:
    timeout_seconds: 30
audit:
  backend: "sqlite"
  path: "audit.db"
api:
  addr: ":8085"
  token: "secret"
metrics:
  prometheus_enabled: true
`
	cfg, err := Load(writeConfig(t, "config.yaml", data))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"coverage", cfg.Engine.Policy.Coverage(), roster.CoverageMinimum},
		{"opening", cfg.Engine.Policy.Opening(), roster.OpeningGlobal},
		{"week_target", cfg.Engine.Policy.PermanentWeekTarget, 38},
		{"restricted", cfg.Engine.Policy.OnCallRestricted, true},
		{"timeout", cfg.Engine.Solver.TimeoutSeconds, 30},
		{"audit_backend", cfg.Audit.Backend, "sqlite"},
		{"audit_path", cfg.Audit.Path, "audit.db"},
		{"api_addr", cfg.API.Addr, ":8085"},
		{"api_token", cfg.API.Token, "secret"},
		{"prom_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prom_port", cfg.Metrics.PrometheusPort, ":9090"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
	// Unset sections fall back to the standard deployment.
	if len(cfg.Engine.Bands) != 6 {
		t.Errorf("bands: got %d want the default table", len(cfg.Engine.Bands))
	}
	if cfg.Engine.Policy.ShortfallCap != 10 {
		t.Errorf("shortfall cap: got %d", cfg.Engine.Policy.ShortfallCap)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", "{}\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Engine.Solver.TimeoutSeconds != 45 {
		t.Errorf("timeout default: got %d", cfg.Engine.Solver.TimeoutSeconds)
	}
	if cfg.Audit.Backend != "jsonl" || cfg.Audit.Path != "solves.jsonl" {
		t.Errorf("audit defaults: %+v", cfg.Audit)
	}
	if cfg.API.Addr != ":8080" {
		t.Errorf("api default addr: %s", cfg.API.Addr)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "x = 1")); err == nil {
		t.Fatal("unsupported extension must fail")
	}
	bad := `engine:
  policy:
    coverage_mode: "sometimes"
`
	if _, err := Load(writeConfig(t, "config.yaml", bad)); err == nil {
		t.Fatal("unknown coverage mode must fail")
	}
	bad = `audit:
  backend: "oracle"
`
	if _, err := Load(writeConfig(t, "config.yaml", bad)); err == nil {
		t.Fatal("unknown audit backend must fail")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("K_API__TOKEN", "from-env")
	cfg, err := Load(writeConfig(t, "config.yaml", "api:\n  addr: \":8081\"\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.API.Token != "from-env" {
		t.Errorf("env override: got %q", cfg.API.Token)
	}
	if cfg.API.Addr != ":8081" {
		t.Errorf("file value lost: %q", cfg.API.Addr)
	}
}
