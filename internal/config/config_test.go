package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
  password: "secret"
  sslmode: "disable"
auth:
  mode: "jwt"
  jwt_secret: "test-secret"
workouts:
  strict_transitions: true
generator:
  model: "meta-llama/Meta-Llama-3-8B-Instruct"
  timeout: 5s
kafka:
  brokers: ["kafka:9092"]
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("database.driver = %q, want default %q", cfg.Database.Driver, "postgres")
	}
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
	if cfg.Auth.Mode != AuthModeJWT {
		t.Errorf("auth.mode = %q, want %q", cfg.Auth.Mode, AuthModeJWT)
	}
	if !cfg.Workouts.StrictTransitions {
		t.Error("workouts.strict_transitions = false, want true")
	}
	if cfg.Workouts.RecomputeMetrics {
		t.Error("workouts.recompute_metrics = true, want false")
	}
	if cfg.Generator.Timeout != 5*time.Second {
		t.Errorf("generator.timeout = %v, want 5s", cfg.Generator.Timeout)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "kafka:9092" {
		t.Errorf("kafka.brokers = %v, want [kafka:9092]", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "workout.events" {
		t.Errorf("kafka.topic = %q, want default %q", cfg.Kafka.Topic, "workout.events")
	}
}

// TestDefaults verifies the minimal dev config picks up defaults.
func TestDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
server:
  port: 8080
database:
  driver: sqlite
  path: /tmp/liftlog.db
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.Mode != AuthModeDev {
		t.Errorf("auth.mode = %q, want %q", cfg.Auth.Mode, AuthModeDev)
	}
	if cfg.Generator.Timeout != 20*time.Second {
		t.Errorf("generator.timeout = %v, want 20s", cfg.Generator.Timeout)
	}
	if cfg.Tailscale.Hostname != "liftlog" {
		t.Errorf("tailscale.hostname = %q, want %q", cfg.Tailscale.Hostname, "liftlog")
	}
}

// TestEnvOverride verifies that LIFTLOG_ env vars take precedence over YAML values.
// This ensures production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFTLOG_DB_HOST", "override-host")
	t.Setenv("LIFTLOG_DB_PORT", "9999")
	t.Setenv("LIFTLOG_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("LIFTLOG_WORKOUTS_RECOMPUTE_METRICS", "true")
	t.Setenv("LIFTLOG_KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("auth.jwt_secret = %q, want %q", cfg.Auth.JWTSecret, "env-secret")
	}
	if !cfg.Workouts.RecomputeMetrics {
		t.Error("workouts.recompute_metrics = false, want true")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("kafka.brokers = %v, want [a:9092 b:9092]", cfg.Kafka.Brokers)
	}
	// Unchanged fields should keep YAML values
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
}

// TestValidationMissingPort verifies that missing required fields produce a clear error.
// Prevents starting the server with incomplete configuration.
func TestValidationMissingPort(t *testing.T) {
	yaml := `
server:
  host: "0.0.0.0"
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing port")
	}
}

// TestValidationJWTWithoutSecret verifies jwt mode cannot start unprotected.
func TestValidationJWTWithoutSecret(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  driver: sqlite
  path: /tmp/x.db
auth:
  mode: jwt
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing jwt_secret")
	}
}

// TestValidationRejectsUnknownValues verifies unsupported drivers and modes fail early.
func TestValidationRejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"driver": "server:\n  port: 1\ndatabase:\n  driver: mysql\n",
		"mode":   "server:\n  port: 1\ndatabase:\n  driver: sqlite\n  path: x.db\nauth:\n  mode: oauth\n",
		"tsnet":  "server:\n  port: 1\ndatabase:\n  driver: sqlite\n  path: x.db\nauth:\n  mode: tailscale\n",
	}
	for name, yaml := range cases {
		if _, err := Load(writeTemp(t, yaml)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

// TestDSN verifies the connection string format and sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "liftlog", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/liftlog?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

// TestLoadMissingFile verifies a clear error for a missing file.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
