package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CUSTOMERS_DATABASE.PASSWORD", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Primary.Env != "local" {
		t.Errorf("env = %q, want local", cfg.Primary.Env)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Observability.ServiceName != ServiceName {
		t.Errorf("service name = %q, want %q", cfg.Observability.ServiceName, ServiceName)
	}
	if cfg.Observability.Environment != "local" {
		t.Errorf("observability env = %q, want local", cfg.Observability.Environment)
	}
	if cfg.Auth.Enabled {
		t.Error("auth should be disabled by default")
	}
	if !cfg.Observability.HealthCheckEnabled(HealthCheckDatabase) {
		t.Error("database health check should be enabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CUSTOMERS_PRIMARY.ENV", "production")
	t.Setenv("CUSTOMERS_SERVER.PORT", "9090")
	t.Setenv("CUSTOMERS_SERVER.CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CUSTOMERS_DATABASE.PORT", "6543")
	t.Setenv("CUSTOMERS_OBSERVABILITY.LOGGING.SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if got := cfg.Server.CORSAllowedOrigins; !slices.Equal(got, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("cors origins = %v", got)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("database port = %d, want 6543", cfg.Database.Port)
	}
	if cfg.Observability.Logging.SlowQueryThreshold != 250*time.Millisecond {
		t.Errorf("slow query threshold = %v", cfg.Observability.Logging.SlowQueryThreshold)
	}
	// Untouched defaults survive a partial observability block.
	if cfg.Observability.HealthChecks.Timeout != 5*time.Second {
		t.Errorf("health check timeout = %v, want 5s", cfg.Observability.HealthChecks.Timeout)
	}
	if !cfg.Observability.IsProduction() {
		t.Error("expected production")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing password",
			env:  map[string]string{},
			want: "Password",
		},
		{
			name: "unknown environment",
			env: map[string]string{
				"CUSTOMERS_DATABASE.PASSWORD": "secret",
				"CUSTOMERS_PRIMARY.ENV":       "moon",
			},
			want: "Env",
		},
		{
			name: "auth without secret",
			env: map[string]string{
				"CUSTOMERS_DATABASE.PASSWORD": "secret",
				"CUSTOMERS_AUTH.ENABLED":      "true",
			},
			want: "SecretKey",
		},
		{
			name: "bad log level",
			env: map[string]string{
				"CUSTOMERS_DATABASE.PASSWORD":           "secret",
				"CUSTOMERS_OBSERVABILITY.LOGGING.LEVEL": "loud",
			},
			want: "invalid logging level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "::1",
		Port:     5432,
		User:     "app",
		Password: "pa:ss@word",
		Name:     "customers",
		SSLMode:  "disable",
	}

	want := "postgres://app:pa%3Ass%40word@[::1]:5432/customers?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestGetLogLevel(t *testing.T) {
	c := &ObservabilityConfig{Environment: "production"}
	if got := c.GetLogLevel(); got != "info" {
		t.Errorf("production default = %q, want info", got)
	}

	c.Environment = "local"
	if got := c.GetLogLevel(); got != "debug" {
		t.Errorf("local default = %q, want debug", got)
	}

	c.Logging.Level = "warn"
	if got := c.GetLogLevel(); got != "warn" {
		t.Errorf("explicit = %q, want warn", got)
	}
}

func TestLoadConfigListKeys(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CUSTOMERS_SERVER.CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example,")
	t.Setenv("CUSTOMERS_OBSERVABILITY.HEALTH_CHECKS.CHECKS", "database")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got := cfg.Server.CORSAllowedOrigins; !slices.Equal(got, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("cors origins = %v", got)
	}
	if got := cfg.Observability.HealthChecks.Checks; !slices.Equal(got, []string{HealthCheckDatabase}) {
		t.Errorf("health checks = %v", got)
	}
}
