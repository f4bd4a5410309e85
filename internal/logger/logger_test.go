package logger

import (
	"testing"

	"github.com/deppfellow/customers-api/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	tests := []struct {
		in   zerolog.Level
		want tracelog.LogLevel
	}{
		{zerolog.TraceLevel, tracelog.LogLevelTrace},
		{zerolog.DebugLevel, tracelog.LogLevelDebug},
		{zerolog.InfoLevel, tracelog.LogLevelInfo},
		{zerolog.WarnLevel, tracelog.LogLevelWarn},
		{zerolog.ErrorLevel, tracelog.LogLevelError},
		{zerolog.Disabled, tracelog.LogLevelNone},
	}

	for _, tt := range tests {
		if got := GetPgxTraceLogLevel(tt.in); got != tt.want {
			t.Errorf("GetPgxTraceLogLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerServiceDisabledWithoutLicense(t *testing.T) {
	svc, err := NewLoggerService(config.DefaultObservabilityConfig())
	if err != nil {
		t.Fatalf("NewLoggerService: %v", err)
	}
	if svc.GetApplication() != nil {
		t.Fatal("expected no New Relic application without a license key")
	}

	// Must not panic when disabled.
	svc.RecordEvent("Test", map[string]interface{}{"k": "v"})
	svc.Shutdown()
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	l := NewLogger(cfg)
	if l.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", l.GetLevel())
	}
}

func TestWithTraceContextNilTransaction(t *testing.T) {
	l := zerolog.Nop()
	if got := WithTraceContext(l, nil); got.GetLevel() != l.GetLevel() {
		t.Error("nil transaction should return the logger unchanged")
	}
}
