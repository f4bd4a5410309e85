package database

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/customers-api/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type countingTracer struct {
	starts, ends int
}

func (c *countingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	c.starts++
	return ctx
}

func (c *countingTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {
	c.ends++
}

func TestMultiTracerCallsEveryTracer(t *testing.T) {
	a, b := &countingTracer{}, &countingTracer{}
	mt := &multiTracer{tracers: []pgx.QueryTracer{a, b}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	if a.starts != 1 || a.ends != 1 || b.starts != 1 || b.ends != 1 {
		t.Errorf("tracers not all called: a=%+v b=%+v", a, b)
	}
}

func TestQueryTracerSelection(t *testing.T) {
	logger := zerolog.Nop()

	cfg := config.Default()
	cfg.Primary.Env = "production"
	cfg.Observability.Logging.SlowQueryThreshold = 0
	if tracer := queryTracer(cfg, &logger, nil); tracer != nil {
		t.Errorf("expected no tracer, got %T", tracer)
	}

	cfg.Primary.Env = "local"
	if _, ok := queryTracer(cfg, &logger, nil).(*tracelog.TraceLog); !ok {
		t.Error("local env should log queries")
	}

	cfg.Observability.Logging.SlowQueryThreshold = time.Second
	if _, ok := queryTracer(cfg, &logger, nil).(*multiTracer); !ok {
		t.Error("local env with a threshold should chain tracers")
	}
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tracer := &slowQueryTracer{log: &logger, threshold: 50 * time.Millisecond}

	fast := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT fast"})
	tracer.TraceQueryEnd(fast, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})
	if buf.Len() != 0 {
		t.Fatalf("fast query logged: %s", buf.String())
	}

	slow := context.WithValue(context.Background(), queryStartKey{}, queryStart{
		sql:   "SELECT slow",
		start: time.Now().Add(-time.Second),
	})
	tracer.TraceQueryEnd(slow, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})

	out := buf.String()
	if !strings.Contains(out, "slow query") || !strings.Contains(out, "SELECT slow") {
		t.Errorf("slow query not logged: %s", out)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migrations embedded")
	}

	body, err := migrations.ReadFile("migrations/" + entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "CREATE TABLE customers") {
		t.Errorf("first migration should create the customers table")
	}
}
