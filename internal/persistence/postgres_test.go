package persistence

import (
	"testing"
	"time"

	"github.com/spec-kit/workforce-service/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:                "postgres://svc:pw@localhost:5432/workforce?sslmode=disable",
		MaxConns:           8,
		MinConns:           2,
		ConnMaxIdleSec:     30,
		ConnMaxLifeSec:     300,
		ApplicationName:    "workforce-service",
		StatementTimeoutMs: 1500,
	})
	if err != nil {
		t.Fatalf("pool config: %v", err)
	}
	if cfg.MaxConns != 8 || cfg.MinConns != 2 {
		t.Fatalf("conns = %d/%d", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxConnIdleTime != 30*time.Second || cfg.MaxConnLifetime != 5*time.Minute {
		t.Fatalf("lifetimes = %v/%v", cfg.MaxConnIdleTime, cfg.MaxConnLifetime)
	}
	params := cfg.ConnConfig.RuntimeParams
	if params["application_name"] != "workforce-service" || params["statement_timeout"] != "1500" {
		t.Fatalf("runtime params = %v", params)
	}
}

func TestPoolConfigIgnoresMinAboveMax(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{DSN: "postgres://localhost/db", MaxConns: 2, MinConns: 5})
	if err != nil {
		t.Fatalf("pool config: %v", err)
	}
	if cfg.MinConns > cfg.MaxConns {
		t.Fatalf("min %d above max %d", cfg.MinConns, cfg.MaxConns)
	}
}

func TestPoolConfigRequiresDSN(t *testing.T) {
	if _, err := poolConfig(config.PostgresConfig{}); err == nil {
		t.Fatalf("expected error without DSN")
	}
	if _, err := poolConfig(config.PostgresConfig{DSN: "::not a dsn::"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
