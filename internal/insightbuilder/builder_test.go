package insightbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/park285/chess-archive-insight/internal/config"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		ChesscomBaseURL:   "http://127.0.0.1:1/pub",
		ChesscomUserAgent: "test",
		ChesscomTimeout:   time.Second,
		ChesscomRetryMax:  1,
		ChesscomRatePerS:  2,
	}
}

func TestNewWithoutOptionalBackends(t *testing.T) {
	deps, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Close()
	if deps.Service == nil || deps.Client == nil {
		t.Fatalf("service and client are required")
	}
	if deps.Limiter != nil || deps.RunLog != nil {
		t.Fatalf("optional backends should be nil")
	}
}

func TestNewWithRedisThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Close()
	if deps.Limiter == nil {
		t.Fatalf("limiter should be configured")
	}
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	cfg := baseConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewNilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}
