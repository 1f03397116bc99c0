package insightbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/chess-archive-insight/internal/chesscom"
	"github.com/park285/chess-archive-insight/internal/config"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/runlog"
	"github.com/park285/chess-archive-insight/internal/throttle"
	"go.uber.org/zap"
)

// Deps is everything a binary needs to run analyses.
type Deps struct {
	Service *pipeline.Service
	Client  *chesscom.Client
	Limiter *throttle.Limiter
	RunLog  *runlog.Repository
}

// New wires the archive client and the pipeline. Redis and Postgres are
// optional: without REDIS_URL calls are not throttled across processes and
// without DATABASE_URL runs are not recorded.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Deps{}

	clientOpts := []chesscom.Option{
		chesscom.WithTimeout(cfg.ChesscomTimeout),
		chesscom.WithRetry(cfg.ChesscomRetryMax),
		chesscom.WithUserAgent(cfg.ChesscomUserAgent),
		chesscom.WithLogger(logger),
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lim, err := throttle.NewFromURL(rctx, cfg.RedisURL, cfg.ChesscomRatePerS, time.Second)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("init throttle: %w", err)
		}
		deps.Limiter = lim
		clientOpts = append(clientOpts, chesscom.WithLimiter(lim))
		logger.Info("throttle_enabled", zap.Int("per_second", cfg.ChesscomRatePerS))
	}

	deps.Client = chesscom.NewClient(cfg.ChesscomBaseURL, clientOpts...)

	svcOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		repo, err := runlog.Open(dctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init run log: %w", err)
		}
		deps.RunLog = repo
		svcOpts = append(svcOpts, pipeline.WithRecorder(repo))
		logger.Info("run_log_enabled")
	}

	deps.Service = pipeline.NewService(deps.Client, svcOpts...)
	return deps, nil
}

func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Limiter != nil {
		_ = d.Limiter.Close()
	}
	if d.RunLog != nil {
		_ = d.RunLog.Close()
	}
}
