package throttle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "chesscom:throttle"

// Limiter is a fixed-window rate limiter shared through Redis, so several
// processes hitting the archive service stay under one budget.
type Limiter struct {
	rdb    *redis.Client
	key    string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// New builds a limiter allowing perWindow calls per window.
func New(rdb *redis.Client, key string, perWindow int, window time.Duration) *Limiter {
	if strings.TrimSpace(key) == "" {
		key = defaultKey
	}
	if perWindow <= 0 {
		perWindow = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{rdb: rdb, key: key, limit: int64(perWindow), window: window, now: time.Now}
}

// NewFromURL dials Redis at redisURL and checks the connection.
func NewFromURL(ctx context.Context, redisURL string, perWindow int, window time.Duration) (*Limiter, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for throttle")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, defaultKey, perWindow, window), nil
}

// Wait blocks until the current window has budget left or ctx ends.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		ok, retryIn, err := l.take(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		t := time.NewTimer(retryIn)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *Limiter) take(ctx context.Context) (bool, time.Duration, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	key := l.key + ":" + strconv.FormatInt(slot, 10)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("throttle incr: %w", err)
	}
	if incr.Val() <= l.limit {
		return true, 0, nil
	}
	next := time.Unix(0, (slot+1)*int64(l.window))
	return false, next.Sub(now), nil
}

func (l *Limiter) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
