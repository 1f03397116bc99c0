package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://api.chess.com/pub"
	DefaultUserAgent = "chess-archive-insight/1.0 (+https://github.com/park285/chess-archive-insight)"
)

// Limiter gates outbound calls. Wait blocks until a call may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client talks to the chess.com published-data API.
type Client struct {
	baseURL   string
	userAgent string
	http      *fasthttp.Client
	limiter   Limiter
	logger    *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = strings.TrimSpace(ua)
		}
	}
}

func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		userAgent:      DefaultUserAgent,
		http:           &fasthttp.Client{ReadTimeout: 15 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		logger:         zap.NewNop(),
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type archiveIndex struct {
	Archives []string `json:"archives"`
}

type monthlyGames struct {
	Games []domain.RawGame `json:"games"`
}

// ArchiveIndex returns the archive URLs for player, oldest first.
// A 404 from the service maps to domain.ErrPlayerNotFound.
func (c *Client) ArchiveIndex(ctx context.Context, player string) ([]string, error) {
	u := c.baseURL + "/player/" + playerPath(player) + "/games/archives"
	var idx archiveIndex
	status, err := c.getJSON(ctx, "archive index", u, &idx)
	if err != nil {
		if status == fasthttp.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, player)
		}
		return nil, err
	}
	return idx.Archives, nil
}

// MonthlyGames returns the raw games the player finished in year/month.
func (c *Client) MonthlyGames(ctx context.Context, player, year, month string) ([]domain.RawGame, error) {
	u := c.baseURL + "/player/" + playerPath(player) + "/games/" + url.PathEscape(year) + "/" + url.PathEscape(month)
	var mg monthlyGames
	if _, err := c.getJSON(ctx, "monthly games", u, &mg); err != nil {
		return nil, err
	}
	return mg.Games, nil
}

func playerPath(player string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(player)))
}

// getJSON returns the last HTTP status seen alongside any error.
func (c *Client) getJSON(ctx context.Context, op, u string, out any) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(u)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(c.userAgent)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return lastStatus, &domain.FetchError{Op: op, URL: u, Err: err}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return lastStatus, &domain.FetchError{Op: op, URL: u, Err: fmt.Errorf("throttle: %w", err)}
			}
		}

		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = &domain.FetchError{Op: op, URL: u, Err: err}
			lastStatus = 0
		} else {
			status := resp.StatusCode()
			lastStatus = status
			if status >= 200 && status < 300 {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return status, &domain.FetchError{Op: op, URL: u, Status: status, Err: fmt.Errorf("decode response: %w", err)}
				}
				return status, nil
			}
			lastErr = &domain.FetchError{Op: op, URL: u, Status: status, Err: errors.New(remoteMessage(resp.Body()))}
			if !shouldRetryStatus(status) {
				return status, lastErr
			}
		}

		if attempt == attempts {
			break
		}
		c.logger.Debug("archive_request_retry",
			zap.String("op", op),
			zap.String("url", u),
			zap.Int("attempt", attempt),
			zap.Int("status", lastStatus),
		)
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastStatus, &domain.FetchError{Op: op, URL: u, Status: lastStatus, Err: sleepErr}
		}
	}
	return lastStatus, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 250 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusTooManyRequests, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// remoteMessage pulls {"message": "..."} out of an error body, falling back to the raw text.
func remoteMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err == nil && strings.TrimSpace(m.Message) != "" {
		return m.Message
	}
	return truncate(strings.TrimSpace(string(body)), 256)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
