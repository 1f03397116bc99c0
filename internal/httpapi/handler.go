package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/park285/chess-archive-insight/internal/chart"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/presenter"
	"github.com/park285/chess-archive-insight/pkg/insightdto"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, q pipeline.Query) (*pipeline.Report, error)
}

type Handler struct {
	analyzer         Analyzer
	logger           *zap.Logger
	timeout          time.Duration
	defaultTimeClass string
	now              func() time.Time
}

type Option func(*Handler)

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds one analysis; zero leaves only the client's deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func WithDefaultTimeClass(tc string) Option {
	return func(h *Handler) { h.defaultTimeClass = strings.TrimSpace(tc) }
}

func NewHandler(a Analyzer, opts ...Option) *Handler {
	h := &Handler{
		analyzer: a,
		logger:   zap.NewNop(),
		timeout:  2 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	api := r.Group("/api/players/:player")
	api.GET("/report", h.report)
	api.GET("/rating-chart.png", h.ratingChart)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) queryFrom(c *gin.Context) pipeline.Query {
	q := pipeline.Query{
		Player:    c.Param("player"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
		TimeClass: c.Query("time_class"),
	}
	return q.WithDefaults(h.now(), h.defaultTimeClass)
}

func (h *Handler) analyze(c *gin.Context) (*pipeline.Report, bool) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	rep, err := h.analyzer.Analyze(ctx, h.queryFrom(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return rep, true
}

func (h *Handler) report(c *gin.Context) {
	rep, ok := h.analyze(c)
	if !ok {
		return
	}
	withGames, _ := strconv.ParseBool(c.DefaultQuery("games", "false"))
	c.JSON(http.StatusOK, presenter.ToDTOReport(rep, withGames))
}

func (h *Handler) ratingChart(c *gin.Context) {
	rep, ok := h.analyze(c)
	if !ok {
		return
	}
	png, err := chart.RenderTimelinePNG(c.Request.Context(), rep.Timeline, chart.Options{
		Title: rep.Query.Player + " " + rep.Query.Start + " .. " + rep.Query.End,
	})
	if errors.Is(err, chart.ErrNoPoints) {
		c.JSON(http.StatusUnprocessableEntity, insightdto.DomainError{Code: "empty_timeline", Message: err.Error()})
		return
	}
	if err != nil {
		h.logger.Warn("chart_render_failed", zap.String("run_id", rep.RunID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, insightdto.DomainError{Code: insightdto.CodeInternal, Message: "chart rendering failed"})
		return
	}
	c.Header("X-Run-Id", rep.RunID)
	c.Data(http.StatusOK, "image/png", png)
}

func writeError(c *gin.Context, err error) {
	de := insightdto.FromError(err)
	c.JSON(StatusFor(de.Code), de)
}

// StatusFor maps a DomainError code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case insightdto.CodePlayerNotFound:
		return http.StatusNotFound
	case insightdto.CodeEmptyRange:
		return http.StatusUnprocessableEntity
	case insightdto.CodeInvalidQuery:
		return http.StatusBadRequest
	case insightdto.CodeFetchFailed:
		return http.StatusBadGateway
	case insightdto.CodeCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
