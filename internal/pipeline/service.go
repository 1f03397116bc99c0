package pipeline

import (
	"context"
	"errors"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"github.com/park285/chess-archive-insight/internal/archive"
	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/stats"
	"go.uber.org/zap"
)

// Outcome codes recorded per run.
const (
	OutcomeOK             = "ok"
	OutcomePlayerNotFound = "player_not_found"
	OutcomeEmptyRange     = "empty_range"
	OutcomeInvalidQuery   = "invalid_query"
	OutcomeFetchFailed    = "fetch_failed"
	OutcomeCanceled       = "canceled"
	OutcomeError          = "error"
)

// Report is everything one invocation produces.
type Report struct {
	RunID         string
	Query         Query
	Months        []string
	Dataset       domain.Dataset
	WhiteOpenings []stats.OpeningStat
	BlackOpenings []stats.OpeningStat
	TimeClasses   map[string]stats.TimeClassStat
	Timeline      []stats.RatingPoint
	Tally         archive.Tally
	StartedAt     time.Time
	Elapsed       time.Duration
}

// RunSummary is the audit view of one invocation; it never carries game data.
type RunSummary struct {
	RunID      string
	Player     string
	Start      string
	End        string
	TimeClass  string
	Months     int
	Games      int
	Outcome    string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type RunRecorder interface {
	RecordRun(ctx context.Context, run RunSummary) error
}

type Service struct {
	resolver  *archive.Resolver
	extractor *archive.Extractor
	recorder  RunRecorder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r RunRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(src archive.Source, opts ...Option) *Service {
	s := &Service{
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = archive.NewResolver(src, s.logger)
	s.extractor = archive.NewExtractor(src, s.logger)
	return s
}

// Analyze resolves the archive, extracts the selected months and builds the
// three tables. Months are processed one after another; any failure discards
// everything gathered so far.
func (s *Service) Analyze(ctx context.Context, q Query) (*Report, error) {
	q = q.Normalize()
	rep := &Report{RunID: s.newID(), Query: q, StartedAt: s.now()}
	logger := s.logger.With(zap.String("run_id", rep.RunID), zap.String("player", q.Player))

	err := s.run(ctx, q, rep, logger)
	rep.Elapsed = s.now().Sub(rep.StartedAt)
	s.record(ctx, rep, err, logger)
	if err != nil {
		logger.Warn("analysis_failed", zap.String("outcome", OutcomeCode(err)), zap.Error(err))
		return nil, err
	}
	logger.Info("analysis_finished",
		zap.Int("months", len(rep.Months)),
		zap.Int("games", rep.Dataset.Len()),
		zap.Int("skipped", rep.Tally.Seen-rep.Tally.Kept),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func (s *Service) run(ctx context.Context, q Query, rep *Report, logger *zap.Logger) error {
	if err := q.Validate(); err != nil {
		return err
	}
	available, err := s.resolver.Resolve(ctx, q.Player)
	if err != nil {
		return err
	}
	months, err := archive.FilterMonths(available, q.Start, q.End)
	if err != nil {
		return err
	}
	rep.Months = months
	logger.Debug("months_selected", zap.Strings("months", months), zap.Int("available", len(available)))

	ds, tally, err := s.extractor.Extract(ctx, q.Player, months, q.TimeClass)
	if err != nil {
		return err
	}
	rep.Dataset = ds
	rep.Tally = tally
	rep.WhiteOpenings = stats.TopOpenings(ds, q.Player, nchess.White)
	rep.BlackOpenings = stats.TopOpenings(ds, q.Player, nchess.Black)
	rep.TimeClasses = stats.ByTimeClass(ds)
	rep.Timeline = stats.RatingTimeline(ds, q.Player)
	return nil
}

func (s *Service) record(ctx context.Context, rep *Report, runErr error, logger *zap.Logger) {
	if s.recorder == nil {
		return
	}
	sum := RunSummary{
		RunID:      rep.RunID,
		Player:     rep.Query.Player,
		Start:      rep.Query.Start,
		End:        rep.Query.End,
		TimeClass:  rep.Query.TimeClass,
		Months:     len(rep.Months),
		Games:      rep.Dataset.Len(),
		Outcome:    OutcomeCode(runErr),
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.StartedAt.Add(rep.Elapsed),
	}
	if runErr != nil {
		sum.Games = 0
		sum.Error = runErr.Error()
	}
	// record even when ctx is already cancelled
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.recorder.RecordRun(rctx, sum); err != nil {
		logger.Warn("run_record_failed", zap.Error(err))
	}
}

// OutcomeCode classifies an Analyze error for logs and the run log.
func OutcomeCode(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrPlayerNotFound):
		return OutcomePlayerNotFound
	case errors.Is(err, domain.ErrEmptyRange):
		return OutcomeEmptyRange
	case errors.Is(err, domain.ErrInvalidQuery):
		return OutcomeInvalidQuery
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case domain.IsFetchError(err):
		return OutcomeFetchFailed
	default:
		return OutcomeError
	}
}
