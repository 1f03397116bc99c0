package bot

import (
	"context"
	"errors"
	"time"

	"github.com/park285/chess-archive-insight/internal/chart"
	"github.com/park285/chess-archive-insight/internal/irisfast"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/presenter"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, q pipeline.Query) (*pipeline.Report, error)
}

type Config struct {
	Prefix           string
	DefaultTimeClass string
	RoomAllowed      func(room string) bool
	// MaxConcurrent caps analyses running at once; extra requests wait.
	MaxConcurrent int
	Timeout       time.Duration
}

// Bot answers stats commands arriving from Iris.
type Bot struct {
	cfg       Config
	analyzer  Analyzer
	formatter *presenter.Formatter
	out       *presenter.Presenter
	logger    *zap.Logger
	slots     chan struct{}
	now       func() time.Time
}

func New(cfg Config, analyzer Analyzer, formatter *presenter.Formatter, egress irisfast.Egress, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	send := func(room, message string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return egress.SendText(ctx, room, message)
	}
	sendImage := func(room, imageBase64 string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return egress.SendImage(ctx, room, imageBase64)
	}
	return &Bot{
		cfg:       cfg,
		analyzer:  analyzer,
		formatter: formatter,
		out:       presenter.NewPresenter(send, sendImage),
		logger:    logger,
		slots:     make(chan struct{}, cfg.MaxConcurrent),
		now:       time.Now,
	}
}

func (b *Bot) Prefix() string { return b.cfg.Prefix }

// OnMessage is the websocket callback; work runs off the read loop.
func (b *Bot) OnMessage(msg *irisfast.Message) {
	if msg == nil || msg.Msg == "" {
		return
	}
	cmd := parseCommand(msg.Msg, b.cfg.Prefix, b.now(), b.cfg.DefaultTimeClass)
	if cmd.kind == commandNone {
		return
	}
	if b.cfg.RoomAllowed != nil && !b.cfg.RoomAllowed(msg.Room) {
		b.logger.Debug("room_not_allowed", zap.String("room", msg.Room))
		return
	}
	go b.handle(context.Background(), msg.Room, msg.UserID(), cmd)
}

func (b *Bot) handle(ctx context.Context, room, userID string, cmd command) {
	if cmd.kind == commandHelp {
		if err := b.out.Text(room, b.formatter.Usage()); err != nil {
			b.logger.Warn("reply_failed", zap.String("room", room), zap.Error(err))
		}
		return
	}

	select {
	case b.slots <- struct{}{}:
		defer func() { <-b.slots }()
	case <-ctx.Done():
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	logger := b.logger.With(zap.String("room", room), zap.String("user", userID), zap.String("player", cmd.query.Player))
	rep, err := b.analyzer.Analyze(ctx, cmd.query)
	if err != nil {
		logger.Info("stats_command_failed", zap.Error(err))
		if sendErr := b.out.Text(room, b.formatter.Error(err, cmd.query.Normalize())); sendErr != nil {
			logger.Warn("reply_failed", zap.Error(sendErr))
		}
		return
	}

	text := presenter.ApplySeeMoreWithHeader(b.formatter.Report(rep), b.formatter.SeeMoreHeader())
	png, err := chart.RenderTimelinePNG(ctx, rep.Timeline, chart.Options{
		Title: rep.Query.Player + " " + rep.Query.Start + " .. " + rep.Query.End,
	})
	if err != nil && !errors.Is(err, chart.ErrNoPoints) {
		logger.Warn("chart_render_failed", zap.Error(err))
	}
	if err := b.out.Report(room, text, png); err != nil {
		logger.Warn("reply_failed", zap.Error(err))
		return
	}
	logger.Info("stats_command_answered", zap.String("run_id", rep.RunID), zap.Int("games", rep.Dataset.Len()))
}
