package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/park285/chess-archive-insight/internal/chart"
	"github.com/park285/chess-archive-insight/internal/config"
	"github.com/park285/chess-archive-insight/internal/insightbuilder"
	"github.com/park285/chess-archive-insight/internal/msgcat"
	"github.com/park285/chess-archive-insight/internal/obslog"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/presenter"
	"github.com/park285/chess-archive-insight/pkg/insightdto"
	"go.uber.org/zap"
)

type options struct {
	user      string
	start     string
	end       string
	timeClass string
	output    string
	chartPath string
	games     bool
	lang      string
	verbose   bool
	timeout   time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.user, "user", "", "chess.com username (required)")
	flag.StringVar(&o.start, "start", "", "first month, YYYY-MM (default: January of this year)")
	flag.StringVar(&o.end, "end", "", "last month, YYYY-MM (default: December of this year)")
	flag.StringVar(&o.timeClass, "time-class", "", "all|bullet|blitz|rapid|daily (env: DEFAULT_TIME_CLASS)")
	flag.StringVar(&o.output, "output", "text", "Output format: text|json")
	flag.StringVar(&o.chartPath, "chart", "", "write the rating timeline PNG to this file")
	flag.BoolVar(&o.games, "games", false, "include every parsed game in json output")
	flag.StringVar(&o.lang, "lang", "en", "text report language: en|ko")
	flag.BoolVar(&o.verbose, "v", false, "log to stderr")
	flag.DurationVar(&o.timeout, "timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	if strings.TrimSpace(o.user) == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(o, os.Stdout))
}

func run(o options, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}

	logOpts := obslog.OptionsFromEnv("analyze")
	logOpts.ToConsole = o.verbose
	logOpts.ConsoleStderr = true
	if err := obslog.Init(logOpts); err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return 1
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	deps, err := insightbuilder.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init error:", err)
		return 1
	}
	defer deps.Close()

	q := pipeline.Query{Player: o.user, Start: o.start, End: o.end, TimeClass: o.timeClass}.
		WithDefaults(time.Now(), cfg.DefaultTimeClass)

	rep, err := deps.Service.Analyze(ctx, q)
	if err != nil {
		return reportError(o, stdout, q, err)
	}

	switch strings.ToLower(strings.TrimSpace(o.output)) {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(presenter.ToDTOReport(rep, o.games)); err != nil {
			fmt.Fprintln(os.Stderr, "encode error:", err)
			return 1
		}
	default:
		cat, err := msgcat.NewLang(o.lang, cfg.MessageDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "message catalog error:", err)
			return 1
		}
		fmt.Fprintln(stdout, presenter.NewFormatter(cat, nil).Report(rep))
	}

	if o.chartPath != "" {
		if err := writeChart(ctx, o.chartPath, rep); err != nil {
			logger.Warn("chart_write_failed", zap.String("path", o.chartPath), zap.Error(err))
			fmt.Fprintln(os.Stderr, "chart error:", err)
			return 1
		}
	}
	return 0
}

func reportError(o options, stdout io.Writer, q pipeline.Query, err error) int {
	if strings.EqualFold(o.output, "json") {
		_ = json.NewEncoder(stdout).Encode(insightdto.FromError(err))
	} else if cat, cerr := msgcat.NewLang(o.lang, ""); cerr == nil {
		fmt.Fprintln(os.Stderr, presenter.NewFormatter(cat, nil).Error(err, q))
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return 124
	}
	return 1
}

func writeChart(ctx context.Context, path string, rep *pipeline.Report) error {
	png, err := chart.RenderTimelinePNG(ctx, rep.Timeline, chart.Options{
		Title: fmt.Sprintf("%s %s .. %s (%s)", rep.Query.Player, rep.Query.Start, rep.Query.End, rep.Query.TimeClass),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0o644)
}
