package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/chess-archive-insight/internal/bot"
	appcfg "github.com/park285/chess-archive-insight/internal/config"
	"github.com/park285/chess-archive-insight/internal/insightbuilder"
	"github.com/park285/chess-archive-insight/internal/irisfast"
	"github.com/park285/chess-archive-insight/internal/msgcat"
	"github.com/park285/chess-archive-insight/internal/obslog"
	"github.com/park285/chess-archive-insight/internal/presenter"
	"go.uber.org/zap"
)

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv("bot"); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := insightbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	defer deps.Close()

	catalog, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		logger.Fatal("message catalog", zap.Error(err))
	}

	headers := irisfast.HeaderSet(cfg.XUserID, cfg.XUserEmail, cfg.XSessionID)
	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers), irisfast.WithLogger(logger))
	pctx, pcancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.Ping(pctx); err != nil {
		logger.Warn("iris_unreachable", zap.Error(err))
	}
	pcancel()

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, logger)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})

	egress := irisfast.NewEgress(cfg.BotTransport, false, client, ws, logger)
	formatter := presenter.NewFormatter(catalog, prefixProvider{prefix: cfg.BotPrefix})
	b := bot.New(bot.Config{
		Prefix:           cfg.BotPrefix,
		DefaultTimeClass: cfg.DefaultTimeClass,
		RoomAllowed:      cfg.RoomAllowed,
	}, deps.Service, formatter, egress, logger)
	ws.OnMessage(b.OnMessage)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		logger.Fatal("ws connect error", zap.Error(err))
	}
	logger.Info("bot_started", zap.String("prefix", cfg.BotPrefix), zap.String("transport", cfg.BotTransport))

	<-ctx.Done()

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = ws.Close(sctx)
}
