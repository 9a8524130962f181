package main

import (
	"OCRVisionPro/internal/ai"
	"OCRVisionPro/internal/app/sessions"
	"OCRVisionPro/internal/config"
	"OCRVisionPro/internal/service/vision"
	"OCRVisionPro/internal/transport/web"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	var logger *zap.Logger
	var err error
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	if cfg.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"StubClient", cfg.UseStubClient,
		"Model", cfg.OpenRouter.Model,
		"BaseURL", cfg.OpenRouter.BaseURL,
	)

	var client vision.ModelClient
	if cfg.UseStubClient {
		client = ai.NewStubClient()
	} else {
		client = ai.NewVisionClient(cfg, sugar)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sm := sessions.New(cfg.ChatGreeting, sugar)
	go sm.Run(ctx, cfg.Sessions.SweepInterval, cfg.Sessions.TTL)

	srv := web.NewServer(cfg.Server, vision.NewService(client, sugar), sm, sugar)
	if err := srv.Start(ctx); err != nil {
		sugar.Errorw("failed to start HTTP server", "error", err)
		return
	}
	sugar.Infow("Open in browser", "url", "http://"+srv.Addr()+"/")

	<-ctx.Done()
	if err := srv.Stop(context.Background()); err != nil {
		sugar.Warnw("HTTP server stop error", "error", err)
	}
	sugar.Infow("server stopped")
}
