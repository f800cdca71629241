package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/samber/do"

	"time-tracker/internal/bootstrap"
	"time-tracker/internal/config"
	"time-tracker/internal/handler"
	"time-tracker/internal/logger"
	"time-tracker/internal/router"
	"time-tracker/internal/sse"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	gin.DefaultWriter = logger.Init(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	inj := bootstrap.BuildContainer(cfg)
	defer func() {
		if err := inj.Shutdown(); err != nil {
			slog.Warn("shutdown", "err", err)
		}
	}()

	th, err := do.Invoke[*handler.TimeHandler](inj)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	engine := router.NewRouter(router.RouterDeps{
		Config:      cfg,
		TimeHandler: th,
		AIHandler:   do.MustInvoke[*handler.AIHandler](inj),
		Events:      do.MustInvoke[*sse.Broker](inj),
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: engine}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "db", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// close streams first so Shutdown does not wait on them
	do.MustInvoke[*sse.Broker](inj).Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	slog.Info("server stopped")
}
