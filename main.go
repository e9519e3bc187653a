package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calman/src-server/cli"
	"calman/src-server/route"
	"calman/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// raised or lowered by LOG_LEVEL once the config is read
var logLevel = new(slog.LevelVar)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	logLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	if err := cli.NewRootCmd(serve).Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command) error {
	cfg, err := utils.NewConfig()
	if err != nil {
		slog.Error("can't read config", "error", err)
		return err
	}
	logLevel.Set(cfg.GetLogLevel())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	as, err := utils.NewAppState(cfg, reg)
	if err != nil {
		slog.Error("can't create app state", "error", err)
		return err
	}

	// http server
	server := &http.Server{
		Addr:              ":" + cfg.GetPort(),
		Handler:           route.New(as, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()
	go func() {
		<-as.CreateGracefulShutdownChan()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("can't shut down HTTP server cleanly", "error", err)
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", cfg.GetPort(), "calendar", cfg.GetDefaultCalendar(), "timezone", cfg.GetTimezone())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	as.GracefulShutdown()

	slog.Info("Gracefully shutting down...")
	return nil
}
