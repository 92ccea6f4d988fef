// Package main implements a swim stopwatch that serves its controls and recorded results as a web page.
//
// Usage:
//
//	stopwatch [-config path/to/config.json] [-log-level info] [-log-format text]
//
// If -config is not specified, the stopwatch looks for config.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/swim-stopwatch/internal/config"
	"github.com/oszuidwest/swim-stopwatch/internal/notify"
	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/stopwatch"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	handler, err := newLogHandler(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		slog.Error("invalid logging flags", "error", err)
		os.Exit(2)
	}
	slog.SetDefault(slog.New(handler))

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	defer stop()

	version := NewVersionChecker()
	go version.Run(ctx)

	notifier := notify.NewNotifier(cfg)
	srv := NewServer(cfg, stopwatch.New(), results.NewStore(), notifier, version)
	httpServer := srv.Start()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	pending := make(chan struct{})
	go func() {
		notifier.Wait()
		close(pending)
	}()
	select {
	case <-pending:
	case <-shutdownCtx.Done():
		slog.Warn("notifications still pending at shutdown")
	}

	slog.Info("shutdown complete")
}
