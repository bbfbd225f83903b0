package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"storyloom/internal/config"
	"storyloom/internal/daemon"
	"storyloom/internal/jobs"
	"storyloom/internal/logging"
	"storyloom/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	cfg, resolvedPath, exists, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	sessionID := uuid.NewString()
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	if exists {
		logger.Info("configuration loaded", logging.String("path", resolvedPath))
	} else {
		logger.Info("configuration file not found, using defaults",
			logging.String("path", resolvedPath))
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}

	runner := jobs.NewRunner(cfg, st, logger)
	d, err := daemon.New(cfg, st, runner, logger)
	if err != nil {
		_ = st.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		_ = d.Close()
		return err
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return d.Close()
}
