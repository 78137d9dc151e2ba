package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"orion-console/internal/assistant"
	"orion-console/internal/config"
	"orion-console/internal/logging"
	"orion-console/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseDaemon()
	if err != nil {
		return err
	}

	var log *logrus.Logger
	if cfg.LogPath != "" {
		fileLog, closer, err := logging.NewFileLogger(cfg.LogPath)
		if err != nil {
			return err
		}
		defer closer.Close()
		log = fileLog
	} else {
		log = logging.NewStderrLogger()
	}

	var uplink assistant.Uplink
	if cfg.OpenAIKey != "" {
		u, err := assistant.NewOpenAIUplink(cfg.OpenAIBase, cfg.OpenAIKey, cfg.Model)
		if err != nil {
			return err
		}
		uplink = u
		log.WithField("model", cfg.Model).Info("model uplink configured")
	} else {
		log.Info("no API key configured, running offline protocols only")
	}

	srv := service.NewServer(assistant.New(uplink, log), log)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Routes(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("addr", cfg.Addr).Info("assistant service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server failed")
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
