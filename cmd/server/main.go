// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/handler"
	"github.com/MKhiriev/go-identity-keeper/internal/limiter"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/notifier"
	"github.com/MKhiriev/go-identity-keeper/internal/server"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/workers"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("identity-server", "").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("identity-server", cfg.App.LogLevel)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	storages, err := store.NewStorages(startupCtx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	audit := workers.NewAuditDispatcher(storages.LoginAuditRepository, cfg.Workers, log)
	if err = audit.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("error registering audit metrics")
	}

	recoveryNotifier, err := notifier.New(cfg.Notifier, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating recovery notifier")
	}
	defer recoveryNotifier.Close()

	attemptLimiter, err := limiter.New(startupCtx, cfg.Limiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating attempt limiter")
	}
	defer attemptLimiter.Close()

	services, err := service.NewServices(storages, service.Dependencies{
		Audit:      audit,
		Notifier:   recoveryNotifier,
		Registerer: registry,
		BuildInfo:  buildInfo,
	}, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, handler.Dependencies{
		Limiter:  attemptLimiter,
		Gatherer: registry,
	}, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	background := workers.NewWorkers(audit)
	background.Run()

	// blocks until a stop signal
	srv.RunServer()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err = background.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Msg("background workers did not stop cleanly")
	}

	log.Info().Msg("identity server stopped")
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.Version)
	fmt.Printf("Build date: %s\n", info.Date)
	fmt.Printf("Build commit: %s\n", info.Commit)
}
