package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/internal/client"
	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/tui"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, args, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		logger.NewClientLogger("identity-client", "").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("identity-client", cfg.LogLevel)
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	if len(args) > 0 && args[0] == "build-info" {
		printBuildInfo(buildInfo)
		return
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// no command or "tui" starts the interactive session
	if len(args) == 0 || args[0] == "tui" {
		if err = tui.New(serverAdapter, buildInfo, log).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("terminal ui error")
		}
		return
	}

	var app client.Client = client.NewApp(serverAdapter, os.Stdout, log)
	if err = app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.Version)
	fmt.Printf("Build date: %s\n", info.Date)
	fmt.Printf("Build commit: %s\n", info.Commit)
}
