package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/medminder/internal/buildinfo"
	"github.com/dmitrijs2005/medminder/internal/cli"
	"github.com/dmitrijs2005/medminder/internal/config"
	"github.com/dmitrijs2005/medminder/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	log := logging.NewDefault(cfg.LogLevel)

	app, err := cli.NewApp(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error(ctx, "exited with error", "error", err)
		os.Exit(1)
	}
}
