package main

import (
	"context"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/client"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("vogue-agent")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init agent error")
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("agent run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
