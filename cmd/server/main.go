package main

import (
	"context"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/audit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	handler "github.com/BisonByte/vogue.bisonbyte.io/internal/handler/http"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/server"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/service"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("vogue-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log)
	notifier := audit.NewMailNotifier(cfg.Mail, log)
	services := service.NewServices(ctx, storages, *cfg, notifier, log)

	handlers := handler.NewHandler(services, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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
