package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/segments/infra/config"
	"github.com/drakos74/segments/internal/dashboard"
	"github.com/drakos74/segments/internal/metrics"
	"github.com/drakos74/segments/internal/server"
	"github.com/drakos74/segments/internal/storage"
	"github.com/drakos74/segments/internal/storage/file/csv"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path of the json config")
	dataPath := flag.String("data", "", "customer file, overrides the config")
	port := flag.Int("port", 0, "http port, overrides the config")
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("could not load settings")
	}
	cfg, err := dashboard.ParseConfig(settings.Dashboard)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("could not load dashboard config")
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}
	if *port > 0 {
		settings.Port = *port
	}
	level, err := settings.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("could not set log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New(settings.Name)
	service, err := dashboard.New(cfg, storage.NewCache(csv.NewLoader()), m)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create dashboard")
	}

	// fail early if the data file cannot be read
	session, err := service.Open(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("data", cfg.DataPath).Msg("could not load customers")
	}
	service.Close(session.ID)

	srv := server.NewServer(settings.Name, settings.Port).
		Add(service.Routes()...).
		Mount("/metrics", m.Handler())
	if settings.Debug {
		srv.Debug()
	}
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Str("server", settings.Name).Msg("server stopped")
}
