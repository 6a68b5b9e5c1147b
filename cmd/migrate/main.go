package main

import (
	"flag"
	"os"

	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/Rrens/vibe-app-store/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Info().Msgf("Migrating database at %s:%d from %s", cfg.Database.Host, cfg.Database.Port, cfg.Database.MigrationsPath)

	if *down {
		if err := postgres.RollbackMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		log.Info().Msg("Rolled back one migration")
		return
	}

	if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
