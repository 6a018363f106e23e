package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	// Amounts go over the wire as JSON numbers, matching what the dashboard
	// frontend parses.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := loadConfig()
	log := newLogger(cfg)

	db, err := openDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer closeDB(db)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := autoMigrate(db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		if err := migrateLegacyPasswords(db, log); err != nil {
			log.WithError(err).Fatal("password migration failed")
		}
		if err := seedDB(db, log); err != nil {
			log.WithError(err).Fatal("seed failed")
		}
		log.Info("migration complete")
		return
	}

	if cfg.AutoMigrate {
		if err := autoMigrate(db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		if err := migrateLegacyPasswords(db, log); err != nil {
			log.WithError(err).Fatal("password migration failed")
		}
	}
	if cfg.SeedOnStart {
		if err := seedDB(db, log); err != nil {
			log.WithError(err).Fatal("seed failed")
		}
	}

	srv := newServer(cfg, db, log)
	log.WithField("port", cfg.Port).Info("starting collection reporting API")
	if err := srv.router().Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
