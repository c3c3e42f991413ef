package app

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/trawers/trawers-api/api"
	"github.com/trawers/trawers-api/config"
	"github.com/trawers/trawers-api/database"
	"github.com/trawers/trawers-api/router"
	"github.com/trawers/trawers-api/services/cron"
)

// SetupAndRunServer loads configuration, connects the database, starts
// background jobs and serves the API until shutdown
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Get()
	if err != nil {
		// Missing secrets stop the boot; there is no safe default
		// for a signing key or a webhook secret
		return err
	}

	store, err := database.StartGORM(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed (is Postgres running?): %w", err)
	}

	if err := store.Init(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get GORM DB instance")
	}

	if err := database.NewSeeder(db, cfg).SeedAll(); err != nil {
		return fmt.Errorf("database seeding failed: %w", err)
	}

	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(db)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", cfg.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store, cfg)

	return server.Run()
}
