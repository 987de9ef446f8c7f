package main

// Run database migrations:
//   go run ./cmd/migrate
// Print the applied version only:
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"log"
	"os"

	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/storage/db"
)

func main() {
	statusOnly := flag.Bool("status", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromConfig(db.DefaultMigrateOptions(), cfg)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if !*statusOnly {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			log.Printf("failed to run migrations: %v", err)
			os.Exit(1)
		}
	}

	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		log.Printf("failed to read schema version: %v", err)
		os.Exit(1)
	}
	log.Printf("schema version %d", version)
}
