// Command load_catalog seeds ingredients and tags from the CSV files listed
// in a manifest. Running it again only adds rows that are missing.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/logger"
)

func main() {
	manifestPath := flag.String("manifest", "data/catalog.yaml", "path to the catalog manifest")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logr.Sync()

	db, err := database.NewGorm(cfg, logr)
	if err != nil {
		logr.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, logr); err != nil {
		logr.Fatalw("failed to migrate database", "error", err)
	}

	manifest, err := loader.ReadManifest(*manifestPath)
	if err != nil {
		logr.Fatalw("failed to read manifest", "error", err)
	}

	results, err := loader.New(db, logr).Run(context.Background(), manifest, filepath.Dir(*manifestPath))
	if err != nil {
		logr.Fatalw("failed to load catalog", "error", err)
	}

	var inserted int64
	for _, r := range results {
		inserted += r.Inserted
	}
	logr.Infow("catalog loaded", "sources", len(results), "inserted", inserted)
}
