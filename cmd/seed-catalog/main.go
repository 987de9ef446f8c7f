package main

// Validate a question catalog and upload it to the configured store:
//   go run ./cmd/seed-catalog -file data/assessment_questions.json

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"

	"assessment-backend/internal/bootstrap"
	"assessment-backend/internal/catalog"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/storage/cache"
)

func main() {
	path := flag.String("file", "data/assessment_questions.json", "Catalog JSON file to upload")
	dryRun := flag.Bool("dry-run", false, "Validate only")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read catalog: %v", err)
	}
	cat, err := catalog.DecodeBytes(raw)
	if err != nil {
		log.Fatalf("invalid catalog: %v", err)
	}
	log.Printf("catalog ok: sections=%d questions=%d", len(cat), cat.QuestionCount())
	if *dryRun {
		return
	}

	store, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("build store: %v", err)
	}
	n, err := store.Put(ctx, cfg.CatalogKey, "application/json", bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("upload catalog: %v", err)
	}
	log.Printf("uploaded %d bytes to %s store key=%s", n, cfg.CatalogStore, cfg.CatalogKey)

	if client := cache.NewRedis(cfg); client != nil {
		defer client.Close()
		cached, ok := catalog.NewCachedSource(catalog.NewStoreSource(store, cfg.CatalogKey), client, cfg.CatalogCacheTTL).(*catalog.CachedSource)
		if ok {
			if err := cached.Invalidate(ctx); err != nil {
				log.Printf("cache invalidation failed: %v", err)
			}
		}
	}
}
