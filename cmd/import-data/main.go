package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"go.uber.org/zap"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/app"
	"github.com/eventstock/eventstock/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	dir := flag.String("dir", "seed", "directory holding <collection>.json files")
	imageDir := flag.String("images", "", "directory of product images to upload to object storage")
	overwrite := flag.Bool("overwrite", false, "replace collections and images that already exist")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.Setup(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}
	defer backends.Close()

	im := &importer{
		collections: backends.Collections,
		store:       backends.Store,
		logger:      logger,
		overwrite:   *overwrite,
	}

	sum, err := im.importCollections(ctx, *dir)
	if err != nil {
		logger.Error("Import failed", zap.Error(err))
		return
	}

	if *imageDir != "" {
		if backends.Objects == nil {
			logger.Warn("minio is disabled, images not uploaded", zap.String("dir", *imageDir))
		} else {
			n, err := im.uploadImages(ctx, backends.Objects, *imageDir)
			if err != nil {
				logger.Error("Image upload failed", zap.Error(err))
				return
			}
			sum.Images = n
		}
	}

	names := make([]string, 0, len(sum.Imported))
	for name := range sum.Imported {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("Imported %s: %d records\n", name, sum.Imported[name])
	}
	for _, name := range sum.Skipped {
		fmt.Printf("Skipped %s: already stored (use -overwrite to replace)\n", name)
	}
	if sum.Images > 0 {
		fmt.Printf("Uploaded %d images\n", sum.Images)
	}
}
