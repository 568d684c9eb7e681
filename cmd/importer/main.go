package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"favorites-catalog/internal/config"
	"favorites-catalog/internal/db"
	"favorites-catalog/internal/importer"
	customerrepo "favorites-catalog/internal/repository/customer"
	customersvc "favorites-catalog/internal/service/customer"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a customer CSV with name and email columns")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	customers := customersvc.New(customerrepo.NewPostgres(pool, logger), cfg.DefaultPageSize)
	imp := importer.NewCSVImporter(f, customers, logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d customers: %v", res.Imported, err)
	}

	fmt.Printf("Imported %d customers (%d skipped) in %s\n", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}
