package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/importer"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/repository"

	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "validate the file without writing the bank")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-dry-run] <file.xlsx|.csv|.tsv|.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	f, err := os.Open(path)
	if err != nil {
		logger.Get().Fatal("Failed to open import file", zap.String("file", path), zap.Error(err))
	}
	defer f.Close()

	res, err := importer.Import(path, f)
	if err != nil {
		logger.Get().Fatal("Import rejected", zap.String("file", path), zap.Error(err))
	}
	logger.Get().Info("Import file parsed",
		zap.String("file", path),
		zap.Int("rows", res.Rows),
		zap.Int("records", len(res.Records)),
		zap.Int("dropped", res.Dropped),
	)

	if *dryRun {
		fmt.Printf("%d records ready (%d rows, %d dropped)\n", len(res.Records), res.Rows, res.Dropped)
		return
	}
	if cfg.Storage.BankBackend != config.BackendPostgres {
		logger.Get().Fatal("The import command needs storage.bank.backend=postgres",
			zap.String("backend", cfg.Storage.BankBackend))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewSQLXPostgresDB(ctx, cfg.DB)
	if err != nil {
		logger.Get().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Get().Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := repository.NewBankDatabaseAdapter(db, repository.NewTransactionManagerAdapter(db))
	if err := repo.Replace(ctx, res.Records); err != nil {
		logger.Get().Fatal("Failed to store question bank", zap.Error(err))
	}

	logger.Get().Info("Question bank replaced", zap.Int("records", len(res.Records)))
	fmt.Printf("imported %d records\n", len(res.Records))
}
