package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/potgreen/nursery-backend/internal/platform/migrations"
	platformpostgres "github.com/potgreen/nursery-backend/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup, err := platformpostgres.ConnectOptional(ctx, os.Getenv("POSTGRES_DSN"), platformpostgres.Options{}, logger)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set; nothing to migrate")
	}

	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	logger.Info("order schema migrated")
}
