package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/potgreen/nursery-backend/internal/app/seed"
	"github.com/potgreen/nursery-backend/internal/domains/access"
	orderpostgres "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/potgreen/nursery-backend/internal/platform/postgres"
)

func main() {
	count := flag.Int("orders", 40, "number of sample orders to create")
	tokenTTL := flag.Duration("token-ttl", 12*time.Hour, "lifetime of the printed admin token")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	db, cleanup, err := platformpostgres.ConnectOptional(ctx, os.Getenv("POSTGRES_DSN"), platformpostgres.Options{}, logger)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set; use SEED_ORDERS=1 to seed the in-memory store instead")
	}

	created, err := seed.Orders(ctx, orderpostgres.NewRepository(db), *count, time.Now())
	if err != nil {
		log.Fatalf("failed to seed orders: %v", err)
	}
	logger.Info("sample orders created", slog.Int("count", len(created)))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return
	}
	token, err := access.Signer{
		Secret:   []byte(secret),
		Issuer:   os.Getenv("JWT_ISSUER"),
		Audience: os.Getenv("JWT_AUDIENCE"),
	}.Issue("seed-admin", "admin@potgreen.local", "admin", *tokenTTL)
	if err != nil {
		log.Fatalf("failed to issue admin token: %v", err)
	}
	fmt.Println(token)
}
