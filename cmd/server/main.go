package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feteer-counter/api/internal/config"
	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/router"
	"github.com/feteer-counter/api/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}

	// Schema errors at startup are fatal: the counter cannot serve
	// without its tables.
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	queries := database.New(pool)
	seeded, err := queries.SeedDefaultMenu(ctx)
	if err != nil {
		log.Fatalf("Menu seeding failed: %v", err)
	}
	if seeded > 0 {
		log.Printf("Seeded default menu catalog (%d items)", seeded)
	}

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
