package db

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// InitPostgres connects the chart store. With an empty DSN the Pool stays
// nil and the service falls back to in-memory charts.
func InitPostgres(ctx context.Context, dsn string) {
	if dsn == "" {
		log.Println("no Postgres DSN configured, chart store disabled")
		return
	}
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("invalid Postgres DSN: %v", err)
	}
	// calendar scoring fans out across workers; keep spare connections
	// for concurrent upserts
	pcfg.MaxConns = 8
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping Postgres: %v", err)
	}
	Pool = pool
	log.Println("Connected to Postgres chart store")
}
