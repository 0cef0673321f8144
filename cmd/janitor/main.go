package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jose-valero/channel-sweeper-bot/internal/infra/storage"
)

// leases vencidos hace más de esto se consideran basura
const leaseGrace = time.Hour

func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	// mismas consultas que usa el bot, sobre el pool del lambda
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	leases, err := storage.NewLeaseRepo(db).PruneExpired(cctx, leaseGrace)
	if err != nil {
		return "", fmt.Errorf("prune lock_leases: %w", err)
	}

	// scans de guilds que ya no tienen config (el bot salió del servidor)
	scans, err := storage.NewScanRepo(db).DeleteOrphans(cctx)
	if err != nil {
		return "", fmt.Errorf("prune channel_scans: %w", err)
	}

	log.Printf("[janitor] lock_leases=%d channel_scans=%d", leases, scans)
	return fmt.Sprintf("ok leases=%d scans=%d", leases, scans), nil
}

func main() { lambda.Start(handler) }
