// cmd/historian/main.go is an asynchronous historian that pops session action records from a
// Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/sevens/internal/cache"
	"github.com/jason-s-yu/sevens/internal/config"
	"github.com/jason-s-yu/sevens/internal/database"
	"github.com/jason-s-yu/sevens/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	archive := database.NewArchive(pool)
	if err := archive.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	historian.NewService(rdb, archive, cfg, logger).Run(ctx)
}
