// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/sevens/internal/cache"
	"github.com/jason-s-yu/sevens/internal/config"
	"github.com/jason-s-yu/sevens/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

const (
	// recorderBuffer is how many action records may wait for Redis before new ones are dropped.
	recorderBuffer = 1024

	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gs := handlers.NewGameServer(logger)
	gs.OriginPatterns = handlers.OriginPatterns(cfg.AllowedOrigins)

	// The recorder outlives the signal so events from requests still draining are published.
	recCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	recorderDone := make(chan struct{})
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		rec := cache.NewRecorder(rdb, cfg.HistorianQueue, recorderBuffer, logger)
		gs.Registry.AddListener(rec)
		go func() {
			defer close(recorderDone)
			rec.Run(recCtx)
		}()
		logger.Infof("action log enabled, queue %s on %s", cfg.HistorianQueue, cfg.RedisAddr)
	} else {
		close(recorderDone)
		logger.Info("REDIS_ADDR not set, action log disabled")
	}

	server := &http.Server{
		Handler:           handlers.NewRouter(gs, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	l, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s (%s)", l.Addr(), cfg.Env)

	serve(ctx, server, l, logger, shutdownTimeout)
	stopRecorder()
	<-recorderDone
}

// serve runs server on l until ctx ends or serving fails, then shuts it down gracefully.
// It returns only after in-flight requests have finished or timeout has passed.
func serve(ctx context.Context, server *http.Server, l net.Listener, logger *logrus.Logger, timeout time.Duration) {
	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("failed to serve: %v", err)
		}
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}
