package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/efreitasn/marketcore/internal/config"
	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/feed"
	"github.com/efreitasn/marketcore/internal/handler"
	"github.com/efreitasn/marketcore/internal/service"
	"github.com/efreitasn/marketcore/internal/store"
	"github.com/efreitasn/marketcore/internal/ticker"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Stores and matching core.
	bids := store.NewBidStore()
	offers := store.NewOfferStore()
	trades := store.NewTradeLog()
	market := engine.New(bids, offers, trades)

	// Trade feed: Kafka when brokers are configured, otherwise discard.
	var pub feed.Publisher = feed.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := feed.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPub.Close()
		pub = kafkaPub
		logger.Info("trade feed enabled", slog.String("topic", cfg.KafkaTopic))
	}

	// Quote ticker: optional, only when Redis is configured.
	var tick *ticker.Ticker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		tick = ticker.New(rdb, logger)
		logger.Info("quote ticker enabled", slog.String("addr", cfg.RedisAddr))
	}

	marketSvc, err := service.NewMarketService(market, pub, tick, cfg.QuoteCacheTTL, logger)
	if err != nil {
		logger.Error("failed to create market service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Router.
	router := handler.NewRouter(marketSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
