package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transform-gateway/middleware/transform/domain"
	"transform-gateway/middleware/transform/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// .env é opcional; variáveis já exportadas têm precedência
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		stdlog.Fatalf("config error: %v", err)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)

	memStats := infra.NewMemoryStatsStore()
	stats := infra.MultiStatsStore{
		memStats,
		infra.NewLogStatsStore(logger, infra.WithLogRate(cfg.FailureLogRPS, cfg.FailureLogBurst)),
	}

	if cfg.StatsRedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.StatsRedisAddr).Msg("redis stats ping error")
		}

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
			infra.WithStatsTrackRoutes(cfg.StatsTrackRoutes),
		))
	}

	h := newRouter(routerDeps{
		log:       logger,
		converter: newConverter(cfg),
		stats:     stats,
		memStats:  memStats,
		catalog:   newCatalog(),
		timeout:   cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
		ErrorLog:          stdlog.New(logger.Level(zerolog.WarnLevel), "", 0),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("plain_tag", cfg.PlainTag).
		Int("plain_max_depth", cfg.PlainMaxDepth).
		Strs("plain_groups", cfg.plainGroups()).
		Bool("redis_stats", cfg.StatsRedisEnabled).
		Msg("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newConverter(cfg config) domain.Converter {
	opts := []infra.PlainOption{
		infra.WithTagName(cfg.PlainTag),
		infra.WithMaxDepth(cfg.PlainMaxDepth),
		infra.WithExcludePrefixes(cfg.plainExcludePrefixes()...),
		infra.WithGroups(cfg.plainGroups()...),
	}
	if v, ok, _ := cfg.plainVersion(); ok {
		opts = append(opts, infra.WithVersion(v))
	}
	return infra.NewPlainConverter(opts...)
}
