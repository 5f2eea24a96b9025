package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"transform-gateway/middleware/transform/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava contadores por estágio em hashes do Redis:
//
//	<prefix>:total                 -> {converted, handler_error, convert_error}
//	<prefix>:minute:<YYYYMMDDhhmm> -> idem, com TTL
//	<prefix>:route                 -> {"<route>:<stage>": n}
//	<prefix>:latency               -> {"<route>:ms_sum": n, "<route>:count": n}
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackRoutes bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackRoutes(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackRoutes = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:         rdb,
		prefix:      "transform:stats",
		ttl:         24 * time.Hour,
		bucket:      "minute",
		trackRoutes: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := ev.Stage.String()

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == "minute" {
		bucketKey := s.minuteKey(at)
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	route := strings.TrimSpace(ev.Route)
	if s.trackRoutes && route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
		if ev.Duration > 0 {
			pipe.HIncrBy(ctx, s.prefix+":latency", route+":ms_sum", ev.Duration.Milliseconds())
			pipe.HIncrBy(ctx, s.prefix+":latency", route+":count", 1)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}
