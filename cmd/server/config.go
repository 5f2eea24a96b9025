package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

const envPrefix = "TRANSFORM_"

// config é lida de variáveis TRANSFORM_* (ex: TRANSFORM_LISTEN_ADDR -> listen_addr).
type config struct {
	ListenAddr     string        `koanf:"listen_addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	LogLevel       string        `koanf:"log_level"`
	LogPretty      bool          `koanf:"log_pretty"`

	PlainTag      string `koanf:"plain_tag"`
	PlainMaxDepth int    `koanf:"plain_max_depth"`
	// listas separadas por vírgula (ex: "admin,owner")
	PlainExcludePrefixes string `koanf:"plain_exclude_prefixes"`
	PlainGroups          string `koanf:"plain_groups"`

	// vazio = sem filtro de versão
	PlainVersion string `koanf:"plain_version"`

	FailureLogRPS   float64 `koanf:"failure_log_rps"`
	FailureLogBurst int     `koanf:"failure_log_burst"`

	StatsRedisEnabled  bool          `koanf:"stats_redis_enabled"`
	StatsRedisAddr     string        `koanf:"stats_redis_addr"`
	StatsRedisPassword string        `koanf:"stats_redis_password"`
	StatsRedisDB       int           `koanf:"stats_redis_db"`
	StatsPrefix        string        `koanf:"stats_prefix"`
	StatsTTL           time.Duration `koanf:"stats_ttl"`
	StatsBucket        string        `koanf:"stats_bucket"`
	StatsTrackRoutes   bool          `koanf:"stats_track_routes"`
}

var configDefaults = map[string]any{
	"listen_addr":            ":8080",
	"request_timeout":        "30s",
	"log_level":              "info",
	"log_pretty":             false,
	"plain_tag":              "json",
	"plain_max_depth":        32,
	"plain_exclude_prefixes": "",
	"plain_groups":           "",
	"plain_version":          "",
	"failure_log_rps":        1.0,
	"failure_log_burst":      5,
	"stats_redis_enabled":    false,
	"stats_redis_addr":       "",
	"stats_redis_password":   "",
	"stats_redis_db":         0,
	"stats_prefix":           "transform:stats",
	"stats_ttl":              "24h",
	"stats_bucket":           "minute",
	"stats_track_routes":     true,
}

func readConfig() (config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return config{}, fmt.Errorf("load env: %w", err)
	}

	for key, v := range configDefaults {
		if !k.Exists(key) {
			if err := k.Set(key, v); err != nil {
				return config{}, fmt.Errorf("default %s: %w", key, err)
			}
		}
	}

	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("TRANSFORM_LISTEN_ADDR must not be empty")
	}
	if c.RequestTimeout < 0 {
		return errors.New("TRANSFORM_REQUEST_TIMEOUT must be >= 0")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("TRANSFORM_LOG_LEVEL: %w", err)
	}
	if c.PlainMaxDepth <= 0 {
		return errors.New("TRANSFORM_PLAIN_MAX_DEPTH must be > 0")
	}
	if _, _, err := c.plainVersion(); err != nil {
		return fmt.Errorf("TRANSFORM_PLAIN_VERSION: %w", err)
	}
	if c.FailureLogBurst < 0 {
		return errors.New("TRANSFORM_FAILURE_LOG_BURST must be >= 0")
	}
	if c.StatsRedisEnabled && strings.TrimSpace(c.StatsRedisAddr) == "" {
		return errors.New("TRANSFORM_STATS_REDIS_ADDR is required when TRANSFORM_STATS_REDIS_ENABLED=true")
	}
	switch strings.ToLower(strings.TrimSpace(c.StatsBucket)) {
	case "minute", "none":
	default:
		return fmt.Errorf("TRANSFORM_STATS_BUCKET must be minute or none, got %q", c.StatsBucket)
	}
	return nil
}

// plainVersion devolve (versão, definida, erro).
func (c config) plainVersion() (float64, bool, error) {
	v := strings.TrimSpace(c.PlainVersion)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

func (c config) plainGroups() []string          { return splitList(c.PlainGroups) }
func (c config) plainExcludePrefixes() []string { return splitList(c.PlainExcludePrefixes) }

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
