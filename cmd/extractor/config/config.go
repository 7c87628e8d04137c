// Package config implements the fdynamics extractor config.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HatiCode/fdynamics/pkg/names"
	"github.com/HatiCode/fdynamics/pkg/split"
)

// Config holds all extractor configuration.
type Config struct {
	Listen string
	Source string

	// Prometheus
	PromURL   string
	PromQuery string
	IDLabel   string
	Kind      string
	Step      time.Duration

	// Feature dynamics
	WindowLengths   []int
	FTSPreset       string
	FDPreset        string
	EngineerWithin  bool
	EngineerBetween bool
	Partitions      int

	// Timing
	Interval time.Duration
	Lookback time.Duration

	// Storage
	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	LogFormat string
	LogLevel  string
}

// ParseFlags parses command-line flags and environment variables into a Config.
// Exits with status 1 if required flags (source, prom-query) are missing or
// the window lengths are invalid.
func ParseFlags() *Config {
	cfg := &Config{}
	var windows string

	// Server
	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8081"), "HTTP listen address")
	flag.StringVar(&cfg.Source, "source", getEnv("SOURCE", ""), "Name the results are stored under (required)")

	// Prometheus
	flag.StringVar(&cfg.PromURL, "prom-url", getEnv("PROM_URL", "http://localhost:9090"), "Prometheus URL")
	flag.StringVar(&cfg.PromQuery, "prom-query", getEnv("PROM_QUERY", ""), "Prometheus query (required)")
	flag.StringVar(&cfg.IDLabel, "id-label", getEnv("ID_LABEL", ""), "Series label used as the time series id; empty sums all series")
	flag.StringVar(&cfg.Kind, "kind", getEnv("KIND", "value"), "Kind name for the collected series")
	flag.DurationVar(&cfg.Step, "step", getEnvDuration("STEP", 1*time.Minute), "Query resolution")

	// Feature dynamics
	flag.StringVar(&windows, "window-length", getEnv("WINDOW_LENGTH", "5"), "Samples per window; a comma-separated list runs one pass per length")
	flag.StringVar(&cfg.FTSPreset, "fts-params", getEnv("FTS_PARAMS", "minimal"), "Feature time series calculators: minimal or comprehensive")
	flag.StringVar(&cfg.FDPreset, "fd-params", getEnv("FD_PARAMS", "minimal"), "Feature dynamics calculators: minimal or comprehensive")
	flag.BoolVar(&cfg.EngineerWithin, "engineer-within", getEnvBool("ENGINEER_WITHIN", false), "Add first differences of every input kind")
	flag.BoolVar(&cfg.EngineerBetween, "engineer-between", getEnvBool("ENGINEER_BETWEEN", false), "Add pairwise differences between input kinds")
	flag.IntVar(&cfg.Partitions, "partitions", getEnvInt("PARTITIONS", 0), "Partition the dataset by id into this many partitions; 0 keeps it resident")

	// Timing
	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", 1*time.Minute), "Extraction interval")
	flag.DurationVar(&cfg.Lookback, "lookback", getEnvDuration("LOOKBACK", 1*time.Hour), "Historical window to collect")

	// Storage
	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Storage backend: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 30*time.Minute), "Redis result TTL")

	// Logging
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	if cfg.Source == "" {
		fmt.Fprintln(os.Stderr, "Error: --source is required")
		os.Exit(1)
	}
	if cfg.PromQuery == "" {
		fmt.Fprintln(os.Stderr, "Error: --prom-query is required")
		os.Exit(1)
	}
	if err := names.ValidateKind(cfg.Kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: --kind: %v\n", err)
		os.Exit(1)
	}
	if cfg.Partitions < 0 {
		fmt.Fprintln(os.Stderr, "Error: --partitions must not be negative")
		os.Exit(1)
	}
	wl, err := ParseWindowLengths(windows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: --window-length: %v\n", err)
		os.Exit(1)
	}
	cfg.WindowLengths = wl

	return cfg
}

// ParseWindowLengths parses a comma-separated list of window lengths.
// Duplicates are dropped.
func ParseWindowLengths(s string) ([]int, error) {
	var out []int
	seen := make(map[int]bool)
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := split.ParseSplitSize(field)
		if err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no window length given", split.ErrInvalidSplitSize)
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
