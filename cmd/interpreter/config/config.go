// Package config provides configuration parsing for the interpreter.
//
// Values come from command-line flags, falling back to environment
// variables and then to defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

type Config struct {
	Listen        string
	MetricsListen string
	ExtractorURL  string
	FetchTimeout  time.Duration
	LogFormat     string
	LogLevel      string
}

func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Listen, "listen", getEnv("INTERPRETER_LISTEN", ":50051"), "gRPC listen address")
	flag.StringVar(&cfg.MetricsListen, "metrics-listen", getEnv("INTERPRETER_METRICS_LISTEN", ":8082"), "HTTP listen address for /healthz and /metrics")
	flag.StringVar(&cfg.ExtractorURL, "extractor-url", getEnv("EXTRACTOR_URL", "http://localhost:8081"), "Extractor HTTP endpoint")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", getEnvDuration("FETCH_TIMEOUT", 5*time.Second), "Timeout for fetching results from the extractor")
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format (text|json)")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")

	flag.Parse()

	if cfg.ExtractorURL == "" {
		fmt.Fprintln(os.Stderr, "Error: -extractor-url is required")
		flag.Usage()
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
