package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{"cmd"}

	cfg := ParseFlags()

	if cfg.Listen != ":50051" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":50051")
	}
	if cfg.MetricsListen != ":8082" {
		t.Errorf("MetricsListen = %q, want %q", cfg.MetricsListen, ":8082")
	}
	if cfg.ExtractorURL != "http://localhost:8081" {
		t.Errorf("ExtractorURL = %q, want %q", cfg.ExtractorURL, "http://localhost:8081")
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestConfig_CustomValues(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{
		"cmd",
		"-listen=:9090",
		"-metrics-listen=:9091",
		"-extractor-url=http://extractor:8081",
		"-fetch-timeout=2s",
		"-log-format=json",
		"-log-level=debug",
	}

	cfg := ParseFlags()

	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":9090")
	}
	if cfg.MetricsListen != ":9091" {
		t.Errorf("MetricsListen = %q, want %q", cfg.MetricsListen, ":9091")
	}
	if cfg.ExtractorURL != "http://extractor:8081" {
		t.Errorf("ExtractorURL = %q, want %q", cfg.ExtractorURL, "http://extractor:8081")
	}
	if cfg.FetchTimeout != 2*time.Second {
		t.Errorf("FetchTimeout = %v, want 2s", cfg.FetchTimeout)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestConfig_EnvFallback(t *testing.T) {
	t.Setenv("EXTRACTOR_URL", "http://from-env:8081")
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{"cmd"}

	cfg := ParseFlags()

	if cfg.ExtractorURL != "http://from-env:8081" {
		t.Errorf("ExtractorURL = %q, want %q", cfg.ExtractorURL, "http://from-env:8081")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DURATION",
			defaultValue: 1 * time.Minute,
			envValue:     "5m",
			want:         5 * time.Minute,
		},
		{
			name:         "invalid duration",
			key:          "TEST_DURATION",
			defaultValue: 30 * time.Second,
			envValue:     "not-a-duration",
			want:         30 * time.Second,
		},
		{
			name:         "not set",
			key:          "NONEXISTENT_DURATION",
			defaultValue: 10 * time.Second,
			envValue:     "",
			want:         10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
