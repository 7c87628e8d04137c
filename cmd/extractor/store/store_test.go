package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
	"github.com/HatiCode/fdynamics/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{Storage: "memory"}, discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := s.(*storage.MemoryStore); !ok {
		t.Errorf("Open() = %T, want *storage.MemoryStore", s)
	}
}

func TestOpen_Invalid(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{Storage: "etcd"}, discard()); err == nil {
		t.Error("Open() with unknown backend should fail")
	}
}

func TestOpen_RedisUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	cfg := &config.Config{Storage: "redis", RedisAddr: "127.0.0.1:1"}
	if _, err := Open(context.Background(), cfg, discard()); err == nil {
		t.Error("Open() against an unreachable redis should fail")
	}
}
