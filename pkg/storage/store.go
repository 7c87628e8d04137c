// Package storage keeps the latest feature dynamics result per source.
package storage

import (
	"context"
	"time"

	"github.com/HatiCode/fdynamics/pkg/extraction"
)

// Result is one computed feature table.
type Result struct {
	Source        string            `json:"source"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	WindowLengths []int             `json:"windowLengths"`
	Features      *extraction.Table `json:"features"`
}

// Store persists results. Implementations must be safe for concurrent use.
type Store interface {
	Put(ctx context.Context, result Result) error
	GetLatest(ctx context.Context, source string) (Result, bool, error)
}
