package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage remembers when each job's dataset was last refreshed.

// Store tracks job refresh deadlines.
type Store interface {
	Close() error
	Fresh(jobID string) (bool, error)
	MarkUpdated(jobID string, ttl time.Duration) error
}

// Options controls maintenance characteristics for concrete store implementations.
type Options struct {
	CleanupInterval time.Duration
}

const defaultCleanupInterval = 12 * time.Hour

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) Fresh(string) (bool, error)              { return false, nil }
func (noopStore) MarkUpdated(string, time.Duration) error { return nil }
