package updater

import (
	"context"
	"time"

	"github.com/samvad-hq/overpass-harvester/pkg/publishers"
)

// Overpass is the pair of primitives the driver composes: a status probe
// and a single query attempt.
type Overpass interface {
	NeedSleep(ctx context.Context, base string) int
	Query(ctx context.Context, base, query string) (string, error)
}

// Endpoint yields the Overpass base URL.
type Endpoint interface {
	OverpassURI() string
}

// EventPublisher publishes dataset events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// JobStore remembers which jobs are still fresh.
type JobStore interface {
	Fresh(jobID string) (bool, error)
	MarkUpdated(jobID string, ttl time.Duration) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error
