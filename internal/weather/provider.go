package weather

import (
	"context"
	"time"
)

// Provider abstracts the remote weather source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates) (Snapshot, error)
}

// Locator supplies the coordinates to fetch for. It is consulted on every
// attempt so that a corrected location source is picked up by the next retry.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Store holds the current snapshot. Only the Service writes to it.
// Generation counts saves, so readers can tell a new snapshot arrived.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest() (Snapshot, error)
	Generation() uint64
}

// MetricsRecorder receives fetch telemetry. A nil recorder is allowed.
type MetricsRecorder interface {
	ObserveAttempt(provider string, err error, elapsed time.Duration)
	ObserveCycle(state CycleState)
	SetLastSuccess(t time.Time)
}
