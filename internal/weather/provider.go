package weather

import (
	"context"
	"time"
)

// Resolver turns a place name into coordinates and a timezone.
type Resolver interface {
	Resolve(ctx context.Context, q LocationQuery) (Place, error)
}

// Fetcher retrieves the hourly and daily series for a resolved place.
type Fetcher interface {
	Fetch(ctx context.Context, place Place, window FetchWindow) (Observations, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveOverview(q LocationQuery, ov Overview)
	GetLatest(q LocationQuery) (Overview, error)
	GetRange(q LocationQuery, from, to time.Time) ([]Overview, error)
}

// Archiver keeps daily summaries beyond the in-memory retention window.
type Archiver interface {
	SaveOverview(ctx context.Context, ov Overview) error
}
