package ports

import (
	"context"

	"github.com/lootaura/lootaura/internal/core/domain"
)

// SearchProvider returns sales for a bounding box and filter set. The
// caller stamps the sequence value onto the resulting batch; the provider
// itself knows nothing about sequencing.
type SearchProvider interface {
	// ListSales is the wide, filtered-list lane query.
	ListSales(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error)
	// MarkersInBounds is the map-markers lane query: thin projections only.
	MarkersInBounds(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error)
}

// Geocoder resolves a ZIP code to a coordinate. A nil result with nil
// error means the ZIP is unknown.
type Geocoder interface {
	GeocodeZip(ctx context.Context, zip string) (*domain.LatLng, error)
}

// IPLocator resolves a client IP address to an approximate coordinate.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (*domain.LatLng, error)
}

// SessionStorage is session-scoped key/value storage. Implementations are
// best-effort: callers must treat every failure as a cache miss.
type SessionStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// EventPublisher fans admitted lane commits out to realtime listeners.
type EventPublisher interface {
	PublishCommit(ctx context.Context, sessionID string, lane domain.Lane, commit domain.Commit) error
}
