package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/ports"
)

// ViewportStore owns the single mutable viewport for one browsing
// session. Nothing outside explicit Set calls may mutate an initialized
// store: background location inference must never overwrite a viewport
// the user arrived at by panning or zooming.
//
// The in-memory value is authoritative; session storage is a best-effort
// mirror consulted only when memory is empty (fresh process, new node).
type ViewportStore struct {
	mu      sync.Mutex
	current *domain.Viewport
	filters domain.SaleFilters

	storage ports.SessionStorage
	key     string
	now     func() time.Time
	log     *slog.Logger
}

// NewViewportStore creates an uninitialized store persisting under
// "viewport:<sessionID>". storage may be nil (memory only).
func NewViewportStore(sessionID string, storage ports.SessionStorage, log *slog.Logger) *ViewportStore {
	if log == nil {
		log = slog.Default()
	}
	return &ViewportStore{
		storage: storage,
		key:     "viewport:" + sessionID,
		now:     time.Now,
		log:     log,
	}
}

// Set validates v and, on success, replaces the current viewport and
// persists it. Invalid input leaves the store in its prior state and
// returns the validation error; there is no partial update.
func (s *ViewportStore) Set(ctx context.Context, v domain.Viewport, filters domain.SaleFilters) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	vv := v
	s.current = &vv
	s.filters = filters.Normalize()
	s.mu.Unlock()

	s.persist(ctx, vv, filters)
	return nil
}

// Get returns the current viewport. When memory is empty it tries to
// hydrate from session storage; corrupt, expired, or version-mismatched
// records are treated as absent and removed.
func (s *ViewportStore) Get(ctx context.Context) (domain.Viewport, bool) {
	s.mu.Lock()
	if s.current != nil {
		v := *s.current
		s.mu.Unlock()
		return v, true
	}
	s.mu.Unlock()

	rec, ok := s.hydrate(ctx)
	if !ok {
		return domain.Viewport{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Set wins over the hydrated value.
	if s.current == nil {
		v := rec.Viewport
		s.current = &v
		s.filters = rec.Filters
	}
	return *s.current, true
}

// Has reports whether a viewport is available in memory or storage.
func (s *ViewportStore) Has(ctx context.Context) bool {
	_, ok := s.Get(ctx)
	return ok
}

// Filters returns the filters persisted alongside the viewport.
func (s *ViewportStore) Filters() domain.SaleFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Clear returns the store to uninitialized and removes the persisted
// record.
func (s *ViewportStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.filters = domain.SaleFilters{}
	s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.Remove(ctx, s.key); err != nil {
			s.log.Debug("viewport record remove failed", "key", s.key, "error", err)
		}
	}
}

func (s *ViewportStore) persist(ctx context.Context, v domain.Viewport, filters domain.SaleFilters) {
	if s.storage == nil {
		return
	}
	rec := domain.PersistedViewport{
		Viewport:  v,
		Filters:   filters.Normalize(),
		Version:   domain.PersistedStateVersion,
		Timestamp: s.now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		// Quota errors and disabled storage degrade to memory-only.
		s.log.Debug("viewport persist failed", "key", s.key, "error", err)
	}
}

func (s *ViewportStore) hydrate(ctx context.Context) (domain.PersistedViewport, bool) {
	if s.storage == nil {
		return domain.PersistedViewport{}, false
	}
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil || raw == "" {
		return domain.PersistedViewport{}, false
	}

	var rec domain.PersistedViewport
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || !rec.Usable(s.now()) {
		s.log.Debug("discarding unusable viewport record", "key", s.key)
		_ = s.storage.Remove(ctx, s.key)
		return domain.PersistedViewport{}, false
	}
	return rec, true
}
