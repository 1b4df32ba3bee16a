package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/ports"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// ApplyResult is what one search turn reports back to the caller: the
// admission outcome plus the commit when the batch was admitted.
type ApplyResult struct {
	Outcome Outcome        `json:"outcome"`
	Seq     uint64         `json:"seq"`
	Commit  *domain.Commit `json:"commit,omitempty"`
}

// SearchService orchestrates one search turn per lane: bump the sequence,
// snapshot it, dispatch the provider query, then route the batch through
// the result applier. The bump-and-snapshot happens before any await so
// no concurrent mutation can slip between increment and capture.
type SearchService struct {
	provider ports.SearchProvider
	cache    ports.SessionStorage
	events   ports.EventPublisher
	policy   *IntentPolicy
	log      *slog.Logger

	maxBboxSpan float64
	limit       int
}

// NewSearchService creates the orchestrator. cache and events may be nil.
func NewSearchService(provider ports.SearchProvider, cache ports.SessionStorage, events ports.EventPublisher, policy *IntentPolicy, maxBboxSpan float64, limit int, log *slog.Logger) *SearchService {
	if log == nil {
		log = slog.Default()
	}
	if maxBboxSpan <= 0 {
		maxBboxSpan = 10
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return &SearchService{
		provider:    provider,
		cache:       cache,
		events:      events,
		policy:      policy,
		log:         log,
		maxBboxSpan: maxBboxSpan,
		limit:       limit,
	}
}

// Search runs the given lane's query for one session, bumping the
// sequence for this dispatch and gating the result. Bbox and filter
// validation errors surface to the caller; admission rejections do not —
// they come back as non-ok outcomes.
func (s *SearchService) Search(ctx context.Context, sess *SearchSession, lane domain.Lane, bounds domain.Bounds, filters domain.SaleFilters, cause domain.Cause) (ApplyResult, error) {
	filters = filters.Normalize()
	if err := s.validate(bounds, filters); err != nil {
		return ApplyResult{}, err
	}
	return s.dispatch(ctx, sess, lane, bounds, filters, cause, sess.Controller.Bump())
}

// SearchAt runs one lane's query stamped with a caller-held sequence
// snapshot instead of bumping. One user interaction that refreshes both
// lanes bumps once — the viewport update, or the first dispatch — and
// stamps every fetch it spawns with that value, so sibling-lane fetches
// of the same interaction cannot invalidate each other.
func (s *SearchService) SearchAt(ctx context.Context, sess *SearchSession, lane domain.Lane, bounds domain.Bounds, filters domain.SaleFilters, cause domain.Cause, seq uint64) (ApplyResult, error) {
	filters = filters.Normalize()
	if err := s.validate(bounds, filters); err != nil {
		return ApplyResult{}, err
	}
	return s.dispatch(ctx, sess, lane, bounds, filters, cause, seq)
}

// validate rejects malformed input before anything bumps or queries.
func (s *SearchService) validate(bounds domain.Bounds, filters domain.SaleFilters) error {
	if err := bounds.CheckSpan(s.maxBboxSpan); err != nil {
		return err
	}
	if filters.DatePreset != "" {
		if _, err := domain.ResolveDatePreset(filters.DatePreset, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SearchService) dispatch(ctx context.Context, sess *SearchSession, lane domain.Lane, bounds domain.Bounds, filters domain.SaleFilters, cause domain.Cause, seq uint64) (ApplyResult, error) {
	data, err := s.fetch(ctx, lane, bounds, filters)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("search %s lane: %w", lane, err)
	}

	batch := domain.ResultBatch{Data: data, Seq: seq, Cause: cause}
	outcome := sess.Applier.Apply(lane, batch)

	res := ApplyResult{Outcome: outcome, Seq: seq}
	if outcome == OutcomeAdmitted {
		res.Commit = sess.LastCommit(lane)
	}
	return res, nil
}

func (s *SearchService) fetch(ctx context.Context, lane domain.Lane, bounds domain.Bounds, filters domain.SaleFilters) ([]domain.Sale, error) {
	if lane == domain.LaneMap {
		return s.fetchMarkers(ctx, bounds, filters)
	}
	return s.provider.ListSales(ctx, bounds, filters, s.limit)
}

// fetchMarkers reads through a short-lived cache keyed by the rounded
// bounds and normalized filters; marker sets churn slowly relative to
// pan/zoom traffic.
func (s *SearchService) fetchMarkers(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters) ([]domain.Sale, error) {
	key := fmt.Sprintf("markers:%.3f:%.3f:%.3f:%.3f:%s:%s",
		bounds.West, bounds.South, bounds.East, bounds.North,
		domain.CategoryParam(filters.Categories), filters.DatePreset)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached []domain.Sale
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				metrics.CacheHits.WithLabelValues("markers").Inc()
				return cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("markers").Inc()
	}

	markers, err := s.provider.MarkersInBounds(ctx, bounds, filters, s.limit)
	if err != nil {
		return nil, err
	}
	// Providers may hand back wide rows; the map lane only ever commits
	// (and caches) the thin projection.
	for i := range markers {
		markers[i] = markers[i].Marker()
	}

	if s.cache != nil {
		if data, err := json.Marshal(markers); err == nil {
			_ = s.cache.Set(ctx, key, string(data))
		}
	}
	return markers, nil
}

// SearchSession bundles everything owned by one browsing session.
type SearchSession struct {
	ID         string
	Controller *SessionController
	Viewport   *ViewportStore
	Applier    *ResultApplier

	mu       sync.Mutex
	lastMap  *domain.Commit
	lastList *domain.Commit
}

// NewSearchSession builds a session whose lane sinks record the last
// commit per lane and fan admitted commits out to the event publisher.
func NewSearchSession(id string, storage ports.SessionStorage, events ports.EventPublisher, policy *IntentPolicy, log *slog.Logger) *SearchSession {
	sess := &SearchSession{
		ID:         id,
		Controller: NewSessionController(),
		Viewport:   NewViewportStore(id, storage, log),
	}

	publish := func(lane domain.Lane, c domain.Commit) {
		if events == nil {
			return
		}
		if err := events.PublishCommit(context.Background(), id, lane, c); err != nil && log != nil {
			log.Debug("commit publish failed", "lane", lane, "error", err)
		}
	}

	sess.Applier = NewResultApplier(sess.Controller, policy,
		func(c domain.Commit) {
			sess.mu.Lock()
			sess.lastMap = &c
			sess.mu.Unlock()
			publish(domain.LaneMap, c)
		},
		func(c domain.Commit) {
			sess.mu.Lock()
			sess.lastList = &c
			sess.mu.Unlock()
			publish(domain.LaneList, c)
		},
		log,
	)
	return sess
}

// LastCommit returns the most recently committed batch for a lane, or nil.
func (s *SearchSession) LastCommit(lane domain.Lane) *domain.Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lane == domain.LaneMap {
		return s.lastMap
	}
	return s.lastList
}
