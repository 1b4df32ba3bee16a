package usecases

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lootaura/lootaura/internal/core/ports"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// Registry hands out per-session state, creating it on first use and
// evicting sessions idle longer than the TTL.
type Registry struct {
	storage ports.SessionStorage
	events  ports.EventPublisher
	policy  *IntentPolicy
	log     *slog.Logger
	ttl     time.Duration

	// OnEvict, when set, is called with each session ID the sweep drops,
	// so state held elsewhere under the same ID (the location resolver's
	// cache) is released with it.
	OnEvict func(sessionID string)

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	sess     *SearchSession
	lastSeen time.Time
}

// NewRegistry creates the registry. ttl <= 0 disables eviction.
func NewRegistry(storage ports.SessionStorage, events ports.EventPublisher, policy *IntentPolicy, ttl time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		storage:  storage,
		events:   events,
		policy:   policy,
		log:      log,
		ttl:      ttl,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *SearchSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		entry = &registryEntry{sess: NewSearchSession(id, r.storage, r.events, r.policy, r.log)}
		r.sessions[id] = entry
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	entry.lastSeen = time.Now()
	return entry.sess
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle longer than the TTL. Run it from a ticker.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []string
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	if len(evicted) > 0 {
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
		r.log.Debug("sessions evicted", "count", len(evicted))
	}
	r.mu.Unlock()

	if r.OnEvict != nil {
		for _, id := range evicted {
			r.OnEvict(id)
		}
	}
	return len(evicted)
}
