package usecases

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/ports"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// Geographic center of the continental US: the terminal fallback when
// every other tier comes up empty.
var fallbackCenter = domain.LatLng{Lat: 39.8283, Lng: -98.5795}

// ResolveRequest carries everything one resolution attempt may consult.
// All fields are optional; empty fields simply skip their tier.
type ResolveRequest struct {
	LatParam  string
	LngParam  string
	ZoomParam string
	ZipParam  string

	// ServerHint is an initial center the server already derived (cookie,
	// stored home ZIP, IP geolocation). Opaque here: the resolver does not
	// re-derive it, just slots it at priority 3.
	ServerHint *domain.LatLng

	ClientIP  string
	SessionID string
}

// ResolverConfig tunes the resolver without touching the chain order.
type ResolverConfig struct {
	DefaultZoom   float64       // zoom when a tier yields only a point
	FallbackZoom  float64       // zoom for the static US-center fallback
	LookupTimeout time.Duration // per-tier bound for network tiers
}

// DefaultResolverConfig uses city-level zoom for point results,
// country-level zoom for the static fallback, and 5s lookups.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{DefaultZoom: 11, FallbackZoom: 4, LookupTimeout: 5 * time.Second}
}

// strategy is one tier of the priority chain. Returning (nil, err) or
// (nil, nil) falls through to the next tier.
type strategy struct {
	name    string
	resolve func(ctx context.Context, req ResolveRequest) (*domain.ResolvedLocation, error)
}

// LocationResolver produces a starting viewport center when the viewport
// store is uninitialized. The priority order is a data structure (an
// ordered strategy list), not control flow; the first tier to succeed
// wins and no merging ever happens. Resolution as a whole never fails:
// the static fallback is terminal.
type LocationResolver struct {
	geocoder ports.Geocoder
	ip       ports.IPLocator
	storage  ports.SessionStorage
	cfg      ResolverConfig
	log      *slog.Logger

	mu    sync.Mutex
	cache map[string]*domain.ResolvedLocation // sessionID -> resolved once
}

// NewLocationResolver wires the resolver's collaborators. Any of them may
// be nil, which disables the corresponding tier.
func NewLocationResolver(geocoder ports.Geocoder, ip ports.IPLocator, storage ports.SessionStorage, cfg ResolverConfig, log *slog.Logger) *LocationResolver {
	if log == nil {
		log = slog.Default()
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &LocationResolver{
		geocoder: geocoder,
		ip:       ip,
		storage:  storage,
		cfg:      cfg,
		log:      log,
		cache:    make(map[string]*domain.ResolvedLocation),
	}
}

// Resolve runs the chain at most once per session; repeated calls return
// the cached result. force re-runs the chain (the "use my location"
// path) and replaces the cache.
func (r *LocationResolver) Resolve(ctx context.Context, req ResolveRequest, force bool) domain.ResolvedLocation {
	if !force && req.SessionID != "" {
		r.mu.Lock()
		cached := r.cache[req.SessionID]
		r.mu.Unlock()
		if cached != nil {
			return *cached
		}
	}

	resolved := r.firstSuccess(ctx, req)

	if req.SessionID != "" {
		r.mu.Lock()
		r.cache[req.SessionID] = &resolved
		r.mu.Unlock()
	}
	return resolved
}

// Forget drops the cached resolution for a session.
func (r *LocationResolver) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.cache, sessionID)
	r.mu.Unlock()
}

// firstSuccess tries each tier in order. A tier error or empty result
// falls through; only the terminal fallback is guaranteed to produce.
func (r *LocationResolver) firstSuccess(ctx context.Context, req ResolveRequest) domain.ResolvedLocation {
	for _, s := range r.strategies() {
		loc, err := s.resolve(ctx, req)
		if err != nil {
			r.log.Debug("location tier failed", "tier", s.name, "error", err)
			continue
		}
		if loc == nil {
			continue
		}
		metrics.ResolverTierHits.WithLabelValues(s.name).Inc()
		r.log.Info("initial location resolved", "tier", s.name, "lat", loc.Lat, "lng", loc.Lng)
		return *loc
	}
	// Unreachable: the fallback tier never declines.
	return domain.ResolvedLocation{Lat: fallbackCenter.Lat, Lng: fallbackCenter.Lng, Zoom: r.cfg.FallbackZoom, Source: "fallback"}
}

func (r *LocationResolver) strategies() []strategy {
	return []strategy{
		{name: "url-params", resolve: r.fromParams},
		{name: "zip-param", resolve: r.fromZipParam},
		{name: "server-hint", resolve: r.fromServerHint},
		{name: "home-zip", resolve: r.fromHomeZip},
		{name: "ip", resolve: r.fromIP},
		{name: "fallback", resolve: r.static},
	}
}

func (r *LocationResolver) fromParams(_ context.Context, req ResolveRequest) (*domain.ResolvedLocation, error) {
	if req.LatParam == "" || req.LngParam == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(req.LatParam, 64)
	lng, err2 := strconv.ParseFloat(req.LngParam, 64)
	if err1 != nil || err2 != nil || !(domain.LatLng{Lat: lat, Lng: lng}).Valid() {
		return nil, nil
	}
	zoom := r.cfg.DefaultZoom
	if z, err := strconv.ParseFloat(req.ZoomParam, 64); err == nil && z >= 0 && z <= 22 {
		zoom = z
	}
	return &domain.ResolvedLocation{Lat: lat, Lng: lng, Zoom: zoom, Source: "url-params"}, nil
}

func (r *LocationResolver) fromZipParam(ctx context.Context, req ResolveRequest) (*domain.ResolvedLocation, error) {
	return r.geocodeZip(ctx, req.ZipParam, "zip-param")
}

func (r *LocationResolver) fromServerHint(_ context.Context, req ResolveRequest) (*domain.ResolvedLocation, error) {
	if req.ServerHint == nil || !req.ServerHint.Valid() {
		return nil, nil
	}
	return &domain.ResolvedLocation{Lat: req.ServerHint.Lat, Lng: req.ServerHint.Lng, Zoom: r.cfg.DefaultZoom, Source: "server-hint"}, nil
}

func (r *LocationResolver) fromHomeZip(ctx context.Context, req ResolveRequest) (*domain.ResolvedLocation, error) {
	if r.storage == nil || req.SessionID == "" {
		return nil, nil
	}
	zip, err := r.storage.Get(ctx, "homezip:"+req.SessionID)
	if err != nil || zip == "" {
		return nil, err
	}
	return r.geocodeZip(ctx, zip, "home-zip")
}

func (r *LocationResolver) fromIP(ctx context.Context, req ResolveRequest) (*domain.ResolvedLocation, error) {
	if r.ip == nil || req.ClientIP == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	point, err := r.ip.Locate(ctx, req.ClientIP)
	if err != nil || point == nil || !point.Valid() {
		return nil, err
	}
	return &domain.ResolvedLocation{Lat: point.Lat, Lng: point.Lng, Zoom: r.cfg.DefaultZoom, Source: "ip"}, nil
}

func (r *LocationResolver) static(context.Context, ResolveRequest) (*domain.ResolvedLocation, error) {
	return &domain.ResolvedLocation{Lat: fallbackCenter.Lat, Lng: fallbackCenter.Lng, Zoom: r.cfg.FallbackZoom, Source: "fallback"}, nil
}

func (r *LocationResolver) geocodeZip(ctx context.Context, zip, source string) (*domain.ResolvedLocation, error) {
	if r.geocoder == nil || zip == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	point, err := r.geocoder.GeocodeZip(ctx, zip)
	if err != nil || point == nil || !point.Valid() {
		return nil, err
	}
	return &domain.ResolvedLocation{Lat: point.Lat, Lng: point.Lng, Zoom: r.cfg.DefaultZoom, Source: source}, nil
}
