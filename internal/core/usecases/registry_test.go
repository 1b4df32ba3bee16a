package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
)

func TestRegistry_GetCreatesOncePerSession(t *testing.T) {
	reg := usecases.NewRegistry(nil, nil, usecases.DefaultIntentPolicy(), 0, nil)

	a := reg.Get("s1")
	b := reg.Get("s1")
	if a != b {
		t.Error("same session id must return the same state")
	}
	if reg.Get("s2") == a {
		t.Error("different session ids must not share state")
	}
	if reg.Len() != 2 {
		t.Errorf("len = %d, want 2", reg.Len())
	}
}

func TestRegistry_SweepEvictsIdleSessions(t *testing.T) {
	reg := usecases.NewRegistry(nil, nil, usecases.DefaultIntentPolicy(), time.Millisecond, nil)

	reg.Get("idle")
	time.Sleep(5 * time.Millisecond)
	reg.Get("fresh")

	if evicted := reg.Sweep(); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d, want 1", reg.Len())
	}

	// The surviving session keeps its state; the evicted one is rebuilt.
	fresh := reg.Get("fresh")
	if reg.Get("fresh") != fresh {
		t.Error("surviving session must keep its state")
	}
}

func TestRegistry_SweepReleasesResolverState(t *testing.T) {
	calls := 0
	ip := &mockIPLocator{locateFn: func(ctx context.Context, ipAddr string) (*domain.LatLng, error) {
		calls++
		return &domain.LatLng{Lat: 41.0, Lng: -81.5}, nil
	}}
	resolver := usecases.NewLocationResolver(&mockGeocoder{}, ip, newMockStorage(),
		usecases.DefaultResolverConfig(), nil)

	reg := usecases.NewRegistry(nil, nil, usecases.DefaultIntentPolicy(), time.Millisecond, nil)
	reg.OnEvict = resolver.Forget

	reg.Get("s1")
	req := usecases.ResolveRequest{SessionID: "s1", ClientIP: "8.8.8.8"}
	resolver.Resolve(context.Background(), req, false)
	resolver.Resolve(context.Background(), req, false)
	if calls != 1 {
		t.Fatalf("chain must run once while the session lives, ran %d times", calls)
	}

	time.Sleep(5 * time.Millisecond)
	if evicted := reg.Sweep(); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}

	// Eviction must release the resolver's memory of the session too.
	resolver.Resolve(context.Background(), req, false)
	if calls != 2 {
		t.Errorf("evicted session must re-run the chain, got %d calls", calls)
	}
}

func TestRegistry_SweepDisabledWithoutTTL(t *testing.T) {
	reg := usecases.NewRegistry(nil, nil, usecases.DefaultIntentPolicy(), 0, nil)
	reg.Get("s1")
	if evicted := reg.Sweep(); evicted != 0 {
		t.Errorf("ttl 0 must disable eviction, evicted %d", evicted)
	}
}
