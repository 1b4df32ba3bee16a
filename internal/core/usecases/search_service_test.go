package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
)

func okBounds() domain.Bounds {
	return domain.Bounds{West: -83.2, South: 39.8, East: -82.6, North: 40.2}
}

func newSession(id string) *usecases.SearchSession {
	return usecases.NewSearchSession(id, nil, nil, usecases.DefaultIntentPolicy(), nil)
}

func TestSearchService_AdmitsFreshResult(t *testing.T) {
	provider := &mockProvider{listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		return []domain.Sale{{ID: "1"}, {ID: "1"}, {ID: "2"}}, nil
	}}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	res, err := svc.Search(context.Background(), sess, domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != usecases.OutcomeAdmitted {
		t.Fatalf("expected admitted, got %s", res.Outcome)
	}
	if res.Commit == nil || len(res.Commit.Data) != 2 {
		t.Fatalf("expected deduplicated commit of 2 sales, got %+v", res.Commit)
	}
	if res.Commit.Source != domain.CauseFilters {
		t.Errorf("commit source should echo the cause, got %s", res.Commit.Source)
	}
	if last := sess.LastCommit(domain.LaneList); last == nil || last.Seq != res.Seq {
		t.Error("admitted commit must be recorded on the session")
	}
}

func TestSearchService_SupersededRequestIsStale(t *testing.T) {
	sess := newSession("s1")

	provider := &mockProvider{listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		// A newer request lands while this one is in flight.
		sess.Controller.Bump()
		return []domain.Sale{{ID: "1"}}, nil
	}}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)

	res, err := svc.Search(context.Background(), sess, domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != usecases.OutcomeStale {
		t.Fatalf("superseded request must be dropped as stale, got %s", res.Outcome)
	}
	if sess.LastCommit(domain.LaneList) != nil {
		t.Error("stale result must not be committed")
	}
}

func TestSearchService_SiblingLanesShareOneBump(t *testing.T) {
	sess := newSession("s1")

	var listRes, mapRes usecases.ApplyResult
	var mapErr error

	provider := &mockProvider{
		listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
			return []domain.Sale{{ID: "l1"}}, nil
		},
		markersFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
			return []domain.Sale{{ID: "m1", Lat: 40, Lng: -83}}, nil
		},
	}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	ctx := context.Background()

	// One interaction refreshes both lanes: it bumps once and stamps both
	// fetches with the snapshot.
	seq := sess.Controller.Bump()

	slowList := &mockProvider{
		listFn: func(lctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
			// The sibling markers fetch lands while the list query runs.
			mapRes, mapErr = svc.SearchAt(ctx, sess, domain.LaneMap, okBounds(), domain.SaleFilters{}, domain.CauseMap, seq)
			return provider.listFn(lctx, b, f, limit)
		},
		markersFn: provider.markersFn,
	}
	listSvc := usecases.NewSearchService(slowList, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)

	listRes, err := listSvc.SearchAt(ctx, sess, domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters, seq)
	if err != nil || mapErr != nil {
		t.Fatalf("unexpected errors: %v / %v", err, mapErr)
	}
	if mapRes.Outcome != usecases.OutcomeAdmitted {
		t.Errorf("markers outcome = %s", mapRes.Outcome)
	}
	if listRes.Outcome != usecases.OutcomeAdmitted {
		t.Errorf("sibling fetches of one interaction must not invalidate each other, list outcome = %s", listRes.Outcome)
	}
	if last := sess.LastCommit(domain.LaneList); last == nil || last.Data[0].ID != "l1" {
		t.Error("list data lost to the sibling markers fetch")
	}
}

func TestSearchService_SnapshotFromOldInteractionIsStale(t *testing.T) {
	provider := &mockProvider{listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		return []domain.Sale{{ID: "1"}}, nil
	}}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	old := sess.Controller.Bump()
	sess.Controller.Bump() // a newer interaction

	res, err := svc.SearchAt(context.Background(), sess, domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters, old)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != usecases.OutcomeStale {
		t.Errorf("a superseded snapshot must drop as stale, got %s", res.Outcome)
	}
}

func TestSearchService_RejectsUnknownDatePreset(t *testing.T) {
	svc := usecases.NewSearchService(&mockProvider{}, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	_, err := svc.Search(context.Background(), sess, domain.LaneList, okBounds(),
		domain.SaleFilters{DatePreset: "someday"}, domain.CauseFilters)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown preset, got %v", err)
	}
	if sess.Controller.Seq() != 0 {
		t.Error("rejected input must not bump the sequence")
	}
}

func TestSearchService_MapLaneCommitsThinProjection(t *testing.T) {
	provider := &mockProvider{markersFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		return []domain.Sale{{
			ID: "m1", Title: "Estate sale", Lat: 40, Lng: -83,
			City: "Columbus", Categories: []string{"tools"}, Featured: true,
		}}, nil
	}}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	res, err := svc.Search(context.Background(), sess, domain.LaneMap, okBounds(), domain.SaleFilters{}, domain.CauseMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := res.Commit.Data[0]
	want := domain.Sale{ID: "m1", Lat: 40, Lng: -83, Featured: true}
	if got.Title != "" || got.City != "" || got.Categories != nil {
		t.Errorf("map lane leaked wide fields: %+v", got)
	}
	if got.ID != want.ID || got.Lat != want.Lat || got.Lng != want.Lng || !got.Featured {
		t.Errorf("thin projection lost identity fields: %+v", got)
	}
}

func TestSearchService_RejectsOversizedBbox(t *testing.T) {
	svc := usecases.NewSearchService(&mockProvider{}, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	wide := domain.Bounds{West: -120, South: 30, East: -70, North: 45}
	_, err := svc.Search(context.Background(), sess, domain.LaneList, wide, domain.SaleFilters{}, domain.CauseFilters)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for continent-scale bbox, got %v", err)
	}
}

func TestSearchService_ProviderErrorSurfaces(t *testing.T) {
	provider := &mockProvider{listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		return nil, errors.New("connection refused")
	}}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)

	_, err := svc.Search(context.Background(), newSession("s1"), domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters)
	if err == nil {
		t.Fatal("provider errors must surface to the caller")
	}
}

func TestSearchService_MarkersLaneUsesCache(t *testing.T) {
	queries := 0
	provider := &mockProvider{markersFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
		queries++
		return []domain.Sale{{ID: "m1", Lat: 40, Lng: -83}}, nil
	}}
	cache := newMockStorage()
	svc := usecases.NewSearchService(provider, cache, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")

	for i := 0; i < 2; i++ {
		res, err := svc.Search(context.Background(), sess, domain.LaneMap, okBounds(), domain.SaleFilters{}, domain.CauseMap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Outcome != usecases.OutcomeAdmitted {
			t.Fatalf("expected admitted, got %s", res.Outcome)
		}
	}
	if queries != 1 {
		t.Errorf("second identical markers query should hit the cache, provider ran %d times", queries)
	}
}

func TestSearchService_LaneStateIsIndependent(t *testing.T) {
	provider := &mockProvider{
		listFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
			return []domain.Sale{{ID: "list"}}, nil
		},
		markersFn: func(ctx context.Context, b domain.Bounds, f domain.SaleFilters, limit int) ([]domain.Sale, error) {
			return []domain.Sale{{ID: "marker"}}, nil
		},
	}
	svc := usecases.NewSearchService(provider, nil, nil, usecases.DefaultIntentPolicy(), 10, 200, nil)
	sess := newSession("s1")
	ctx := context.Background()

	if _, err := svc.Search(ctx, sess, domain.LaneMap, okBounds(), domain.SaleFilters{}, domain.CauseMap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.LastCommit(domain.LaneList) != nil {
		t.Fatal("map search must not touch list lane state")
	}

	if _, err := svc.Search(ctx, sess, domain.LaneList, okBounds(), domain.SaleFilters{}, domain.CauseFilters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sess.LastCommit(domain.LaneMap).Data[0].ID; got != "marker" {
		t.Errorf("map lane state overwritten: %s", got)
	}
	if got := sess.LastCommit(domain.LaneList).Data[0].ID; got != "list" {
		t.Errorf("list lane state wrong: %s", got)
	}
}
