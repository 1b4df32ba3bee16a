package usecases_test

import (
	"testing"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
)

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	in := []domain.Sale{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
		{ID: "c"},
		{ID: "b"},
	}

	out := usecases.Deduplicate(in)

	if len(out) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" || out[2].ID != "c" {
		t.Errorf("order not preserved: %+v", out)
	}
	if out[0].Title != "first" {
		t.Errorf("expected first occurrence kept, got %q", out[0].Title)
	}
}

func TestDeduplicate_IdenticalFieldsStillDuplicates(t *testing.T) {
	in := []domain.Sale{{ID: "x", Lat: 1, Lng: 2}, {ID: "x", Lat: 1, Lng: 2}, {ID: "y"}}

	out := usecases.Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(out))
	}
}

func TestDeduplicate_EmptyIDPassesThrough(t *testing.T) {
	in := []domain.Sale{{Title: "no id 1"}, {Title: "no id 2"}, {ID: "a"}}

	out := usecases.Deduplicate(in)
	if len(out) != 3 {
		t.Fatalf("entities without an ID must never be dropped, got %d of 3", len(out))
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []domain.Sale{{ID: "a"}, {ID: "b"}, {ID: "a"}, {}}

	once := usecases.Deduplicate(in)
	twice := usecases.Deduplicate(once)

	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("entry %d changed between passes", i)
		}
	}
}

func TestDeduplicate_EmptyAndSingle(t *testing.T) {
	if out := usecases.Deduplicate(nil); len(out) != 0 {
		t.Errorf("nil input should stay empty")
	}
	if out := usecases.Deduplicate([]domain.Sale{{ID: "a"}}); len(out) != 1 {
		t.Errorf("single entry should pass through")
	}
}
