package usecases_test

import (
	"testing"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
)

func TestIntentPolicy_Table(t *testing.T) {
	policy := usecases.DefaultIntentPolicy()

	cases := []struct {
		name   string
		cause  domain.Cause
		intent domain.Intent
		want   bool
	}{
		{"idle accepts filters", domain.CauseFilters, domain.Intent{Kind: domain.IntentIdle}, true},
		{"idle accepts map", domain.CauseMap, domain.Intent{Kind: domain.IntentIdle}, true},
		{"idle accepts cluster", domain.CauseCluster, domain.Intent{Kind: domain.IntentIdle}, true},
		{"filters accepts filters", domain.CauseFilters, domain.Intent{Kind: domain.IntentFilters}, true},
		{"filters accepts map", domain.CauseMap, domain.Intent{Kind: domain.IntentFilters}, true},
		{"filters rejects cluster", domain.CauseCluster, domain.Intent{Kind: domain.IntentFilters}, false},
		{"cluster rejects filters", domain.CauseFilters, domain.Intent{Kind: domain.IntentClusterDrilldown}, false},
		{"cluster rejects map", domain.CauseMap, domain.Intent{Kind: domain.IntentClusterDrilldown}, false},
		{"cluster accepts cluster", domain.CauseCluster, domain.Intent{Kind: domain.IntentClusterDrilldown}, true},
		{"map-pan accepts map", domain.CauseMap, domain.Intent{Kind: domain.IntentMapPan}, true},
		{"map-pan accepts filters", domain.CauseFilters, domain.Intent{Kind: domain.IntentMapPan}, true},
		{"map-pan rejects cluster", domain.CauseCluster, domain.Intent{Kind: domain.IntentMapPan}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Compatible(tc.cause, tc.intent); got != tc.want {
				t.Errorf("Compatible(%q, %q) = %v, want %v", tc.cause, tc.intent.Kind, got, tc.want)
			}
		})
	}
}

func TestIntentPolicy_SubTagFamily(t *testing.T) {
	policy := usecases.DefaultIntentPolicy()

	zipIntent := domain.Intent{Kind: domain.IntentFilters, Sub: "zip"}
	if !policy.Compatible(domain.Cause("filters:zip"), zipIntent) {
		t.Error("filters:zip cause should be compatible with filters:zip intent")
	}
	if !policy.Compatible(domain.CauseFilters, zipIntent) {
		t.Error("plain filters cause should be compatible with sub-tagged filters intent")
	}
	if !policy.Compatible(domain.Cause("filters:zip"), domain.Intent{Kind: domain.IntentFilters}) {
		t.Error("sub-tagged cause should be compatible with plain filters intent")
	}
	if policy.Compatible(domain.Cause("filters:zip"), domain.Intent{Kind: domain.IntentClusterDrilldown}) {
		t.Error("sub-tagged filters cause must not leak past cluster drilldown")
	}
}

func TestIntentPolicy_FailsClosed(t *testing.T) {
	policy := usecases.DefaultIntentPolicy()

	if policy.Compatible(domain.Cause("mystery"), domain.Intent{Kind: domain.IntentIdle}) {
		t.Error("unknown cause must be rejected even under idle")
	}
	if policy.Compatible(domain.CauseFilters, domain.Intent{Kind: domain.IntentKind("mystery")}) {
		t.Error("unknown intent must reject everything")
	}
	if policy.Compatible(domain.Cause(""), domain.Intent{Kind: domain.IntentFilters}) {
		t.Error("empty cause must be rejected")
	}
}
