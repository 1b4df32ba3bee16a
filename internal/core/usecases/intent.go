package usecases

import "github.com/lootaura/lootaura/internal/core/domain"

// IntentPolicy decides whether a fetch cause may commit results under the
// currently active intent. The matrix is data, not control flow, so the
// full intent/cause table is reviewable in one place. Anything the table
// does not name is rejected (fail closed).
type IntentPolicy struct {
	table map[domain.IntentKind]map[domain.Cause]bool
}

// DefaultIntentPolicy returns the compatibility table:
//
//   - idle protects no goal and accepts every known cause;
//   - filters (and its sub-tagged variants) accepts the filters family and
//     map refetches, but never cluster drilldown results;
//   - map-pan accepts map and filters causes;
//   - cluster-drilldown accepts only cluster-caused results, so a slow
//     filter search cannot clobber a freshly opened cluster view.
func DefaultIntentPolicy() *IntentPolicy {
	return &IntentPolicy{table: map[domain.IntentKind]map[domain.Cause]bool{
		domain.IntentIdle: {
			domain.CauseFilters: true,
			domain.CauseMap:     true,
			domain.CauseCluster: true,
		},
		domain.IntentFilters: {
			domain.CauseFilters: true,
			domain.CauseMap:     true,
		},
		domain.IntentMapPan: {
			domain.CauseFilters: true,
			domain.CauseMap:     true,
		},
		domain.IntentClusterDrilldown: {
			domain.CauseCluster: true,
		},
	}}
}

// Compatible reports whether a result with the given cause may commit
// while intent is active. Sub-tagged causes ("filters:zip") are checked
// by family. Unknown intents and unknown causes are rejected.
func (p *IntentPolicy) Compatible(cause domain.Cause, intent domain.Intent) bool {
	row, ok := p.table[intent.Kind]
	if !ok {
		return false
	}
	return row[cause.Family()]
}
