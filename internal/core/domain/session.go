package domain

import "strings"

// IntentKind names the high-level user goal currently driving searches.
type IntentKind string

const (
	IntentIdle             IntentKind = "idle"
	IntentFilters          IntentKind = "filters"
	IntentMapPan           IntentKind = "map-pan"
	IntentClusterDrilldown IntentKind = "cluster-drilldown"
)

// Intent is the currently active user goal. Sub carries an optional
// refinement of the filters intent, e.g. "zip" while a ZIP search is live.
type Intent struct {
	Kind IntentKind `json:"kind"`
	Sub  string     `json:"sub,omitempty"`
}

// Cause labels what triggered an in-flight fetch. Causes in the filters
// family may carry a sub-tag, e.g. "filters:zip".
type Cause string

const (
	CauseFilters Cause = "filters"
	CauseMap     Cause = "map"
	CauseCluster Cause = "cluster"
)

// Family returns the cause with any sub-tag stripped: "filters:zip"
// belongs to the "filters" family.
func (c Cause) Family() Cause {
	if i := strings.IndexByte(string(c), ':'); i >= 0 {
		return Cause(c[:i])
	}
	return c
}

// Lane identifies one of the two independent result destinations.
type Lane string

const (
	LaneMap  Lane = "map"
	LaneList Lane = "list"
)

// ResultBatch is the payload of one asynchronous search call. Seq is the
// sequence value captured when the fetch was dispatched.
type ResultBatch struct {
	Data  []Sale `json:"data"`
	Seq   uint64 `json:"seq"`
	Cause Cause  `json:"cause"`
}

// Commit is an admitted, deduplicated batch as delivered to a lane sink.
type Commit struct {
	Data   []Sale `json:"data"`
	Seq    uint64 `json:"seq"`
	Source Cause  `json:"source"`
}

// ResolvedLocation is a starting point produced by the location resolver.
type ResolvedLocation struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Zoom   float64 `json:"zoom"`
	Source string  `json:"source"` // which resolver tier produced it
}
