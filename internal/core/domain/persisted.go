package domain

import "time"

// PersistedStateVersion is the schema version stamped on stored
// viewport/filter records. Records with any other version are discarded
// on read, not migrated.
const PersistedStateVersion = "2"

// PersistedStateMaxAge is how long a stored record stays usable.
const PersistedStateMaxAge = 30 * 24 * time.Hour

// PersistedViewport is the session-storage record for a viewport plus the
// filters that were active when it was saved.
type PersistedViewport struct {
	Viewport  Viewport    `json:"viewport"`
	Filters   SaleFilters `json:"filters"`
	Version   string      `json:"version"`
	Timestamp int64       `json:"timestamp"` // unix milliseconds
}

// Usable reports whether the record should be trusted at time now:
// matching version, not expired, structurally valid. Unusable records are
// treated as absent by readers, never as errors.
func (r PersistedViewport) Usable(now time.Time) bool {
	if r.Version != PersistedStateVersion {
		return false
	}
	age := now.Sub(time.UnixMilli(r.Timestamp))
	if age < 0 || age > PersistedStateMaxAge {
		return false
	}
	return r.Viewport.Validate() == nil
}
