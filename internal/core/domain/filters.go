package domain

import (
	"sort"
	"strings"
)

// SaleFilters is the normalized filter state attached to a search.
type SaleFilters struct {
	Categories []string `json:"categories,omitempty"`
	DatePreset string   `json:"date_preset,omitempty"`
	Zip        string   `json:"zip,omitempty"`
}

// categoryKey is the canonical form used for dedup and equality: trimmed
// and case-folded. Display values keep their original case.
func categoryKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeCategories trims entries, drops empties, and removes
// case-insensitive duplicates while preserving first-seen order and case.
func NormalizeCategories(raw []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		key := categoryKey(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// ParseCategories splits a comma-separated query value and normalizes it.
func ParseCategories(param string) []string {
	if param == "" {
		return nil
	}
	return NormalizeCategories(strings.Split(param, ","))
}

// CategoriesEqual compares two category lists as unordered sets under the
// canonical (case- and whitespace-insensitive) form.
func CategoriesEqual(a, b []string) bool {
	as := categorySet(a)
	bs := categorySet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func categorySet(cats []string) map[string]struct{} {
	set := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		if key := categoryKey(c); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// CategoryParam serializes categories back to a query parameter: sorted
// by canonical form, deduplicated, comma-joined. Stable across input
// order so it can serve as a cache/query key.
func CategoryParam(cats []string) string {
	norm := NormalizeCategories(cats)
	sort.Slice(norm, func(i, j int) bool {
		return categoryKey(norm[i]) < categoryKey(norm[j])
	})
	return strings.Join(norm, ",")
}

// Normalize returns a copy with categories normalized and zip trimmed.
func (f SaleFilters) Normalize() SaleFilters {
	f.Categories = NormalizeCategories(f.Categories)
	f.DatePreset = strings.ToLower(strings.TrimSpace(f.DatePreset))
	f.Zip = strings.TrimSpace(f.Zip)
	return f
}

// Equal compares two filter sets under normalized semantics.
func (f SaleFilters) Equal(other SaleFilters) bool {
	return CategoriesEqual(f.Categories, other.Categories) &&
		strings.EqualFold(strings.TrimSpace(f.DatePreset), strings.TrimSpace(other.DatePreset)) &&
		strings.TrimSpace(f.Zip) == strings.TrimSpace(other.Zip)
}
