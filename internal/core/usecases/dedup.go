package usecases

import "github.com/lootaura/lootaura/internal/core/domain"

// Deduplicate drops later occurrences of sales sharing an ID, keeping the
// first occurrence and the input's relative order. Identity is the ID
// alone; two entries with the same ID but different fields are still
// duplicates. Sales with an empty ID cannot be matched, so they always
// pass through. Pure and idempotent.
func Deduplicate(sales []domain.Sale) []domain.Sale {
	if len(sales) < 2 {
		return sales
	}
	out := make([]domain.Sale, 0, len(sales))
	seen := make(map[string]struct{}, len(sales))
	for _, s := range sales {
		if s.ID != "" {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
		}
		out = append(out, s)
	}
	return out
}
