package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lootaura/lootaura/internal/core/domain"
)

// SaleRepo implements ports.SearchProvider with pgx against the sales
// table. Both lanes share the same predicate building; the markers lane
// selects only the thin projection.
type SaleRepo struct {
	db  *DB
	now func() time.Time
}

// NewSaleRepo creates a new SaleRepo.
func NewSaleRepo(db *DB) *SaleRepo {
	return &SaleRepo{db: db, now: time.Now}
}

// ListSales is the filtered-list lane query: full rows, newest first.
func (r *SaleRepo) ListSales(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error) {
	where, args := r.predicates(bounds, filters)
	query := fmt.Sprintf(`
		SELECT id, title, lat, lng, address, city, state, zip,
		       categories, start_date::text, end_date::text, featured, created_at
		FROM sales
		WHERE %s
		ORDER BY featured DESC, created_at DESC
		LIMIT %d
	`, where, limit)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.Title, &s.Lat, &s.Lng, &s.Address, &s.City,
			&s.State, &s.Zip, &s.Categories, &s.StartDate, &s.EndDate, &s.Featured, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, rows.Err()
}

// MarkersInBounds is the map lane query: identity and coordinates only.
func (r *SaleRepo) MarkersInBounds(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error) {
	where, args := r.predicates(bounds, filters)
	query := fmt.Sprintf(`
		SELECT id, lat, lng, featured
		FROM sales
		WHERE %s
		LIMIT %d
	`, where, limit)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("markers in bounds: %w", err)
	}
	defer rows.Close()

	var markers []domain.Sale
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.Lat, &s.Lng, &s.Featured); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		markers = append(markers, s)
	}
	if markers == nil {
		markers = []domain.Sale{}
	}
	return markers, rows.Err()
}

// predicates builds the shared WHERE clause: bbox containment, optional
// category overlap, optional date-preset window.
func (r *SaleRepo) predicates(bounds domain.Bounds, filters domain.SaleFilters) (string, []any) {
	clauses := []string{"lat BETWEEN $1 AND $2", "lng BETWEEN $3 AND $4"}
	args := []any{bounds.South, bounds.North, bounds.West, bounds.East}

	if cats := domain.NormalizeCategories(filters.Categories); len(cats) > 0 {
		lowered := make([]string, len(cats))
		for i, c := range cats {
			lowered[i] = strings.ToLower(c)
		}
		args = append(args, lowered)
		clauses = append(clauses, fmt.Sprintf("categories && $%d::text[]", len(args)))
	}

	if filters.DatePreset != "" {
		if rng, err := domain.ResolveDatePreset(filters.DatePreset, r.now()); err == nil {
			args = append(args, rng.Start, rng.End)
			clauses = append(clauses, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", len(args), len(args)-1))
		}
	}

	return strings.Join(clauses, " AND "), args
}

// UpsertBatch loads sales in bulk, used by seeding and tests against a
// live database.
func (r *SaleRepo) UpsertBatch(ctx context.Context, sales []domain.Sale) error {
	batch := &pgx.Batch{}
	for _, s := range sales {
		lowered := make([]string, len(s.Categories))
		for i, c := range s.Categories {
			lowered[i] = strings.ToLower(strings.TrimSpace(c))
		}
		batch.Queue(`
			INSERT INTO sales (id, title, lat, lng, address, city, state, zip,
			                   categories, start_date, end_date, featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::date, $11::date, $12)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			    address = EXCLUDED.address, city = EXCLUDED.city, state = EXCLUDED.state,
			    zip = EXCLUDED.zip, categories = EXCLUDED.categories,
			    start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
			    featured = EXCLUDED.featured
		`, s.ID, s.Title, s.Lat, s.Lng, s.Address, s.City, s.State, s.Zip,
			lowered, s.StartDate, s.EndDate, s.Featured)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range sales {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert sale: %w", err)
		}
	}
	return nil
}
