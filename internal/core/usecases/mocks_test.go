package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/lootaura/lootaura/internal/core/domain"
)

// --- Mock SessionStorage ---

type mockStorage struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string]string)}
}

func (m *mockStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("missing key")
	}
	return v, nil
}

func (m *mockStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock Geocoder / IPLocator ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, zip string) (*domain.LatLng, error)
}

func (m *mockGeocoder) GeocodeZip(ctx context.Context, zip string) (*domain.LatLng, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, zip)
	}
	return nil, nil
}

type mockIPLocator struct {
	locateFn func(ctx context.Context, ip string) (*domain.LatLng, error)
}

func (m *mockIPLocator) Locate(ctx context.Context, ip string) (*domain.LatLng, error) {
	if m.locateFn != nil {
		return m.locateFn(ctx, ip)
	}
	return nil, nil
}

// --- Mock SearchProvider ---

type mockProvider struct {
	listFn    func(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error)
	markersFn func(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error)
}

func (m *mockProvider) ListSales(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error) {
	if m.listFn != nil {
		return m.listFn(ctx, bounds, filters, limit)
	}
	return []domain.Sale{}, nil
}

func (m *mockProvider) MarkersInBounds(ctx context.Context, bounds domain.Bounds, filters domain.SaleFilters, limit int) ([]domain.Sale, error) {
	if m.markersFn != nil {
		return m.markersFn(ctx, bounds, filters, limit)
	}
	return []domain.Sale{}, nil
}
