package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// IPLocator implements ports.IPLocator against an ip-api-style endpoint:
// GET <base>/<ip> returns {"status":"success","lat":..,"lon":..}.
type IPLocator struct {
	baseURL string
	client  *http.Client
}

// NewIPLocator creates a locator with a bounded request timeout.
func NewIPLocator(baseURL string, timeout time.Duration) *IPLocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IPLocator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ipResponse struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Locate resolves an IP to an approximate coordinate. Private or unknown
// addresses come back as (nil, nil).
func (l *IPLocator) Locate(ctx context.Context, ip string) (*domain.LatLng, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+ip, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		metrics.GeocodeErrors.WithLabelValues("ip").Inc()
		return nil, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeErrors.WithLabelValues("ip").Inc()
		return nil, fmt.Errorf("ip lookup: status %d", resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.GeocodeErrors.WithLabelValues("ip").Inc()
		return nil, fmt.Errorf("ip lookup decode: %w", err)
	}
	if body.Status != "success" {
		return nil, nil
	}

	point := domain.LatLng{Lat: body.Lat, Lng: body.Lon}
	if !point.Valid() {
		return nil, fmt.Errorf("ip lookup: coordinates out of range")
	}
	return &point, nil
}
