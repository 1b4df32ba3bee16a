package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// ZipGeocoder implements ports.Geocoder against a zippopotam-style HTTP
// API: GET <base>/<zip> returns {"places":[{"latitude":"..","longitude":".."}]}.
type ZipGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewZipGeocoder creates a geocoder with a bounded request timeout.
func NewZipGeocoder(baseURL string, timeout time.Duration) *ZipGeocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ZipGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type zipResponse struct {
	Places []struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

// GeocodeZip resolves a ZIP code to a coordinate. Unknown ZIPs return
// (nil, nil); transport and decode failures return an error the caller
// recovers from by falling through its priority chain.
func (g *ZipGeocoder) GeocodeZip(ctx context.Context, zip string) (*domain.LatLng, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+zip, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.GeocodeErrors.WithLabelValues("zip").Inc()
		return nil, fmt.Errorf("zip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeErrors.WithLabelValues("zip").Inc()
		return nil, fmt.Errorf("zip lookup: status %d", resp.StatusCode)
	}

	var body zipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.GeocodeErrors.WithLabelValues("zip").Inc()
		return nil, fmt.Errorf("zip lookup decode: %w", err)
	}
	if len(body.Places) == 0 {
		return nil, nil
	}

	lat, err1 := strconv.ParseFloat(body.Places[0].Latitude, 64)
	lng, err2 := strconv.ParseFloat(body.Places[0].Longitude, 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("zip lookup: malformed coordinates")
	}

	point := domain.LatLng{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil, fmt.Errorf("zip lookup: coordinates out of range")
	}
	return &point, nil
}
