package geospatial

import (
	"math"

	"github.com/lootaura/lootaura/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundsAround returns a bounding box centered on a point with the given
// radius in meters. Used to synthesize bounds for a resolved point when
// the client supplied no viewport of its own.
func BoundsAround(lat, lng, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / 111320.0
	lngDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return domain.Bounds{
		West:  clamp(lng-lngDelta, -180, 180),
		South: clamp(lat-latDelta, -90, 90),
		East:  clamp(lng+lngDelta, -180, 180),
		North: clamp(lat+latDelta, -90, 90),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ViewportFor builds a full viewport from a resolved location, deriving
// bounds from a zoom-scaled radius (roughly halving per zoom level).
func ViewportFor(loc domain.ResolvedLocation) domain.Viewport {
	radius := 40075016.0 / 2 / math.Exp2(loc.Zoom) // half a tile width at the equator
	return domain.Viewport{
		Center: domain.LatLng{Lat: loc.Lat, Lng: loc.Lng},
		Bounds: BoundsAround(loc.Lat, loc.Lng, radius),
		Zoom:   loc.Zoom,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
