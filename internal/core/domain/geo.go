package domain

import "fmt"

// LatLng represents a geographic coordinate (WGS 84).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is inside WGS 84 ranges.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds represents a geographic bounding box. Antimeridian-crossing
// boxes are unsupported: West must be strictly less than East.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Validate checks that the box is a valid rectangle inside WGS 84 ranges.
func (b Bounds) Validate() error {
	if b.South < -90 || b.North > 90 || b.West < -180 || b.East > 180 {
		return &ValidationError{Field: "bounds", Reason: "coordinates out of range"}
	}
	if b.West >= b.East {
		return &ValidationError{Field: "bounds", Reason: "west must be less than east"}
	}
	if b.South >= b.North {
		return &ValidationError{Field: "bounds", Reason: "south must be less than north"}
	}
	return nil
}

// CheckSpan rejects boxes wider than maxSpanDeg degrees on either axis,
// keeping continent-scale queries out of the search provider.
func (b Bounds) CheckSpan(maxSpanDeg float64) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.East-b.West > maxSpanDeg {
		return &ValidationError{Field: "bounds", Reason: fmt.Sprintf("longitude span exceeds %g degrees", maxSpanDeg)}
	}
	if b.North-b.South > maxSpanDeg {
		return &ValidationError{Field: "bounds", Reason: fmt.Sprintf("latitude span exceeds %g degrees", maxSpanDeg)}
	}
	return nil
}

// Viewport is the single authoritative map view for a browsing session.
type Viewport struct {
	Center LatLng  `json:"center"`
	Bounds Bounds  `json:"bounds"`
	Zoom   float64 `json:"zoom"`
}

// Validate checks the viewport structurally: center in range, bounds a
// valid rectangle, zoom within the 0-22 web-mercator range.
func (v Viewport) Validate() error {
	if !v.Center.Valid() {
		return &ValidationError{Field: "center", Reason: "lat/lng out of range"}
	}
	if err := v.Bounds.Validate(); err != nil {
		return err
	}
	if v.Zoom < 0 || v.Zoom > 22 {
		return &ValidationError{Field: "zoom", Reason: "zoom must be between 0 and 22"}
	}
	return nil
}

// ValidationError reports a structurally invalid input. Callers treat it
// as a local rejection, never as a fault to propagate.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
