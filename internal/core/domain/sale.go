package domain

import "time"

// Sale represents a listed yard/garage sale.
type Sale struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Zip        string    `json:"zip,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	StartDate  string    `json:"start_date,omitempty"` // ISO date
	EndDate    string    `json:"end_date,omitempty"`
	Featured   bool      `json:"featured,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Marker is the thin map-lane projection of a sale: identity plus a
// coordinate, which is all clustering needs.
func (s Sale) Marker() Sale {
	return Sale{ID: s.ID, Lat: s.Lat, Lng: s.Lng, Featured: s.Featured}
}
