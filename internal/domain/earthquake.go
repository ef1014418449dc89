package domain

import "time"

// EarthquakeEvent is one entry of a seismic catalog query. Events are
// transient: one per catalog entry, discarded once a response is built.
type EarthquakeEvent struct {
	ID        string    `json:"id"`
	Magnitude float64   `json:"magnitude"`
	DepthKm   float64   `json:"depth_km"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Time      time.Time `json:"time"`
	Place     string    `json:"place"`
	URL       string    `json:"url"`
}

// CatalogQuery describes an earthquake catalog request.
type CatalogQuery struct {
	Box          BoundingBox
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	Limit        int
}
