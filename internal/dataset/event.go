// Package dataset holds the core ingestion domain: parsing NOAA
// measurement files into tables and assembling them into a per-study
// dataset with typed parameter metadata.
package dataset

// Event identifies a measurement site. Immutable once constructed;
// one per site.
type Event struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewEvent builds an Event from a site name and its document coordinates.
// The document stores coordinates in [longitude, latitude] order, so the
// arguments follow that order.
func NewEvent(label string, lon, lat float64) Event {
	return Event{
		Label:     label,
		Latitude:  lat,
		Longitude: lon,
	}
}
