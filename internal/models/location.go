package models

// Location is one search hit from the weather service.
// ID is nil when the service did not return one.
type Location struct {
	ID      *int    `json:"id,omitempty"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// LocationID returns the id, or 0 when absent.
func (l Location) LocationID() int {
	if l.ID == nil {
		return 0
	}
	return *l.ID
}
