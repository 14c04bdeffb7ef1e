package preferences

import "context"

// NoLocation is stored in place of a location id when nothing is selected.
const NoLocation = -1

// Selection is the persisted city choice.
type Selection struct {
	City       string `json:"city"`
	LocationID int    `json:"location_id"`
}

func Empty() Selection {
	return Selection{LocationID: NoLocation}
}

// HasLocation is false for the sentinel and for any other negative id.
func (s Selection) HasLocation() bool {
	return s.LocationID >= 0
}

// Store persists the selection. Save writes city and id together; a Watch
// consumer never sees one without the other.
type Store interface {
	Save(ctx context.Context, sel Selection) error
	Load(ctx context.Context) (Selection, error)
	// Watch emits the current selection immediately and again after every
	// Save. The channel is closed once ctx is done.
	Watch(ctx context.Context) (<-chan Selection, error)
}
