package publishers

import (
	"strconv"
	"time"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
)

// Event represents the payload published downstream for one catalog item.
type Event struct {
	Source      string      `json:"source"`
	Item        domain.Item `json:"item"`
	ImageURL    string      `json:"image_url,omitempty"`
	CollectedAt time.Time   `json:"collected_at"`
}

// NewEvent constructs an Event for an item listed from source.
func NewEvent(source string, item domain.Item, imageURL string) Event {
	return Event{
		Source:      source,
		Item:        item,
		ImageURL:    imageURL,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"item_id": strconv.Itoa(e.Item.ID),
	}
	if e.Item.Category != "" {
		attrs["category"] = e.Item.Category
	}
	return attrs
}
