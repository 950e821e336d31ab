package catalog

import (
	"context"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/pkg/publishers"
)

// ItemLister lists the current catalog from the backend.
type ItemLister interface {
	ListItems(ctx context.Context) (domain.ItemListResponse, error)
	ImageLocation(ref domain.ImageReference) string
	BaseURL() string
}

// EventPublisher publishes item events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
