package itemsapi

import (
	"context"
	"errors"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"golang.org/x/sync/errgroup"
)

// EnrichItems fetches each item's image concurrently and attaches the
// resulting ObjectURL. The output has the same length and order as items.
// A failed fetch leaves that item without ImageURL; it never fails the pass.
// Every attached URL is owned by the caller (see ReleaseItems), including
// those allocated before ctx was cancelled.
func (c *Client) EnrichItems(ctx context.Context, items []domain.Item) []domain.EnrichedItem {
	// seed output with originals so failed fetches keep their item
	out := make([]domain.EnrichedItem, len(items))
	for i, it := range items {
		out[i] = domain.EnrichedItem{Item: it}
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i := range items {
		if items[i].ImageName == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			u, err := c.FetchImage(ctx, items[i].ImageName)
			if err != nil {
				c.log.WarnObj("item image fetch failed", "enrich_error", map[string]any{
					"item_id":    items[i].ID,
					"image_name": items[i].ImageName,
					"error":      err.Error(),
				})
				return nil
			}
			out[i].ImageURL = u
			return nil
		})
	}
	// workers only log failures, so Wait never reports an error
	_ = g.Wait()

	return out
}

// ListItemsWithImages lists items, then enriches the decoded result in a separate pass.
func (c *Client) ListItemsWithImages(ctx context.Context) ([]domain.EnrichedItem, error) {
	list, err := c.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return c.EnrichItems(ctx, list.Items), nil
}

// ReleaseItems releases every ObjectURL attached by EnrichItems.
func (c *Client) ReleaseItems(items []domain.EnrichedItem) error {
	var errs []error
	for _, it := range items {
		if it.ImageURL == "" {
			continue
		}
		if err := c.ReleaseImage(it.ImageURL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
