package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/internal/logger"
	"github.com/samvad-hq/mercari-items-client/internal/storage"
	"github.com/samvad-hq/mercari-items-client/pkg/publishers"
)

// Result summarizes one sync pass.
type Result struct {
	Listed    int `json:"listed"`
	Skipped   int `json:"skipped"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Service publishes catalog items that have not been published before.
type Service struct {
	lister    ItemLister
	publisher EventPublisher
	marker    storage.ItemMarker
	log       logger.Logger
}

// NewService wires a sync service. A nil marker publishes every item on every pass.
func NewService(lister ItemLister, pub EventPublisher, log logger.Logger, marker storage.ItemMarker) *Service {
	return &Service{
		lister:    lister,
		publisher: pub,
		marker:    marker,
		log:       logger.Ensure(log),
	}
}

// Run lists the catalog once and publishes every unseen item.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if s == nil || s.lister == nil || s.publisher == nil {
		return Result{}, fmt.Errorf("catalog service is not initialized")
	}

	list, err := s.lister.ListItems(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list items: %w", err)
	}

	res := Result{Listed: len(list.Items)}
	fresh := s.filterNewItems(list.Items)
	res.Skipped = res.Listed - len(fresh)

	var errs []error
	for _, item := range fresh {
		if ctx.Err() != nil {
			break
		}
		if err := s.publishItem(ctx, item); err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		res.Published++
	}

	s.log.InfoObj("catalog sync completed", "sync_result", res)
	return res, errors.Join(errs...)
}

func (s *Service) publishItem(ctx context.Context, item domain.Item) error {
	var imageURL string
	if item.ImageName != "" {
		imageURL = s.lister.ImageLocation(item.ImageName)
	}

	successes, err := s.publisher.Publish(ctx, publishers.NewEvent(s.lister.BaseURL(), item, imageURL))
	if err != nil {
		s.log.ErrorObj("item publish failed", "publish_error", map[string]any{
			"item_id":   item.ID,
			"successes": successes,
			"error":     err.Error(),
		})
	}
	if successes == 0 {
		if err == nil {
			err = errors.New("no publisher accepted the event")
		}
		return fmt.Errorf("publish item %d: %w", item.ID, err)
	}

	if s.marker != nil {
		if markErr := s.marker.MarkItem(item.ID); markErr != nil {
			s.log.WarnObj("item mark failed", "storage_error", map[string]any{
				"item_id": item.ID,
				"error":   markErr.Error(),
			})
		}
	}
	return nil
}

// filterNewItems drops items already marked as published. Lookup errors keep the item.
func (s *Service) filterNewItems(items []domain.Item) []domain.Item {
	if s.marker == nil {
		return items
	}

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		seen, err := s.marker.SeenItem(item.ID)
		if err != nil {
			s.log.WarnObj("item dedupe lookup failed", "storage_error", map[string]any{
				"item_id": item.ID,
				"error":   err.Error(),
			})
			out = append(out, item)
			continue
		}
		if !seen {
			out = append(out, item)
		}
	}
	return out
}
