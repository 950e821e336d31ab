package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/internal/storage"
	"github.com/samvad-hq/mercari-items-client/pkg/publishers"
)

const testBase = "http://127.0.0.1:9000"

type fakeLister struct {
	items []domain.Item
	err   error
}

func (f *fakeLister) ListItems(context.Context) (domain.ItemListResponse, error) {
	if f.err != nil {
		return domain.ItemListResponse{}, f.err
	}
	return domain.ItemListResponse{Items: f.items}, nil
}

func (f *fakeLister) ImageLocation(ref domain.ImageReference) string {
	return testBase + "/image/" + ref
}

func (f *fakeLister) BaseURL() string { return testBase }

// fakePublisher records published events and can reject one item id.
type fakePublisher struct {
	mu      sync.Mutex
	events  []publishers.Event
	errOnID int
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Item.ID == f.errOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// fakeMarker tracks seen ids.
type fakeMarker struct {
	seen    map[int]bool
	failID  int
	failErr error
}

func (f *fakeMarker) SeenItem(id int) (bool, error) {
	if id == f.failID && f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[id], nil
}

func (f *fakeMarker) MarkItem(id int) error {
	if f.seen == nil {
		f.seen = make(map[int]bool)
	}
	f.seen[id] = true
	return nil
}

func TestRunPublishesFreshItemsOnly(t *testing.T) {
	lister := &fakeLister{items: []domain.Item{
		{ID: 1, Name: "old", ImageName: "old.jpg"},
		{ID: 2, Name: "new", ImageName: "new.jpg"},
	}}
	marker := &fakeMarker{seen: map[int]bool{1: true}}
	pub := &fakePublisher{}

	res, err := NewService(lister, pub, nil, marker).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res != (Result{Listed: 2, Skipped: 1, Published: 1}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Item.ID != 2 || evt.ImageURL != testBase+"/image/new.jpg" || evt.Source != testBase {
		t.Fatalf("unexpected event %+v", evt)
	}
	if !marker.seen[2] {
		t.Fatalf("MarkItem not called for new item")
	}
}

func TestRunAggregatesPublishErrors(t *testing.T) {
	lister := &fakeLister{items: []domain.Item{{ID: 7}, {ID: 8}}}
	pub := &fakePublisher{errOnID: 7}
	marker := &fakeMarker{}

	res, err := NewService(lister, pub, nil, marker).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "item 7") {
		t.Fatalf("expected error mentioning item 7, got %v", err)
	}
	if res.Published != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if marker.seen[7] {
		t.Fatalf("failed item must not be marked")
	}
	if pub.events[0].ImageURL != "" {
		t.Fatalf("item without image should have no image url")
	}
}

func TestRunPropagatesListError(t *testing.T) {
	_, err := NewService(&fakeLister{err: errors.New("down")}, &fakePublisher{}, nil, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "list items") {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestFilterNewItemsKeepsItemsOnLookupError(t *testing.T) {
	marker := &fakeMarker{
		seen:    map[int]bool{2: true},
		failID:  3,
		failErr: errors.New("lookup failed"),
	}
	svc := NewService(&fakeLister{}, &fakePublisher{}, nil, marker)

	filtered := svc.filterNewItems([]domain.Item{{ID: 1}, {ID: 2}, {ID: 3}})
	if len(filtered) != 2 || filtered[0].ID != 1 || filtered[1].ID != 3 {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestRunTwiceWithStoreSkipsPublished(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()
	lister := &fakeLister{items: []domain.Item{{ID: 1}, {ID: 2}}}
	pub := &fakePublisher{}
	svc := NewService(lister, pub, nil, store)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Published != 0 || res.Skipped != 2 {
		t.Fatalf("second pass should skip everything, got %+v", res)
	}
}

func TestRunRequiresWiring(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error from unwired service")
	}
}
