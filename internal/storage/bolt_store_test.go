package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/mercari-items-client/internal/domain"
)

func TestBoltStoreMarksAndExpiresItems(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		ItemTTL:         1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/cache.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenItem(1)
	if err != nil || seen {
		t.Fatalf("expected unseen item, seen=%v err=%v", seen, err)
	}

	if err := store.MarkItem(1); err != nil {
		t.Fatalf("MarkItem: %v", err)
	}

	seen, err = store.SeenItem(1)
	if err != nil || !seen {
		t.Fatalf("expected item marked as seen, got seen=%v err=%v", seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = store.SeenItem(1)
	if err != nil {
		t.Fatalf("SeenItem after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreBlobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blobs.db")
	store, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	want := domain.Blob{Data: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, ContentType: "image/jpeg"}
	if err := store.PutBlob("blob:a", want); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}

	got, err := store.Blob("blob:a")
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blob mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteBlob("blob:a"); err != nil {
		t.Fatalf("DeleteBlob: %v", err)
	}
	if err := store.DeleteBlob("blob:a"); err != nil {
		t.Fatalf("second DeleteBlob: %v", err)
	}
	if _, err := store.Blob("blob:a"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestBoltStoreBlobSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	store, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.PutBlob("blob:b", domain.Blob{Data: []byte("png")}); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Blob("blob:b")
	if err != nil {
		t.Fatalf("Blob after reopen: %v", err)
	}
	if string(got.Data) != "png" || got.ContentType != "" {
		t.Fatalf("unexpected blob %#v", got)
	}
}

func TestDecodeBlobRejectsTruncatedValues(t *testing.T) {
	value := encodeBlob(time.Now().Add(time.Hour), domain.Blob{ContentType: "image/png", Data: []byte("x")})
	if _, _, ok := decodeBlob(value[:expiryValueBytes+ctLenBytes+3]); ok {
		t.Fatalf("expected truncated content type to be rejected")
	}
	if _, _, ok := decodeBlob(value[:4]); ok {
		t.Fatalf("expected short value to be rejected")
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkItem(3); err != nil {
		t.Fatalf("memory store MarkItem: %v", err)
	}
	seen, err := store.SeenItem(3)
	if err != nil || !seen {
		t.Fatalf("expected item seen, seen=%v err=%v", seen, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore(TypeBBolt, " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
