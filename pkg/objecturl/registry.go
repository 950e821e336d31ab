// Package objecturl hands out revocable blob: handles for binary payloads.
package objecturl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/internal/storage"
)

const scheme = "blob:"

// ErrNotFound is returned by Open for released, expired, or unknown URLs.
var ErrNotFound = errors.New("object url not found")

// Registry allocates and releases ObjectURLs. Implementations must be safe for
// concurrent use; every Allocate call yields a distinct handle.
type Registry interface {
	Allocate(data []byte, contentType string) (domain.ObjectURL, error)
	Release(u domain.ObjectURL) error
	Open(u domain.ObjectURL) (domain.Blob, error)
}

// StoreRegistry keeps payloads in a storage.BlobStore.
type StoreRegistry struct {
	origin string
	store  storage.BlobStore
}

// NewRegistry builds a registry whose URLs look like blob:<origin>/<uuid>.
// A nil store falls back to a process-scoped memory store.
func NewRegistry(origin string, store storage.BlobStore) *StoreRegistry {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return &StoreRegistry{
		origin: strings.TrimRight(origin, "/"),
		store:  store,
	}
}

// Allocate stores data and returns a new handle that owns it.
func (r *StoreRegistry) Allocate(data []byte, contentType string) (domain.ObjectURL, error) {
	if data == nil {
		data = []byte{}
	}
	u := domain.ObjectURL(scheme + r.origin + "/" + uuid.NewString())
	if err := r.store.PutBlob(string(u), domain.Blob{Data: data, ContentType: contentType}); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return u, nil
}

// Release frees the payload behind u. Releasing twice, or releasing an
// unknown URL, is not an error.
func (r *StoreRegistry) Release(u domain.ObjectURL) error {
	if !IsObjectURL(u) {
		return nil
	}
	if err := r.store.DeleteBlob(string(u)); err != nil {
		return fmt.Errorf("release %s: %w", u, err)
	}
	return nil
}

// Open returns the payload behind u.
func (r *StoreRegistry) Open(u domain.ObjectURL) (domain.Blob, error) {
	if !IsObjectURL(u) {
		return domain.Blob{}, fmt.Errorf("%q: %w", u, ErrNotFound)
	}
	blob, err := r.store.Blob(string(u))
	if errors.Is(err, storage.ErrBlobNotFound) {
		return domain.Blob{}, fmt.Errorf("%s: %w", u, ErrNotFound)
	}
	if err != nil {
		return domain.Blob{}, fmt.Errorf("open %s: %w", u, err)
	}
	return blob, nil
}

// IsObjectURL reports whether u has the blob: scheme.
func IsObjectURL(u domain.ObjectURL) bool {
	return strings.HasPrefix(string(u), scheme) && len(u) > len(scheme)
}
