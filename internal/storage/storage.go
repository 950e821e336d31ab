package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
)

// Package storage provides local DB/cache abstraction.

// ErrBlobNotFound is returned when a blob key is unknown or expired.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore keeps payloads addressed by ObjectURL.
type BlobStore interface {
	PutBlob(key string, blob domain.Blob) error
	Blob(key string) (domain.Blob, error)
	DeleteBlob(key string) error
}

// ItemMarker tracks item ids that were already published downstream.
type ItemMarker interface {
	SeenItem(id int) (bool, error)
	MarkItem(id int) error
}

// Store is the full local persistence surface.
type Store interface {
	BlobStore
	ItemMarker
	Close() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	BlobTTL         time.Duration
	ItemTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"

	defaultBlobTTL         = 24 * time.Hour
	defaultItemTTL         = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled", TypeMemory:
		return NewMemoryStore(), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.BlobTTL <= 0 {
		opts.BlobTTL = defaultBlobTTL
	}
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = defaultItemTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}
