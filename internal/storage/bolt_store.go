package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	blobBucket       = "blobs"
	itemBucket       = "items"
	expiryValueBytes = 8
	ctLenBytes       = 2
)

// boltStore implements a Store backed by BoltDB.
// Each value starts with an 8-byte big-endian unix expiry.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	blobTTL         time.Duration
	itemTTL         time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{blobBucket, itemBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		blobTTL:         opts.BlobTTL,
		itemTTL:         opts.ItemTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// PutBlob stores blob under key until the blob TTL elapses.
func (b *boltStore) PutBlob(key string, blob domain.Blob) error {
	if b == nil || b.db == nil {
		return nil
	}
	if len(blob.ContentType) > math.MaxUint16 {
		return fmt.Errorf("content type too long (%d bytes)", len(blob.ContentType))
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	value := encodeBlob(now.Add(b.blobTTL), blob)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(blobBucket))
		if bucket == nil {
			return fmt.Errorf("blob bucket missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

// Blob returns the blob stored under key, or ErrBlobNotFound.
func (b *boltStore) Blob(key string) (domain.Blob, error) {
	if b == nil || b.db == nil {
		return domain.Blob{}, ErrBlobNotFound
	}

	var (
		blob  domain.Blob
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(blobBucket))
		if bucket == nil {
			return fmt.Errorf("blob bucket missing")
		}

		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}

		expiry, decoded, ok := decodeBlob(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(k)
		}
		blob = decoded
		found = true
		return nil
	})
	if err != nil {
		return domain.Blob{}, err
	}
	if !found {
		return domain.Blob{}, ErrBlobNotFound
	}
	return blob, nil
}

// DeleteBlob removes key. Missing keys are ignored.
func (b *boltStore) DeleteBlob(key string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(blobBucket))
		if bucket == nil {
			return fmt.Errorf("blob bucket missing")
		}
		return bucket.Delete([]byte(key))
	})
}

// SeenItem checks if an item with the given ID has been published.
func (b *boltStore) SeenItem(id int) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return false, err
	}

	var exists bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemBucket))
		if bucket == nil {
			return fmt.Errorf("item bucket missing")
		}

		key := itemKey(id)
		value := bucket.Get(key)
		if value == nil {
			exists = false
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(time.Now()) {
			exists = false
			return bucket.Delete(key)
		}

		exists = true
		return nil
	})
	return exists, err
}

// MarkItem marks an item with the given ID as published.
func (b *boltStore) MarkItem(id int) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemBucket))
		if bucket == nil {
			return fmt.Errorf("item bucket missing")
		}
		return bucket.Put(itemKey(id), encodeExpiry(now.Add(b.itemTTL)))
	})
}

// maybeCleanupExpired removes expired blobs and item marks on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{blobBucket, itemBucket} {
			bucket := tx.Bucket([]byte(name))
			if bucket == nil {
				return fmt.Errorf("%s bucket missing", name)
			}

			cursor := bucket.Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				expiry, ok := decodeExpiry(v)
				if !ok || !expiry.After(now) {
					if err := cursor.Delete(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func itemKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func encodeExpiry(expiry time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	return buf
}

// decodeExpiry decodes the expiry time from the leading bytes of value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

// encodeBlob lays out expiry | content type length | content type | data.
func encodeBlob(expiry time.Time, blob domain.Blob) []byte {
	ct := []byte(blob.ContentType)
	buf := make([]byte, 0, expiryValueBytes+ctLenBytes+len(ct)+len(blob.Data))
	buf = append(buf, encodeExpiry(expiry)...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(ct)))
	buf = append(buf, ct...)
	buf = append(buf, blob.Data...)
	return buf
}

func decodeBlob(value []byte) (time.Time, domain.Blob, bool) {
	expiry, ok := decodeExpiry(value)
	if !ok || len(value) < expiryValueBytes+ctLenBytes {
		return time.Time{}, domain.Blob{}, false
	}
	rest := value[expiryValueBytes:]
	ctLen := int(binary.BigEndian.Uint16(rest[:ctLenBytes]))
	rest = rest[ctLenBytes:]
	if len(rest) < ctLen {
		return time.Time{}, domain.Blob{}, false
	}
	// bolt values are only valid inside the transaction
	data := make([]byte, len(rest)-ctLen)
	copy(data, rest[ctLen:])
	return expiry, domain.Blob{ContentType: string(rest[:ctLen]), Data: data}, true
}
