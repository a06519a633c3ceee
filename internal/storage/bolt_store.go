package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	snapshotBucket   = "snapshots"
	expiryValueBytes = 8
)

// boltStore keeps snapshot keys in one bucket; each value is the big-endian
// unix expiry of the key.
type boltStore struct {
	db              *bolt.DB
	snapshotTTL     time.Duration
	cleanupInterval time.Duration
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot bucket: %w", err)
	}

	b := &boltStore{
		db:              db,
		snapshotTTL:     opts.SnapshotTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	b.lastCleanup.Store(time.Now().Unix())
	return b, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenSnapshot reports whether key was marked and has not expired. Expired
// entries are deleted on read.
func (b *boltStore) SeenSnapshot(key string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}
	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var live bool
	err := b.update(func(bucket *bolt.Bucket) error {
		k := []byte(key)
		expiry, ok := decodeExpiry(bucket.Get(k))
		if ok && expiry.After(now) {
			live = true
			return nil
		}
		if bucket.Get(k) != nil {
			return bucket.Delete(k)
		}
		return nil
	})
	return live, err
}

// MarkSnapshot records key as seen until now+TTL.
func (b *boltStore) MarkSnapshot(key string) error {
	if b == nil || b.db == nil {
		return nil
	}
	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(key), encodeExpiry(now.Add(b.snapshotTTL)))
	})
}

func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket missing")
		}
		return fn(bucket)
	})
}

// maybeCleanupExpired sweeps the bucket at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	due := func() bool {
		return now.Sub(time.Unix(b.lastCleanup.Load(), 0)) >= b.cleanupInterval
	}
	if !due() {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()
	if !due() {
		return nil
	}

	err := b.update(func(bucket *bolt.Bucket) error {
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if expiry, ok := decodeExpiry(v); ok && expiry.After(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
