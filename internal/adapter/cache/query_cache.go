package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketResults = []byte("results")
	bucketMeta    = []byte("meta")
	keyGeneration = []byte("index_generation")
)

// QueryCache persists evaluated hit lists across search sessions in a bbolt
// file next to the index. The cache is tied to one index build: when the
// supplied fingerprint differs from the stored one, all entries are dropped
// on open. The index itself is immutable once written, so entries never go
// stale within a generation.
type QueryCache struct {
	db *bbolt.DB
}

// Open opens (or creates) the cache file and binds it to the index build
// identified by fingerprint.
func Open(path, fingerprint string) (*QueryCache, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening query cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		stored := meta.Get(keyGeneration)
		if stored != nil && string(stored) == fingerprint {
			_, err := tx.CreateBucketIfNotExists(bucketResults)
			return err
		}
		// New or rebuilt index: drop every cached result.
		if tx.Bucket(bucketResults) != nil {
			if err := tx.DeleteBucket(bucketResults); err != nil {
				return err
			}
		}
		if _, err := tx.CreateBucket(bucketResults); err != nil {
			return err
		}
		return meta.Put(keyGeneration, []byte(fingerprint))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising query cache: %w", err)
	}

	return &QueryCache{db: db}, nil
}

func cacheKey(query string) []byte {
	sum := sha256.Sum256([]byte(query))
	return sum[:16]
}

// Get returns the cached hit list for a query line. Values carry a leading
// id count so an empty hit list is still a well-formed entry.
func (c *QueryCache) Get(query string) ([]uint32, bool) {
	var ids []uint32
	found := false
	_ = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketResults).Get(cacheKey(query))
		if len(raw) < 4 {
			return nil
		}
		n := binary.LittleEndian.Uint32(raw[0:4])
		if uint64(len(raw)) != 4+uint64(n)*4 {
			return nil
		}
		ids = make([]uint32, n)
		for i := range ids {
			ids[i] = binary.LittleEndian.Uint32(raw[4+4*i:])
		}
		found = true
		return nil
	})
	return ids, found
}

// Put stores the hit list for a query line.
func (c *QueryCache) Put(query string, ids []uint32) error {
	raw := make([]byte, 4+4*len(ids))
	binary.LittleEndian.PutUint32(raw[0:4], uint32(len(ids)))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(raw[4+4*i:], id)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResults).Put(cacheKey(query), raw)
	})
}

// Close releases the underlying database file.
func (c *QueryCache) Close() error {
	return c.db.Close()
}
