package cache

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"ircount/internal/domain"
)

var (
	bucketResults = []byte("results")
	bucketMeta    = []byte("meta")
)

// BoltCache persists count results keyed by content hash.
type BoltCache struct {
	db *bbolt.DB
}

func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketResults, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

type resultMeta struct {
	Instructions int                    `json:"instructions"`
	Lines        int                    `json:"lines"`
	Functions    []domain.FunctionCount `json:"functions,omitempty"`
}

// Get returns the cached result for key. The Path field is left empty.
func (c *BoltCache) Get(key string) (domain.CountResult, bool, error) {
	var result domain.CountResult
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResults).Get([]byte(key))
		if data == nil {
			return nil
		}
		var meta resultMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("corrupt cache entry %s: %w", key, err)
		}
		result = domain.CountResult{
			Instructions: meta.Instructions,
			Lines:        meta.Lines,
			Functions:    meta.Functions,
		}
		found = true
		return nil
	})
	return result, found, err
}

func (c *BoltCache) Put(key string, result domain.CountResult) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		meta := resultMeta{
			Instructions: result.Instructions,
			Lines:        result.Lines,
			Functions:    result.Functions,
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Put([]byte(key), data)
	})
}

// Len returns the number of cached results.
func (c *BoltCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketResults).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
