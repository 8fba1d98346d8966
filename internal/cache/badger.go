// SPDX-License-Identifier: MIT

package cache

import (
	"errors"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerCache is a persistent on-disk implementation of Cache. Entries survive
// restarts, which keeps cold-start generation load off the encoders.
type BadgerCache struct {
	db     *badger.DB
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewBadgerCache opens (or creates) a Badger database at dir.
func NewBadgerCache(dir string, logger zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logger is too chatty; we log at the cache level

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("dir", dir).Msg("opened badger cache")

	return &BadgerCache{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves a value from the badger cache.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("badger get failed")
		}
		c.stats.misses.Add(1)
		return nil, false
	}

	c.stats.hits.Add(1)
	return value, true
}

// Set stores a value with a TTL. Badger expires the entry itself. Expiry
// timestamps have one-second granularity, so shorter TTLs are clamped up to a
// second to keep fresh entries from expiring immediately.
func (c *BadgerCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl < time.Second {
		ttl = time.Second
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger set failed")
		return
	}

	c.stats.sets.Add(1)
}

// Delete removes a value from the badger cache.
func (c *BadgerCache) Delete(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

// Clear removes all values from the cache.
func (c *BadgerCache) Clear() {
	if err := c.db.DropAll(); err != nil {
		c.logger.Warn().Err(err).Msg("badger drop failed")
	}
}

// Stats returns cache statistics. CurrentSize counts live keys.
func (c *BadgerCache) Stats() Stats {
	size := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			size++
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("badger iteration failed")
	}

	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: size,
	}
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
