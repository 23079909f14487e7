// Package bolt implements the ability to read and write the registry state
// to a single file using bbolt.
package bolt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ardanlabs/registry/foundation/registry/database"
	bolt "go.etcd.io/bbolt"
)

// bucket holds every slot. Slots are told apart by their key prefix.
var bucket = []byte("registry")

// Bolt represents the implementation for reading and storing the registry
// state in a bbolt file. This implements the database.Storage interface.
type Bolt struct {
	db *bolt.DB
}

// New opens, creating when needed, the bbolt file at the path.
func New(dbPath string) (*Bolt, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", dbPath, err)
	}

	create := func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}

	if err := db.Update(create); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Get returns a copy of the value stored for the key.
func (b *Bolt) Get(key []byte) ([]byte, error) {
	var value []byte
	get := func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return database.ErrNotFound
		}

		// Values are only valid for the life of the transaction.
		value = bytes.Clone(v)
		return nil
	}

	if err := b.db.View(get); err != nil {
		return nil, err
	}

	return value, nil
}

// Has reports whether the key holds a value.
func (b *Bolt) Has(key []byte) (bool, error) {
	var exists bool
	has := func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucket).Get(key) != nil
		return nil
	}

	if err := b.db.View(has); err != nil {
		return false, err
	}

	return exists, nil
}

// ForEach calls fn for every key with the prefix in ascending key order.
// It runs inside a read transaction, so fn must not write to the store.
func (b *Bolt) ForEach(prefix []byte, fn func(key []byte, value []byte) error) error {
	walk := func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := fn(bytes.Clone(k), bytes.Clone(v)); err != nil {
				return err
			}
		}
		return nil
	}

	return b.db.View(walk)
}

// Write applies the puts in one read-write transaction.
func (b *Bolt) Write(puts []database.Put) error {
	write := func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		for _, p := range puts {

			// bbolt rejects a nil value, store an empty one instead.
			value := p.Value
			if value == nil {
				value = []byte{}
			}

			if err := bkt.Put(p.Key, value); err != nil {
				return err
			}
		}
		return nil
	}

	return b.db.Update(write)
}
