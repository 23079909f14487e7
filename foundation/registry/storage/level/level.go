// Package level implements the ability to read and write the registry state
// to disk using LevelDB.
package level

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Level represents the implementation for reading and storing the registry
// state in a LevelDB directory. This implements the database.Storage
// interface.
type Level struct {
	once sync.Once
	db   *leveldb.DB
}

// New opens, creating when needed, the LevelDB store in the directory.
func New(dbPath string) (*Level, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dbPath, err)
	}

	return &Level{db: db}, nil
}

// Close closes the store. Closing twice is a no-op.
func (l *Level) Close() error {
	var err error
	l.once.Do(func() {
		err = l.db.Close()
	})

	return err
}

// Get returns the value stored for the key.
func (l *Level) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	return value, nil
}

// Has reports whether the key holds a value.
func (l *Level) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

// ForEach calls fn for every key with the prefix in ascending key order.
func (l *Level) ForEach(prefix []byte, fn func(key []byte, value []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {

		// The iterator reuses these buffers on the next call.
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)

		if err := fn(key, value); err != nil {
			return err
		}
	}

	return iter.Error()
}

// Write applies the puts as one batch, synced to disk before returning.
func (l *Level) Write(puts []database.Put) error {
	batch := new(leveldb.Batch)
	for _, p := range puts {
		batch.Put(p.Key, p.Value)
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}
