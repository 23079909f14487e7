// Package database handles all the lower level support for maintaining the
// registry state in storage. The state is split into slots, each one an
// independently addressed key space with its own one byte prefix, as
// declared by the active layout.
package database

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the registry state.
// There is no delete: the registry is append-only at every level.
type Storage interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	ForEach(prefix []byte, fn func(key []byte, value []byte) error) error
	Write(puts []Put) error
	Close() error
}

// Put is a single key/value write. A slice of puts handed to Storage.Write
// must be applied atomically, all of them or none.
type Put struct {
	Key   []byte
	Value []byte
}

// =============================================================================

// Names of the slots that make up the registry state.
const (
	SlotMeta     = "meta"
	SlotBlocks   = "blocks"
	SlotSequence = "sequence"
	SlotCIDs     = "cids"
)

// metaPrefix is fixed for every version so the version marker can be read
// before the layout is known.
const metaPrefix = 'M'

// MetaSlot declares the slot holding the version marker and deployment info.
func MetaSlot() layout.Slot {
	return layout.NewSlot(SlotMeta, metaPrefix, nil)
}

// BlocksSlot declares the id to block mapping.
func BlocksSlot() layout.Slot {
	return layout.NewSlot(SlotBlocks, 'B', Block{})
}

// SequenceSlot declares the commit sequence to id mapping.
func SequenceSlot() layout.Slot {
	return layout.NewSlot(SlotSequence, 'S', sequenceEntry{})
}

// CIDsSlot declares the id to extension mapping.
func CIDsSlot() layout.Slot {
	return layout.NewSlot(SlotCIDs, 'C', Extension{})
}

// Keys inside the meta slot.
var (
	metaVersion  = []byte("version")
	metaLayout   = []byte("layout")
	metaAdmin    = []byte("admin")
	metaDeployed = []byte("deployed")
)

// Meta is the information recorded when the registry is deployed and
// updated every time a new version is installed.
type Meta struct {
	Version    uint16        `json:"version"`
	Layout     layout.Layout `json:"layout"`
	Admin      AccountID     `json:"admin"`
	Deployer   AccountID     `json:"deployer"`
	DeployedAt uint64        `json:"deployed_at"`
}

// deployment is the persisted form of the deployed key.
type deployment struct {
	Deployer   AccountID `json:"deployer"`
	DeployedAt uint64    `json:"deployed_at"`
}

// =============================================================================

// Database manages the slots of the registry on top of a storage engine.
type Database struct {
	mu      sync.RWMutex
	storage Storage
	layout  layout.Layout
	count   uint64
}

// New constructs a database over the specified storage. If the storage holds
// a deployed registry, the persisted layout is used for addressing until
// SetLayout or Install replace it.
func New(storage Storage) (*Database, error) {
	db := Database{
		storage: storage,
	}

	meta, err := db.Meta()
	switch {
	case errors.Is(err, ErrNotFound):
		return &db, nil

	case err != nil:
		return nil, err
	}

	db.layout = meta.Layout

	// Recover the commit count from the sequence slot. Without one the count
	// stays zero and commits fail until a layout declaring it is installed.
	seq, ok := db.layout.Slot(SlotSequence)
	if !ok {
		return &db, nil
	}

	count := func(key []byte, value []byte) error {
		db.count++
		return nil
	}

	if err := db.storage.ForEach([]byte{seq.Prefix}, count); err != nil {
		return nil, fmt.Errorf("count blocks: %w", err)
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Layout returns the layout used for addressing.
func (db *Database) Layout() layout.Layout {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.layout
}

// SetLayout replaces the layout used for addressing without writing
// anything. Use Install to persist a new version.
func (db *Database) SetLayout(l layout.Layout) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.layout = l
}

// Count returns the number of committed blocks.
func (db *Database) Count() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.count
}

// =============================================================================

// Meta reads the deployment information from the meta slot.
func (db *Database) Meta() (Meta, error) {
	version, err := db.storage.Get(metaKey(metaVersion))
	if err != nil {
		return Meta{}, fmt.Errorf("meta version: %w", err)
	}

	if len(version) != 2 {
		return Meta{}, fmt.Errorf("meta version is %d bytes", len(version))
	}

	data, err := db.storage.Get(metaKey(metaLayout))
	if err != nil {
		return Meta{}, fmt.Errorf("meta layout: %w", err)
	}

	l, err := layout.Decode(data)
	if err != nil {
		return Meta{}, err
	}

	admin, err := db.storage.Get(metaKey(metaAdmin))
	if err != nil {
		return Meta{}, fmt.Errorf("meta admin: %w", err)
	}

	data, err = db.storage.Get(metaKey(metaDeployed))
	if err != nil {
		return Meta{}, fmt.Errorf("meta deployed: %w", err)
	}

	var dep deployment
	if err := json.Unmarshal(data, &dep); err != nil {
		return Meta{}, fmt.Errorf("meta deployed: %w", err)
	}

	meta := Meta{
		Version:    binary.BigEndian.Uint16(version),
		Layout:     l,
		Admin:      AccountID(admin),
		Deployer:   dep.Deployer,
		DeployedAt: dep.DeployedAt,
	}

	return meta, nil
}

// Install writes the deployment information and version marker in one
// atomic write and switches addressing to the layout of the meta.
func (db *Database) Install(meta Meta) error {
	if meta.Version != meta.Layout.Version {
		return fmt.Errorf("meta version %d does not match layout version %d", meta.Version, meta.Layout.Version)
	}

	if s, ok := meta.Layout.Slot(SlotMeta); !ok || s.Prefix != metaPrefix {
		return fmt.Errorf("layout version %d must declare the %s slot with prefix %q", meta.Version, SlotMeta, metaPrefix)
	}

	data, err := meta.Layout.Encode()
	if err != nil {
		return err
	}

	dep, err := json.Marshal(deployment{Deployer: meta.Deployer, DeployedAt: meta.DeployedAt})
	if err != nil {
		return err
	}

	version := make([]byte, 2)
	binary.BigEndian.PutUint16(version, meta.Version)

	puts := []Put{
		{Key: metaKey(metaVersion), Value: version},
		{Key: metaKey(metaLayout), Value: data},
		{Key: metaKey(metaAdmin), Value: []byte(meta.Admin)},
		{Key: metaKey(metaDeployed), Value: dep},
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Write(puts); err != nil {
		return fmt.Errorf("install version %d: %w", meta.Version, err)
	}

	db.layout = meta.Layout

	return nil
}

// =============================================================================

// Commit writes the block, its sequence entry and, when provided, its
// extension in a single atomic write. It returns the commit sequence number
// of the block, starting at 1.
func (db *Database) Commit(block Block, ext *Extension) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	blocks, err := db.slot(SlotBlocks)
	if err != nil {
		return 0, err
	}

	sequence, err := db.slot(SlotSequence)
	if err != nil {
		return 0, err
	}

	var cids layout.Slot
	if ext != nil {
		if cids, err = db.slot(SlotCIDs); err != nil {
			return 0, err
		}
	}

	blockKey := slotKey(blocks, []byte(block.ID))
	exists, err := db.storage.Has(blockKey)
	if err != nil {
		return 0, fmt.Errorf("check block %q: %w", block.ID, err)
	}

	if exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateID, block.ID)
	}

	blockData, err := encode(block)
	if err != nil {
		return 0, err
	}

	seq := db.count + 1
	seqData, err := encode(sequenceEntry{ID: block.ID})
	if err != nil {
		return 0, err
	}

	puts := []Put{
		{Key: blockKey, Value: blockData},
		{Key: slotKey(sequence, seqKey(seq)), Value: seqData},
	}

	if ext != nil {
		extData, err := encode(*ext)
		if err != nil {
			return 0, err
		}

		puts = append(puts, Put{Key: slotKey(cids, []byte(block.ID)), Value: extData})
	}

	if err := db.storage.Write(puts); err != nil {
		return 0, fmt.Errorf("commit block %q: %w", block.ID, err)
	}

	db.count = seq

	return seq, nil
}

// Block returns a copy of the committed block for the specified id.
func (db *Database) Block(id string) (Block, error) {
	blocks, err := db.readSlot(SlotBlocks)
	if err != nil {
		return Block{}, err
	}

	data, err := db.storage.Get(slotKey(blocks, []byte(id)))
	if err != nil {
		return Block{}, fmt.Errorf("block %q: %w", id, err)
	}

	var block Block
	if err := decode(data, &block); err != nil {
		return Block{}, err
	}

	return block, nil
}

// HasBlock reports whether a block with the specified id is committed.
func (db *Database) HasBlock(id string) (bool, error) {
	blocks, err := db.readSlot(SlotBlocks)
	if err != nil {
		return false, err
	}

	return db.storage.Has(slotKey(blocks, []byte(id)))
}

// Extension returns the extension record for the specified block id.
func (db *Database) Extension(id string) (Extension, error) {
	cids, err := db.readSlot(SlotCIDs)
	if err != nil {
		return Extension{}, err
	}

	data, err := db.storage.Get(slotKey(cids, []byte(id)))
	if err != nil {
		return Extension{}, fmt.Errorf("extension %q: %w", id, err)
	}

	var ext Extension
	if err := decode(data, &ext); err != nil {
		return Extension{}, err
	}

	return ext, nil
}

// ForEach walks the committed blocks in commit order.
func (db *Database) ForEach(fn func(seq uint64, block Block) error) error {
	sequence, err := db.readSlot(SlotSequence)
	if err != nil {
		return err
	}

	type position struct {
		seq uint64
		id  string
	}

	// Collect the positions first so no block read happens inside the
	// storage iteration.
	var positions []position
	walk := func(key []byte, value []byte) error {
		if len(key) != 1+8 {
			return fmt.Errorf("sequence key is %d bytes", len(key))
		}

		var entry sequenceEntry
		if err := decode(value, &entry); err != nil {
			return err
		}

		positions = append(positions, position{seq: binary.BigEndian.Uint64(key[1:]), id: entry.ID})
		return nil
	}

	if err := db.storage.ForEach([]byte{sequence.Prefix}, walk); err != nil {
		return err
	}

	for _, p := range positions {
		block, err := db.Block(p.id)
		if err != nil {
			return err
		}

		if err := fn(p.seq, block); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================

// slot returns the declaration of the named slot in the active layout. The
// caller must hold the lock.
func (db *Database) slot(name string) (layout.Slot, error) {
	s, ok := db.layout.Slot(name)
	if !ok {
		return layout.Slot{}, fmt.Errorf("%w: slot %s", ErrUnsupported, name)
	}

	return s, nil
}

// readSlot is slot for callers not holding the lock.
func (db *Database) readSlot(name string) (layout.Slot, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.slot(name)
}

// slotKey prepends the slot prefix onto the key.
func slotKey(s layout.Slot, key []byte) []byte {
	k := make([]byte, 1, len(key)+1)
	k[0] = s.Prefix
	return append(k, key...)
}

// metaKey prepends the meta prefix onto the key.
func metaKey(key []byte) []byte {
	k := make([]byte, 1, len(key)+1)
	k[0] = metaPrefix
	return append(k, key...)
}

// seqKey encodes a sequence number so keys sort in commit order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
