// Package state is the core API for the registry and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/registry/foundation/registry/chain"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// Set of error variables for the lifecycle of the registry.
var (
	ErrNotInitialized     = errors.New("registry not initialized")
	ErrAlreadyInitialized = errors.New("registry already initialized")
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrUnknownVersion     = errors.New("unknown registry version")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of submissions. The same handler is handed to the
// chain rules.
type EventHandler = chain.EventHandler

// EventKind names what happened to the registry.
type EventKind string

// Set of event kinds delivered to the observer.
const (
	EventInitialized EventKind = "initialized"
	EventCommitted   EventKind = "committed"
	EventUpgraded    EventKind = "upgraded"
)

// Event is delivered to the observer after a change is persisted.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Version  uint16          `json:"version"`
	Sequence uint64          `json:"sequence,omitempty"`
	Block    *database.Block `json:"block,omitempty"`
	CID      string          `json:"cid,omitempty"`
}

// =============================================================================

// Config represents the configuration required to start the registry.
type Config struct {
	Storage   database.Storage
	Policy    chain.Policy
	Versions  []layout.Layout
	Now       func() time.Time
	EvHandler EventHandler
	Observer  func(Event)
}

// State manages the registry database.
type State struct {
	mu          sync.Mutex
	initialized atomic.Bool

	db        *database.Database
	policy    chain.Policy
	versions  []layout.Layout
	now       func() time.Time
	evHandler EventHandler
	observer  func(Event)
	meta      database.Meta
}

// New constructs the registry over the storage. A store written by a version
// this binary doesn't know, or whose persisted layout differs from the one
// compiled in for its version, is refused.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	observer := func(e Event) {
		if cfg.Observer != nil {
			cfg.Observer(e)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	versions := cfg.Versions
	if len(versions) == 0 {
		versions = Versions()
	}

	if err := validateVersions(versions); err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	state := State{
		db:        db,
		policy:    cfg.Policy,
		versions:  versions,
		now:       now,
		evHandler: ev,
		observer:  observer,
	}

	meta, err := db.Meta()
	switch {
	case errors.Is(err, database.ErrNotFound):
		ev("state: New: store is empty, waiting for initialization")
		return &state, nil

	case err != nil:
		return nil, err
	}

	compiled, exists := state.version(meta.Version)
	if !exists {
		return nil, fmt.Errorf("%w: store is at version %d, this binary runs up to version %d", ErrUnknownVersion, meta.Version, versions[len(versions)-1].Version)
	}

	if !compiled.Equal(meta.Layout) {
		return nil, fmt.Errorf("%w: persisted layout of version %d differs from the compiled one", layout.ErrIncompatible, meta.Version)
	}

	db.SetLayout(compiled)
	state.meta = meta
	state.initialized.Store(true)

	ev("state: New: version[%d]: blocks[%d]", meta.Version, db.Count())

	return &state, nil
}

// Shutdown cleanly brings the registry down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: closing storage")

	return s.db.Close()
}

// Initialize installs the first version on an empty store and records the
// admin allowed to upgrade it.
func (s *State) Initialize(deployer database.AccountID, admin database.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized.Load() {
		return ErrAlreadyInitialized
	}

	deployer, err := database.ToAccountID(string(deployer))
	if err != nil {
		return fmt.Errorf("deployer: %w", err)
	}

	admin, err = database.ToAccountID(string(admin))
	if err != nil {
		return fmt.Errorf("admin: %w", err)
	}

	first := s.versions[0]
	meta := database.Meta{
		Version:    first.Version,
		Layout:     first,
		Admin:      admin,
		Deployer:   deployer,
		DeployedAt: uint64(s.now().Unix()),
	}

	if err := s.db.Install(meta); err != nil {
		return err
	}

	s.meta = meta
	s.initialized.Store(true)

	s.evHandler("state: Initialize: version[%d]: admin[%s]", meta.Version, admin)
	s.observer(Event{Kind: EventInitialized, Version: meta.Version})

	return nil
}

// =============================================================================

// version returns the compiled in layout for the version.
func (s *State) version(v uint16) (layout.Layout, bool) {
	for _, l := range s.versions {
		if l.Version == v {
			return l, true
		}
	}

	return layout.Layout{}, false
}

// validateVersions checks that each compiled in layout can be installed over
// the one before it.
func validateVersions(versions []layout.Layout) error {
	if err := versions[0].Validate(); err != nil {
		return fmt.Errorf("version %d: %w", versions[0].Version, err)
	}

	for i := 1; i < len(versions); i++ {
		if err := layout.Check(versions[i-1], versions[i]); err != nil {
			return fmt.Errorf("version %d: %w", versions[i].Version, err)
		}
	}

	return nil
}
