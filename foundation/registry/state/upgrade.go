package state

import (
	"fmt"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// Upgrade installs the compiled in layout for the version over the active
// one. Only the admin recorded at initialization may upgrade. When the new
// layout is not compatible with the state already written, nothing changes
// and the active version keeps serving.
func (s *State) Upgrade(caller database.AccountID, version uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized.Load() {
		return ErrNotInitialized
	}

	caller, err := database.ToAccountID(string(caller))
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}

	if caller != s.meta.Admin {
		s.evHandler("state: Upgrade: rejected: caller[%s]", caller)
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller)
	}

	next, exists := s.version(version)
	if !exists {
		return fmt.Errorf("%w: version %d is not compiled in", layout.ErrIncompatible, version)
	}

	if err := layout.Check(s.meta.Layout, next); err != nil {
		s.evHandler("state: Upgrade: rejected: version[%d]: %s", version, err)
		return err
	}

	meta := s.meta
	meta.Version = next.Version
	meta.Layout = next

	if err := s.db.Install(meta); err != nil {
		return err
	}

	prev := s.meta.Version
	s.meta = meta

	s.evHandler("state: Upgrade: installed: version[%d->%d]", prev, meta.Version)
	s.observer(Event{Kind: EventUpgraded, Version: meta.Version})

	return nil
}
