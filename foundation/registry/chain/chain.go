// Package chain implements the acceptance rules applied to every block
// before it is committed.
package chain

import (
	"fmt"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
)

// EventHandler defines a function that is called when events
// occur in the processing of submissions.
type EventHandler func(v string, args ...any)

// Reader is the view of the block store the rules need.
type Reader interface {
	HasBlock(id string) (bool, error)
}

// Policy holds the options of the acceptance rules. The zero value is the
// permissive policy: the parent id is recorded as supplied and any non-empty
// cid is accepted.
type Policy struct {
	RequireParent bool `json:"require_parent"` // Parent must be GenesisParent or committed.
	StrictCID     bool `json:"strict_cid"`     // Cid must parse as a content identifier.
}

// Validate applies the rules in order and returns the first violation. No
// rule has side effects, so a rejected submission leaves the store as it
// was.
func (p Policy) Validate(sub database.Submission, blocks Reader, ev EventHandler) error {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	if sub.ID == "" {
		return fmt.Errorf("%w: block id is empty", database.ErrInvalidInput)
	}

	exists, err := blocks.HasBlock(sub.ID)
	if err != nil {
		return fmt.Errorf("check block %q: %w", sub.ID, err)
	}

	if exists {
		return fmt.Errorf("%w: %q", database.ErrDuplicateID, sub.ID)
	}

	if sub.ContentHash == (common.Hash{}) {
		return fmt.Errorf("%w: content hash is all zeros", database.ErrInvalidInput)
	}

	if !p.RequireParent {
		return nil
	}

	if sub.ParentID == sub.ID {
		return fmt.Errorf("%w: block %q names itself as parent", database.ErrInvalidInput, sub.ID)
	}

	if sub.ParentID == database.GenesisParent {
		ev("chain: Validate: blk[%s]: genesis parent", sub.ID)
		return nil
	}

	exists, err = blocks.HasBlock(sub.ParentID)
	if err != nil {
		return fmt.Errorf("check parent %q: %w", sub.ParentID, err)
	}

	if !exists {
		return fmt.Errorf("%w: parent %q of block %q is not committed", database.ErrInvalidInput, sub.ParentID, sub.ID)
	}

	return nil
}

// ValidateCID checks the locator given on the extended path.
func (p Policy) ValidateCID(c string) error {
	if c == "" {
		return fmt.Errorf("%w: cid is empty", database.ErrInvalidInput)
	}

	if !p.StrictCID {
		return nil
	}

	if _, err := cid.Decode(c); err != nil {
		return fmt.Errorf("%w: cid %q: %s", database.ErrInvalidInput, c, err)
	}

	return nil
}
