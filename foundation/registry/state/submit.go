package state

import (
	"fmt"

	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Submit validates the submission and commits it as a block attributed to
// the caller.
func (s *State) Submit(caller database.AccountID, sub database.Submission) (database.Block, error) {
	return s.submit(caller, sub, nil)
}

// SubmitExtended validates the submission and cid and commits the block
// together with its extension record. It is only available once a version
// declaring the cids slot is installed.
func (s *State) SubmitExtended(caller database.AccountID, sub database.Submission, cid string) (database.Block, error) {
	return s.submit(caller, sub, &database.Extension{CID: cid})
}

// =============================================================================

// submit runs the rules and the commit under the writer lock so no other
// write can interleave between the uniqueness check and the batch.
func (s *State) submit(caller database.AccountID, sub database.Submission, ext *database.Extension) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized.Load() {
		return database.Block{}, ErrNotInitialized
	}

	caller, err := database.ToAccountID(string(caller))
	if err != nil {
		return database.Block{}, fmt.Errorf("caller: %w", err)
	}

	if ext != nil {
		if _, exists := s.db.Layout().Slot(database.SlotCIDs); !exists {
			return database.Block{}, fmt.Errorf("%w: extended submission needs the %s slot, active version is %d", database.ErrUnsupported, database.SlotCIDs, s.meta.Version)
		}
	}

	s.evHandler("state: submit: started: blk[%s]", sub)

	if err := s.policy.Validate(sub, s.db, s.evHandler); err != nil {
		return database.Block{}, err
	}

	if ext != nil {
		if err := s.policy.ValidateCID(ext.CID); err != nil {
			return database.Block{}, err
		}
	}

	block := database.Block{
		ID:          sub.ID,
		ParentID:    sub.ParentID,
		ContentHash: sub.ContentHash,
		Method:      sub.Method,
		Note:        sub.Note,
		Submitter:   caller,
		TimeStamp:   uint64(s.now().Unix()),
	}

	seq, err := s.db.Commit(block, ext)
	if err != nil {
		return database.Block{}, err
	}

	event := Event{
		Kind:     EventCommitted,
		Version:  s.meta.Version,
		Sequence: seq,
		Block:    &block,
	}

	if ext != nil {
		event.CID = ext.CID
		s.evHandler("state: submit: committed: seq[%d]: blk[%s]: cid[%s]", seq, block.ID, ext.CID)
	} else {
		s.evHandler("state: submit: committed: seq[%d]: blk[%s]", seq, block.ID)
	}

	s.observer(event)

	return block, nil
}
