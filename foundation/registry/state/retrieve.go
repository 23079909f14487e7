package state

import (
	"github.com/ardanlabs/registry/foundation/registry/chain"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// Status is a summary of the registry.
type Status struct {
	Initialized bool               `json:"initialized"`
	Version     uint16             `json:"version"`
	Latest      uint16             `json:"latest"`
	Admin       database.AccountID `json:"admin"`
	Deployer    database.AccountID `json:"deployer"`
	DeployedAt  uint64             `json:"deployed_at"`
	Blocks      uint64             `json:"blocks"`
	Policy      chain.Policy       `json:"policy"`
}

// =============================================================================

// QueryBlock returns a copy of the committed block for the id.
func (s *State) QueryBlock(id string) (database.Block, error) {
	if !s.initialized.Load() {
		return database.Block{}, ErrNotInitialized
	}

	return s.db.Block(id)
}

// QueryExtension returns the cid recorded for the block. Blocks committed
// through the base path, including every block written before the upgrade,
// have none.
func (s *State) QueryExtension(id string) (string, error) {
	if !s.initialized.Load() {
		return "", ErrNotInitialized
	}

	ext, err := s.db.Extension(id)
	if err != nil {
		return "", err
	}

	return ext.CID, nil
}

// RetrieveBlocks returns every committed block in commit order.
func (s *State) RetrieveBlocks() ([]database.Block, error) {
	return s.QueryBlocksBySubmitter("")
}

// QueryBlocksBySubmitter returns the blocks committed by the account in
// commit order. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksBySubmitter(account database.AccountID) ([]database.Block, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}

	var out []database.Block
	collect := func(seq uint64, block database.Block) error {
		if account == "" || block.Submitter == account {
			out = append(out, block)
		}
		return nil
	}

	if err := s.db.ForEach(collect); err != nil {
		return nil, err
	}

	return out, nil
}

// RetrieveStatus returns a summary of the registry.
func (s *State) RetrieveStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Initialized: s.initialized.Load(),
		Version:     s.meta.Version,
		Latest:      s.versions[len(s.versions)-1].Version,
		Admin:       s.meta.Admin,
		Deployer:    s.meta.Deployer,
		DeployedAt:  s.meta.DeployedAt,
		Blocks:      s.db.Count(),
		Policy:      s.policy,
	}

	return status
}

// RetrieveLayout returns the active layout.
func (s *State) RetrieveLayout() (layout.Layout, error) {
	if !s.initialized.Load() {
		return layout.Layout{}, ErrNotInitialized
	}

	return s.db.Layout(), nil
}
