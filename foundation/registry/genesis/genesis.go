// Package genesis maintains access to the genesis file that describes a
// registry deployment.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/registry/foundation/registry/chain"
	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date   time.Time          `json:"date"`
	Name   string             `json:"name"`   // Human readable name of this registry.
	Admin  database.AccountID `json:"admin"`  // Account allowed to install upgrades.
	Policy chain.Policy       `json:"policy"` // Acceptance rules for submissions.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("parse genesis %s: %w", path, err)
	}

	admin, err := database.ToAccountID(string(genesis.Admin))
	if err != nil {
		return Genesis{}, fmt.Errorf("genesis admin: %w", err)
	}
	genesis.Admin = admin

	return genesis, nil
}
