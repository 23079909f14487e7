// Package nameservice reads the zblock/accounts folder and names the
// registry accounts after their key files.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ethereum/go-ethereum/crypto"
)

const keyExtension = ".ecdsa"

// NameService maps accounts to names and names back to accounts.
type NameService struct {
	names    map[database.AccountID]string
	accounts map[string]database.AccountID
}

// New constructs a Name Service with accounts from the key files found
// under the root folder. Two key files with the same name are refused since
// the name would no longer identify one submitter.
func New(root string) (*NameService, error) {
	ns := NameService{
		names:    make(map[database.AccountID]string),
		accounts: make(map[string]database.AccountID),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != keyExtension {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("load key %s: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), keyExtension)
		if other, exists := ns.accounts[name]; exists {
			return fmt.Errorf("name %q already used by account %s", name, other)
		}

		accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
		ns.names[accountID] = name
		ns.accounts[name] = accountID

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account, or the account itself
// when it has no key file. Any spelling of the address resolves.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	if normal, err := database.ToAccountID(string(accountID)); err == nil {
		accountID = normal
	}

	name, exists := ns.names[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Resolve returns the account for a name known to the service or for a
// hex-encoded account id.
func (ns *NameService) Resolve(nameOrAccount string) (database.AccountID, error) {
	if accountID, exists := ns.accounts[nameOrAccount]; exists {
		return accountID, nil
	}

	return database.ToAccountID(nameOrAccount)
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	cpy := make(map[database.AccountID]string, len(ns.names))
	for accountID, name := range ns.names {
		cpy[accountID] = name
	}
	return cpy
}
