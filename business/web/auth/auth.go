// Package auth identifies the caller of a request from the signature over
// its payload.
package auth

import (
	"github.com/ardanlabs/registry/business/sys/validate"
	"github.com/ardanlabs/registry/business/web/errs"
	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Caller validates the signed request and recovers the account that
// signed it. The account can't be supplied any other way.
func Caller[T any](signed database.Signed[T]) (database.AccountID, error) {
	if err := validate.Check(signed); err != nil {
		return "", err
	}

	if err := signed.Validate(); err != nil {
		return "", errs.FromRegistry(err)
	}

	caller, err := signed.FromAccount()
	if err != nil {
		return "", errs.FromRegistry(err)
	}

	return caller, nil
}
