package database

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ardanlabs/registry/foundation/registry/signature"
	"github.com/ethereum/go-ethereum/common"
)

// Submission is the data a caller provides to anchor a block.
type Submission struct {
	ID          string      `json:"id" validate:"required"`
	ParentID    string      `json:"parent_id"`
	ContentHash common.Hash `json:"content_hash"`
	Method      string      `json:"method"`
	Note        string      `json:"note"`
}

// NewSubmission constructs a submission from its hex-encoded content hash.
func NewSubmission(id string, parentID string, contentHash string, method string, note string) (Submission, error) {
	hash, err := ToHash(contentHash)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		ID:          id,
		ParentID:    parentID,
		ContentHash: hash,
		Method:      method,
		Note:        note,
	}

	return sub, nil
}

// ExtendedSubmission is a submission that also records where the content
// is stored off chain.
type ExtendedSubmission struct {
	Submission
	CID string `json:"cid" validate:"required"`
}

// UpgradeRequest asks the node to install a new registry version.
type UpgradeRequest struct {
	Version uint16 `json:"version" validate:"required,gt=1"`
}

// String implements the fmt.Stringer interface for logging.
func (sub Submission) String() string {
	return fmt.Sprintf("%s<-%s:%s", sub.ID, sub.ParentID, sub.ContentHash.Hex())
}

// =============================================================================

// Signed is a value signed by a caller. This is how clients provide data
// to the registry. The caller's account is recovered from the signature so
// it can't be forged by the request body.
type Signed[T any] struct {
	Data T        `json:"data"`
	V    *big.Int `json:"v" validate:"required"` // Recovery identifier, either 29 or 30 with registryID.
	R    *big.Int `json:"r" validate:"required"` // First coordinate of the ECDSA signature.
	S    *big.Int `json:"s" validate:"required"` // Second coordinate of the ECDSA signature.
}

// Sign uses the specified private key to sign the value.
func Sign[T any](value T, privateKey *ecdsa.PrivateKey) (Signed[T], error) {
	v, r, s, err := signature.Sign(value, privateKey)
	if err != nil {
		return Signed[T]{}, err
	}

	signed := Signed[T]{
		Data: value,
		V:    v,
		R:    r,
		S:    s,
	}

	return signed, nil
}

// Validate verifies the signature conforms to our standards.
func (sv Signed[T]) Validate() error {
	if err := signature.VerifySignature(sv.V, sv.R, sv.S); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	return nil
}

// FromAccount extracts the account id that signed the value.
func (sv Signed[T]) FromAccount() (AccountID, error) {
	address, err := signature.FromAddress(sv.Data, sv.V, sv.R, sv.S)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	return AccountID(address), nil
}

// SignatureString returns the signature as a string.
func (sv Signed[T]) SignatureString() string {
	return signature.SignatureString(sv.V, sv.R, sv.S)
}
