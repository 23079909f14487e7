package database

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
)

// GenesisParent is the parent id recorded for a block with no predecessor.
const GenesisParent = "0"

// =============================================================================

// Block is the record committed for an anchored content fingerprint.
//
// The field order is the physical layout of the blocks slot. Records are
// encoded positionally, so fields must never be reordered, retyped or
// removed, and no new field may be added here. New data goes in a new slot.
type Block struct {
	ID          string      `json:"id"`           // Caller supplied unique id.
	ParentID    string      `json:"parent_id"`    // Id of the preceding block or GenesisParent.
	ContentHash common.Hash `json:"content_hash"` // Digest of the anchored content.
	Method      string      `json:"method"`       // How the digest was produced.
	Note        string      `json:"note"`         // Free text annotation.
	Submitter   AccountID   `json:"submitter"`    // Account that signed the submission.
	TimeStamp   uint64      `json:"timestamp"`    // Unix seconds at commit.
}

// IsGenesis reports whether the block has no predecessor.
func (b Block) IsGenesis() bool {
	return b.ParentID == GenesisParent
}

// Extension is the record of the cids slot. It is keyed by the id of the
// block it extends and holds the locator of the content stored off chain.
type Extension struct {
	CID string `json:"cid"`
}

// sequenceEntry is the record of the sequence slot. It maps a commit
// sequence number to the id committed at that position.
type sequenceEntry struct {
	ID string
}

// =============================================================================

// ToHash parses a hex-encoded 32 byte digest. Anything that is not exactly
// 32 bytes of hex, or is all zeros, is invalid input.
func ToHash(hex string) (common.Hash, error) {
	data, err := hexutil.Decode(hex)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: content hash: %s", ErrInvalidInput, err)
	}

	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: content hash is %d bytes, expected %d", ErrInvalidInput, len(data), common.HashLength)
	}

	hash := common.BytesToHash(data)
	if hash == (common.Hash{}) {
		return common.Hash{}, fmt.Errorf("%w: content hash is all zeros", ErrInvalidInput)
	}

	return hash, nil
}

// =============================================================================

// encode converts a record into its persisted bytes.
func encode(record any) ([]byte, error) {
	data, err := rlp.EncodeToBytes(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	return data, nil
}

// decode converts persisted bytes back into a record.
func decode(data []byte, record any) error {
	if err := rlp.DecodeBytes(data, record); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	return nil
}
