package public

import (
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/state"
	"github.com/ethereum/go-ethereum/common"
)

type block struct {
	ID            string             `json:"id"`
	ParentID      string             `json:"parent_id"`
	ContentHash   common.Hash        `json:"content_hash"`
	Method        string             `json:"method"`
	Note          string             `json:"note"`
	Submitter     database.AccountID `json:"submitter"`
	SubmitterName string             `json:"submitter_name"`
	TimeStamp     uint64             `json:"timestamp"`
	CID           string             `json:"cid,omitempty"`
}

type extension struct {
	ID  string `json:"id"`
	CID string `json:"cid"`
}

type status struct {
	Name string `json:"name"`
	state.Status
}
