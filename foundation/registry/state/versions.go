package state

import (
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// V1 is the layout installed when the registry is deployed.
func V1() layout.Layout {
	return mustLayout(layout.New(1,
		database.MetaSlot(),
		database.BlocksSlot(),
		database.SequenceSlot(),
	))
}

// V2 appends the cids slot that holds the extension records. The slots of
// V1 are carried over untouched.
func V2() layout.Layout {
	return mustLayout(V1().Extend(2,
		database.CIDsSlot(),
	))
}

// Versions returns every layout this binary knows how to run, oldest first.
func Versions() []layout.Layout {
	return []layout.Layout{V1(), V2()}
}

// mustLayout panics if a compiled in layout is malformed.
func mustLayout(l layout.Layout, err error) layout.Layout {
	if err != nil {
		panic(err)
	}

	return l
}
