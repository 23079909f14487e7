package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/storage/bolt"
	"github.com/ardanlabs/registry/foundation/registry/storage/storagetest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Bolt(t *testing.T) {
	st, err := bolt.New(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open bolt: %v", failed, err)
	}
	defer st.Close()

	storagetest.Run(t, st)
}

func Test_BoltReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	t.Log("Given the need to keep state across restarts.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen closing and reopening the store.", testID)
		{
			st, err := bolt.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open bolt: %v", failed, testID, err)
			}

			if err := st.Write([]database.Put{{Key: []byte("B001"), Value: []byte("one")}}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write: %v", failed, testID, err)
			}

			if err := st.Close(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to close: %v", failed, testID, err)
			}

			st, err = bolt.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reopen bolt: %v", failed, testID, err)
			}
			defer st.Close()

			value, err := st.Get([]byte("B001"))
			if err != nil || string(value) != "one" {
				t.Fatalf("\t%s\tTest %d:\tShould read the value after reopen: %q %v", failed, testID, value, err)
			}
			t.Logf("\t%s\tTest %d:\tShould read the value after reopen.", success, testID)
		}
	}
}
