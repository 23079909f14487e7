// Package storagetest provides the behavior checks every storage engine
// must pass.
package storagetest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Run exercises the engine through the database.Storage contract. The
// storage must be empty.
func Run(t *testing.T, storage database.Storage) {
	t.Log("Given the need to store registry state in an engine.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reading keys that were never written.", testID)
		{
			if _, err := storage.Get([]byte("Bmissing")); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrNotFound: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrNotFound.", success, testID)

			exists, err := storage.Has([]byte("Bmissing"))
			if err != nil || exists {
				t.Fatalf("\t%s\tTest %d:\tShould report the key as absent: %v %v", failed, testID, exists, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report the key as absent.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen writing a set of puts.", testID)
		{
			puts := []database.Put{
				{Key: []byte("B002"), Value: []byte("two")},
				{Key: []byte("B001"), Value: []byte("one")},
				{Key: []byte("S\x00\x01"), Value: []byte("seq")},
				{Key: []byte("C001"), Value: []byte("cid")},
			}

			if err := storage.Write(puts); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to write.", success, testID)

			for _, p := range puts {
				value, err := storage.Get(p.Key)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read %q: %v", failed, testID, p.Key, err)
				}

				if !bytes.Equal(value, p.Value) {
					t.Fatalf("\t%s\tTest %d:\tShould read back %q for %q, got %q.", failed, testID, p.Value, p.Key, value)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould read back every put.", success, testID)

			value, _ := storage.Get([]byte("B001"))
			value[0] = 'X'
			again, _ := storage.Get([]byte("B001"))
			if string(again) != "one" {
				t.Fatalf("\t%s\tTest %d:\tShould not let callers change stored values, got %q.", failed, testID, again)
			}
			t.Logf("\t%s\tTest %d:\tShould not let callers change stored values.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen walking a prefix.", testID)
		{
			var keys []string
			walk := func(key []byte, value []byte) error {
				keys = append(keys, string(key))
				return nil
			}

			if err := storage.ForEach([]byte("B"), walk); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to walk: %v", failed, testID, err)
			}

			if len(keys) != 2 || keys[0] != "B001" || keys[1] != "B002" {
				t.Fatalf("\t%s\tTest %d:\tShould walk only the prefix in key order, got %v.", failed, testID, keys)
			}
			t.Logf("\t%s\tTest %d:\tShould walk only the prefix in key order.", success, testID)

			stop := errors.New("stop")
			var n int
			halt := func(key []byte, value []byte) error {
				n++
				return stop
			}

			if err := storage.ForEach([]byte("B"), halt); !errors.Is(err, stop) || n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould stop on the first error, got %v after %d.", failed, testID, err, n)
			}
			t.Logf("\t%s\tTest %d:\tShould stop on the first error.", success, testID)
		}
	}
}
