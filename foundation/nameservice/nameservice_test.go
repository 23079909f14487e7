package nameservice_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/registry/foundation/nameservice"
	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	root := t.TempDir()
	key := "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

	if err := os.WriteFile(filepath.Join(root, "kennedy.ecdsa"), []byte(key), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the key file: %v", failed, err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the text file: %v", failed, err)
	}

	t.Log("Given the need to name accounts from key files.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reading a folder of keys.", testID)
		{
			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the folder: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to read the folder.", success, testID)

			accountID := database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
			if name := ns.Lookup(accountID); name != "kennedy" {
				t.Fatalf("\t%s\tTest %d:\tShould name the account kennedy, got %q.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould name the account kennedy.", success, testID)

			unknown := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
			if name := ns.Lookup(unknown); name != string(unknown) {
				t.Fatalf("\t%s\tTest %d:\tShould fall back to the account id, got %q.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould fall back to the account id.", success, testID)

			if len(ns.Copy()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould hold exactly one account.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold exactly one account.", success, testID)

			if name := ns.Lookup("0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4"); name != "kennedy" {
				t.Fatalf("\t%s\tTest %d:\tShould name a lower case spelling of the account, got %q.", failed, testID, name)
			}
			t.Logf("\t%s\tTest %d:\tShould name a lower case spelling of the account.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen resolving names back to accounts.", testID)
		{
			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the folder: %v", failed, testID, err)
			}

			accountID, err := ns.Resolve("kennedy")
			if err != nil || accountID != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
				t.Fatalf("\t%s\tTest %d:\tShould resolve the name, got %s: %v", failed, testID, accountID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve the name.", success, testID)

			accountID, err = ns.Resolve("0xf01813e4b85e178a83e29b8e7bf26bd830a25f32")
			if err != nil || accountID != "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32" {
				t.Fatalf("\t%s\tTest %d:\tShould resolve an account id, got %s: %v", failed, testID, accountID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve an account id.", success, testID)

			if _, err := ns.Resolve("nobody"); !errors.Is(err, database.ErrInvalidInput) {
				t.Fatalf("\t%s\tTest %d:\tShould reject an unknown name: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an unknown name.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen two key files share a name.", testID)
		{
			sub := filepath.Join(root, "team")
			if err := os.Mkdir(sub, 0700); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create the folder: %v", failed, testID, err)
			}

			other := "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
			if err := os.WriteFile(filepath.Join(sub, "kennedy.ecdsa"), []byte(other), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the key file: %v", failed, testID, err)
			}

			if _, err := nameservice.New(root); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the duplicate name.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the duplicate name.", success, testID)
		}
	}
}
