package validate_test

import (
	"math/big"
	"testing"

	"github.com/ardanlabs/registry/business/sys/validate"
	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request payloads.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen fields are missing.", testID)
		{
			signed := database.Signed[database.ExtendedSubmission]{
				V: big.NewInt(29),
				R: big.NewInt(1),
			}

			err := validate.Check(signed)
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

			fields := validate.GetFieldErrors(err).Fields()
			for _, name := range []string{"id", "cid", "s"} {
				if _, exists := fields[name]; !exists {
					t.Fatalf("\t%s\tTest %d:\tShould name the %q field, got %v.", failed, testID, name, fields)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould name the fields by their json tag.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the upgrade request is complete.", testID)
		{
			if err := validate.Check(database.UpgradeRequest{Version: 2}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould pass: %v", failed, testID, err)
			}

			if err := validate.Check(database.UpgradeRequest{Version: 1}); !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse version 1: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould check the version bound.", success, testID)
		}
	}
}
