package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/registry/business/web/errs"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/layout"
	"github.com/ardanlabs/registry/foundation/registry/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_FromRegistry(t *testing.T) {
	tt := []struct {
		err    error
		status int
	}{
		{err: database.ErrInvalidInput, status: http.StatusBadRequest},
		{err: database.ErrDuplicateID, status: http.StatusConflict},
		{err: database.ErrNotFound, status: http.StatusNotFound},
		{err: database.ErrUnsupported, status: http.StatusNotImplemented},
		{err: state.ErrUnauthorized, status: http.StatusForbidden},
		{err: state.ErrAlreadyInitialized, status: http.StatusConflict},
		{err: state.ErrNotInitialized, status: http.StatusServiceUnavailable},
		{err: layout.ErrIncompatible, status: http.StatusUnprocessableEntity},
	}

	t.Log("Given the need to map registry errors onto HTTP statuses.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %q.", testID, tst.err)
			{
				err := errs.FromRegistry(fmt.Errorf("context: %w", tst.err))

				trusted := errs.GetTrusted(err)
				if trusted == nil || trusted.Status != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould get status %d, got %+v.", failed, testID, tst.status, trusted)
				}

				if !errors.Is(err, tst.err) {
					t.Fatalf("\t%s\tTest %d:\tShould keep the cause.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, tst.status)
			}
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen handling an undeclared error.", testID)
		{
			if errs.IsTrusted(errs.FromRegistry(errors.New("disk full"))) {
				t.Fatalf("\t%s\tTest %d:\tShould not trust the error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not trust the error.", success, testID)
		}
	}
}
