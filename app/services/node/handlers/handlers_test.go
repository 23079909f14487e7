package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/registry/app/services/node/handlers"
	"github.com/ardanlabs/registry/foundation/events"
	"github.com/ardanlabs/registry/foundation/nameservice"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/state"
	"github.com/ardanlabs/registry/foundation/registry/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const contentHash = "0x0f6887ac85101d6d6425a617edf35bd721b3e8b6d4ab9b24ba2e8c8f5a7d7e2e"

// node holds the muxes of a registry running over memory storage.
type node struct {
	public  http.Handler
	private http.Handler
	admin   *ecdsa.PrivateKey
	user    *ecdsa.PrivateKey
}

func newNode(t *testing.T) node {
	admin, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate the admin key: %v", failed, err)
	}

	user, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate the user key: %v", failed, err)
	}

	folder := t.TempDir()
	if err := crypto.SaveECDSA(filepath.Join(folder, "admin.ecdsa"), admin); err != nil {
		t.Fatalf("\t%s\tShould be able to save the admin key: %v", failed, err)
	}

	ns, err := nameservice.New(folder)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the name service: %v", failed, err)
	}

	st, err := state.New(state.Config{Storage: memory.New()})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	adminID := database.PublicKeyToAccountID(admin.PublicKey)
	if err := st.Initialize(adminID, adminID); err != nil {
		t.Fatalf("\t%s\tShould be able to initialize the registry: %v", failed, err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Build:    "test",
		Name:     "test-registry",
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return node{
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		admin:   admin,
		user:    user,
	}
}

// =============================================================================

func Test_Routes(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to anchor blocks through the web api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the registry runs the first version.", testID)
		{
			w := n.do(t, n.public, http.MethodPost, "/v1/blocks/submit", sign(t, submission(t, "001", "0"), n.admin))
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould get a 201 for a submit, got %d: %s", failed, testID, w.Code, w.Body)
			}

			var blk struct {
				ID            string `json:"id"`
				SubmitterName string `json:"submitter_name"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &blk); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}

			if blk.ID != "001" || blk.SubmitterName != "admin" {
				t.Fatalf("\t%s\tTest %d:\tShould get the block labeled with its submitter, got %+v.", failed, testID, blk)
			}
			t.Logf("\t%s\tTest %d:\tShould get the block labeled with its submitter.", success, testID)

			w = n.do(t, n.public, http.MethodPost, "/v1/blocks/submit", sign(t, submission(t, "001", "0"), n.user))
			if w.Code != http.StatusConflict {
				t.Fatalf("\t%s\tTest %d:\tShould get a 409 for a duplicate, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 409 for a duplicate.", success, testID)

			ext := database.ExtendedSubmission{Submission: submission(t, "002", "001"), CID: "QmTestCID"}
			w = n.do(t, n.public, http.MethodPost, "/v1/blocks/submit/extended", sign(t, ext, n.user))
			if w.Code != http.StatusNotImplemented {
				t.Fatalf("\t%s\tTest %d:\tShould get a 501 for an extended submit, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 501 for an extended submit.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/id/001/cid", nil)
			if w.Code != http.StatusNotImplemented {
				t.Fatalf("\t%s\tTest %d:\tShould get a 501 for a cid lookup, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 501 for a cid lookup.", success, testID)

			w = n.do(t, n.public, http.MethodPost, "/v1/blocks/submit", []byte(`{"data":`))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould get a 400 for a malformed body, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 400 for a malformed body.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the upgrade is requested.", testID)
		{
			req := database.UpgradeRequest{Version: 2}

			w := n.do(t, n.private, http.MethodPost, "/v1/node/upgrade", sign(t, req, n.user))
			if w.Code != http.StatusForbidden {
				t.Fatalf("\t%s\tTest %d:\tShould get a 403 for a non admin caller, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 403 for a non admin caller.", success, testID)

			w = n.do(t, n.private, http.MethodPost, "/v1/node/upgrade", sign(t, database.UpgradeRequest{Version: 9}, n.admin))
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("\t%s\tTest %d:\tShould get a 422 for an unknown version, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 422 for an unknown version.", success, testID)

			w = n.do(t, n.private, http.MethodPost, "/v1/node/upgrade", sign(t, req, n.admin))
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould get a 200 for the admin, got %d: %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 200 for the admin.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the registry runs the second version.", testID)
		{
			ext := database.ExtendedSubmission{Submission: submission(t, "002", "001"), CID: "QmTestCID"}
			w := n.do(t, n.public, http.MethodPost, "/v1/blocks/submit/extended", sign(t, ext, n.user))
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould get a 201 for an extended submit, got %d: %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 201 for an extended submit.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/id/002/cid", nil)
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "QmTestCID") {
				t.Fatalf("\t%s\tTest %d:\tShould get the cid, got %d: %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould get the cid.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/id/001/cid", nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould get a 404 for a block without a cid, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 404 for a block without a cid.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/id/001", nil)
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), contentHash) {
				t.Fatalf("\t%s\tTest %d:\tShould still read the older block, got %d: %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould still read the older block.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/id/999", nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould get a 404 for an unknown block, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 404 for an unknown block.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/list", nil)
			var blocks []struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &blocks); err != nil || len(blocks) != 2 || blocks[0].ID != "001" {
				t.Fatalf("\t%s\tTest %d:\tShould list both blocks in commit order, got %s: %v", failed, testID, w.Body, err)
			}
			t.Logf("\t%s\tTest %d:\tShould list both blocks in commit order.", success, testID)

			account := database.PublicKeyToAccountID(n.user.PublicKey)
			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/list/"+string(account), nil)
			if err := json.Unmarshal(w.Body.Bytes(), &blocks); err != nil || len(blocks) != 1 || blocks[0].ID != "002" {
				t.Fatalf("\t%s\tTest %d:\tShould list the blocks of one submitter, got %s: %v", failed, testID, w.Body, err)
			}
			t.Logf("\t%s\tTest %d:\tShould list the blocks of one submitter.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/list/admin", nil)
			if err := json.Unmarshal(w.Body.Bytes(), &blocks); err != nil || len(blocks) != 1 || blocks[0].ID != "001" {
				t.Fatalf("\t%s\tTest %d:\tShould list the blocks of a named submitter, got %s: %v", failed, testID, w.Body, err)
			}
			t.Logf("\t%s\tTest %d:\tShould list the blocks of a named submitter.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/blocks/list/nobody", nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould get a 400 for an unknown submitter name, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 400 for an unknown submitter name.", success, testID)

			w = n.do(t, n.public, http.MethodGet, "/v1/registry/status", nil)
			var status struct {
				Name    string `json:"name"`
				Version uint16 `json:"version"`
				Blocks  uint64 `json:"blocks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil || status.Version != 2 || status.Blocks != 2 || status.Name != "test-registry" {
				t.Fatalf("\t%s\tTest %d:\tShould report the second version, got %s: %v", failed, testID, w.Body, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report the second version.", success, testID)
		}
	}
}

// =============================================================================

func (n node) do(t *testing.T, mux http.Handler, method string, path string, body []byte) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	return w
}

func submission(t *testing.T, id string, parentID string) database.Submission {
	sub, err := database.NewSubmission(id, parentID, contentHash, "manual", "block "+id)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the submission: %v", failed, err)
	}

	return sub
}

func sign[T any](t *testing.T, value T, privateKey *ecdsa.PrivateKey) []byte {
	signed, err := database.Sign(value, privateKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the value: %v", failed, err)
	}

	data, err := json.Marshal(signed)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to marshal the signed value: %v", failed, err)
	}

	return data
}
