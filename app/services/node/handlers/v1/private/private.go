// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/registry/business/web/auth"
	"github.com/ardanlabs/registry/business/web/errs"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/state"
	"github.com/ardanlabs/registry/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Build string
	State *state.State
}

// Status returns the status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Build string `json:"build"`
		state.Status
	}{
		Build:  h.Build,
		Status: h.State.RetrieveStatus(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Layout returns the storage layout the node is running.
func (h Handlers) Layout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	l, err := h.State.RetrieveLayout()
	if err != nil {
		return errs.FromRegistry(err)
	}

	return web.Respond(ctx, w, l, http.StatusOK)
}

// Upgrade installs a new registry version. The request must be signed by
// the admin account.
func (h Handlers) Upgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed database.Signed[database.UpgradeRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	caller, err := auth.Caller(signed)
	if err != nil {
		return err
	}

	h.Log.Infow("upgrade", "traceid", v.TraceID, "version", signed.Data.Version, "caller", caller)

	if err := h.State.Upgrade(caller, signed.Data.Version); err != nil {
		return errs.FromRegistry(err)
	}

	l, err := h.State.RetrieveLayout()
	if err != nil {
		return errs.FromRegistry(err)
	}

	return web.Respond(ctx, w, l, http.StatusOK)
}
