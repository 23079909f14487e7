// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/registry/business/web/auth"
	"github.com/ardanlabs/registry/business/web/errs"
	"github.com/ardanlabs/registry/foundation/events"
	"github.com/ardanlabs/registry/foundation/nameservice"
	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ardanlabs/registry/foundation/registry/state"
	"github.com/ardanlabs/registry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of registry endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Name  string
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The kinds query
// parameter takes a comma separated list of event kinds to receive.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var kinds []string
	if q := r.URL.Query().Get("kinds"); q != "" {
		kinds = strings.Split(q, ",")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID, kinds...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitBlock commits a new block signed by the caller.
func (h Handlers) SubmitBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed database.Signed[database.Submission]
	if err := web.Decode(r, &signed); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	caller, err := auth.Caller(signed)
	if err != nil {
		return err
	}

	h.Log.Infow("submit block", "traceid", v.TraceID, "blk", signed.Data, "caller", caller)

	blk, err := h.State.Submit(caller, signed.Data)
	if err != nil {
		return errs.FromRegistry(err)
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusCreated)
}

// SubmitExtendedBlock commits a new block together with the cid of its
// content.
func (h Handlers) SubmitExtendedBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed database.Signed[database.ExtendedSubmission]
	if err := web.Decode(r, &signed); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	caller, err := auth.Caller(signed)
	if err != nil {
		return err
	}

	h.Log.Infow("submit extended block", "traceid", v.TraceID, "blk", signed.Data.Submission, "cid", signed.Data.CID, "caller", caller)

	blk, err := h.State.SubmitExtended(caller, signed.Data.Submission, signed.Data.CID)
	if err != nil {
		return errs.FromRegistry(err)
	}

	resp := h.toBlock(blk)
	resp.CID = signed.Data.CID

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// QueryBlock returns the block for the specified id.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.State.QueryBlock(web.Param(r, "id"))
	if err != nil {
		return errs.FromRegistry(err)
	}

	resp := h.toBlock(blk)
	if cid, err := h.State.QueryExtension(blk.ID); err == nil {
		resp.CID = cid
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryExtension returns the cid recorded for the specified block id.
func (h Handlers) QueryExtension(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	cid, err := h.State.QueryExtension(id)
	if err != nil {
		return errs.FromRegistry(err)
	}

	return web.Respond(ctx, w, extension{ID: id, CID: cid}, http.StatusOK)
}

// BlocksBySubmitter returns the blocks in commit order. When an account, or
// the name of one, is specified only the blocks it submitted are returned.
func (h Handlers) BlocksBySubmitter(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var account database.AccountID
	if param := web.Param(r, "account"); param != "" {
		var err error
		if account, err = h.NS.Resolve(param); err != nil {
			return errs.FromRegistry(err)
		}
	}

	dbBlocks, err := h.State.QueryBlocksBySubmitter(account)
	if err != nil {
		return errs.FromRegistry(err)
	}

	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
		if cid, err := h.State.QueryExtension(blk.ID); err == nil {
			blocks[i].CID = cid
		}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Status returns a summary of the registry.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := status{
		Name:   h.Name,
		Status: h.State.RetrieveStatus(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// toBlock converts a committed block into its response form.
func (h Handlers) toBlock(blk database.Block) block {
	return block{
		ID:            blk.ID,
		ParentID:      blk.ParentID,
		ContentHash:   blk.ContentHash,
		Method:        blk.Method,
		Note:          blk.Note,
		Submitter:     blk.Submitter,
		SubmitterName: h.NS.Lookup(blk.Submitter),
		TimeStamp:     blk.TimeStamp,
	}
}
