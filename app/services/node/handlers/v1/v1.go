// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/registry/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/registry/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/registry/foundation/events"
	"github.com/ardanlabs/registry/foundation/nameservice"
	"github.com/ardanlabs/registry/foundation/registry/state"
	"github.com/ardanlabs/registry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Build string
	Name  string
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		Name:  cfg.Name,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/registry/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.BlocksBySubmitter)
	app.Handle(http.MethodGet, version, "/blocks/list/:account", pbl.BlocksBySubmitter)
	app.Handle(http.MethodGet, version, "/blocks/id/:id", pbl.QueryBlock)
	app.Handle(http.MethodGet, version, "/blocks/id/:id/cid", pbl.QueryExtension)
	app.Handle(http.MethodPost, version, "/blocks/submit", pbl.SubmitBlock)
	app.Handle(http.MethodPost, version, "/blocks/submit/extended", pbl.SubmitExtendedBlock)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		Build: cfg.Build,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/layout", prv.Layout)
	app.Handle(http.MethodPost, version, "/node/upgrade", prv.Upgrade)
}
