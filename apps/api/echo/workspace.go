package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
	notifysvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/notify"
)

type workspaceResponse struct {
	Session interface{}     `json:"user"`
	Tabs    []workspace.Tab `json:"tabs"`
}

func registerWorkspaceAPI(g *echo.Group) {
	g.GET("/workspace", func(ctx echo.Context) error {
		identity := getContextIdentity(ctx)
		if identity == nil {
			return errUnauthorized
		}
		return ctx.JSON(http.StatusOK, workspaceResponse{Session: identity, Tabs: workspace.TabsFor(identity)})
	})
}

// registerNotificationsAPI upgrades admin sessions to a websocket receiving live record events.
// Browsers cannot set headers on websockets, so the token is read from the `token` query param.
func registerNotificationsAPI(g *echo.Group, auth *tokenAuth, users *user.Service, hub *notifysvc.Hub) {
	g.GET("/ws", func(ctx echo.Context) error {
		identity := getContextIdentity(ctx)
		if identity == nil {
			return errUnauthorized
		}
		return hub.Serve(ctx.Response(), ctx.Request(), *identity)
	}, middleware.JWTWithConfig(auth.queryConfig()), activeSession(users))
}
