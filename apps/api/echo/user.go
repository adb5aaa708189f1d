package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

type (
	authApi struct {
		svc  *user.Service
		auth *tokenAuth
	}

	userApi struct {
		svc *user.Service
	}
)

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *tokenAuth, svc *user.Service) {
	api := authApi{svc: svc, auth: auth}

	ag := g.Group("/auth")
	// TODO: rate limit `/login` and `/register`
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/token-refresh", api.refreshToken, jwt)
	ag.GET("/me", api.me, jwt)
}

func registerUserAPI(g *echo.Group, svc *user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users", requireTab(workspace.TabUsers))
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.GET("/roles", api.queryRoles)
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.POST("/:id/approve", api.approve)
	ug.POST("/:id/deactivate", api.deactivate)
}

// Auth handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	data.Clean()
	if data.Username == "" || data.Password == "" {
		return errAuthenticationFailed
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.generate(api.auth.claims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: sessionOf(usr)})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refresh(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsActive {
		return errAccountDeactivated
	}
	return ctx.JSON(http.StatusOK, sessionOf(usr))
}

// User handlers

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	usr, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) approve(ctx echo.Context) error {
	var data user.ApproveUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApproveUser")
	}
	usr, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "approving user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) deactivate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "deactivating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.RoleOptions)
}

type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Token string   `json:"token"`
		User  *Session `json:"user,omitempty"`
	}

	// Session is what the client knows about the signed in user.
	Session struct {
		user.Identity
		Username     string            `json:"username"`
		Email        string            `json:"email"`
		Capabilities []user.Capability `json:"capabilities"`
	}
)

func (lr *LoginRequest) Clean() {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
}

func sessionOf(usr user.User) *Session {
	return &Session{
		Identity:     *usr.Identity(),
		Username:     usr.Username,
		Email:        usr.Email,
		Capabilities: usr.Capabilities(),
	}
}
