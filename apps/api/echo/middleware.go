package echoapi

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

const (
	accessCodeHeader = "X-Access-Code"
	accessCodeParam  = "access_code"
)

// requireRoles lets through the requests whose session role is in `allowed`.
func requireRoles(allowed user.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			switch user.Authorize(getContextIdentity(ctx), allowed) {
			case user.Allow:
				return next(ctx)
			case user.Unauthenticated:
				return errUnauthorized
			default:
				return errHttpForbidden
			}
		}
	}
}

// activeSession reloads the session user on every admin request. Deactivated accounts are refused and
// the stored role, not the one signed into the token, is what the guards check.
func activeSession(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}

// requireTab guards the endpoints behind an admin workspace tab.
func requireTab(key workspace.TabKey) echo.MiddlewareFunc {
	return requireRoles(workspace.MustGet(key).AllowedRoles())
}

// accessCodeGate rejects the requests that do not carry the admin access code. An empty code disables the gate.
func accessCodeGate(code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if code == "" {
			return next
		}
		return func(ctx echo.Context) error {
			given := ctx.Request().Header.Get(accessCodeHeader)
			if given == "" {
				given = ctx.QueryParam(accessCodeParam)
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(code)) != 1 {
				return errInvalidAccessCode
			}
			return next(ctx)
		}
	}
}
