package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errInvalidAccessCode    = echo.NewHTTPError(http.StatusForbidden, "invalid access code")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.RemoteStoreError:
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logger.Error("remote store failure", err, getContextIdentity(ctx))
		case *workflow.InvalidTransitionError:
			code = http.StatusConflict
			message = echo.Map{"error": origErr.Error(), "status": origErr.From}
		default:
			switch cause {
			case user.ErrAuthenticationFailed:
				code, message = errAuthenticationFailed.Code, errAuthenticationFailed.Message
			case user.ErrAccountInactive:
				code, message = errAccountDeactivated.Code, errAccountDeactivated.Message
			case settings.ErrVersionConflict:
				code, message = http.StatusConflict, cause.Error()
			case workflow.ErrUnknownAction:
				code, message = http.StatusNotFound, errHttpNotFound.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				if identity := getContextIdentity(ctx); identity != nil {
					logger.Error(msg, errors.Wrap(err, msg), identity)
				} else {
					logger.Error(msg, errors.Wrap(err, msg))
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
