package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

const contextUserKey = "user"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64             `json:"oriat,omitempty"`
	Name         string            `json:"name,omitempty"`
	Role         user.Role         `json:"role,omitempty"`
	Capabilities []user.Capability `json:"caps,omitempty"`
}

// Identity returns the session view carried by the claims.
func (c Claims) Identity() *user.Identity {
	return &user.Identity{ID: c.Subject, Name: c.Name, Role: c.Role}
}

type tokenAuth struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newTokenAuth(conf *core.Config) *tokenAuth {
	return &tokenAuth{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    "userToken",
			Claims:        new(Claims),
		},
	}
}

// queryConfig reads the token from the `token` query param, for clients that cannot set headers (websockets).
func (a *tokenAuth) queryConfig() middleware.JWTConfig {
	conf := a.jwtConfig
	conf.TokenLookup = "query:token"
	return conf
}

func (a *tokenAuth) claims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Role:         usr.Role,
		Capabilities: usr.Capabilities(),
	}
}

// generate signs the claims into a JWT token string.
func (a *tokenAuth) generate(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// refresh issues a new token for the context user, as long as the refresh window of the original token is open.
func (a *tokenAuth) refresh(ctx echo.Context, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	if !usr.IsActive {
		return "", errAccountDeactivated
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	return a.generate(a.claims(usr, claims.OrigIssuedAt))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get("userToken").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextIdentity returns the session identity, or nil when the request carries no valid token.
// Once activeSession has loaded the user, the stored identity wins over the token claims.
func getContextIdentity(ctx echo.Context) *user.Identity {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr.Identity()
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil
	}
	return claims.Identity()
}

func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
