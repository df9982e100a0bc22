package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"tasktracker/internal/errors"
)

// identityKey is the echo context key the verified identity is stored under.
const identityKey = "identity"

// Protect gates a route group on a valid bearer token. The token is taken
// from the Authorization header ("Bearer <token>"), verified, and the
// decoded identity stored on the context for downstream handlers. Every
// failure mode (absent header, malformed scheme, bad signature, expired
// token) collapses into the same 401.
func Protect(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			identity, err := jwtService.Verify(token)
			if err != nil {
				return nil, err
			}
			c.Set(identityKey, identity)
			return identity, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized(c)
		},
	})
}

// AdminOnly allows only identities holding the admin role. Non-admins get
// 401, not 403, matching the rest of the authorization layer.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok || !identity.IsAdmin() {
				return unauthorized(c)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity Protect stored on the context.
func IdentityFrom(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok
}

func unauthorized(c echo.Context) error {
	he := errors.MapErrorToHTTP(errors.ErrUnauthorized)
	return c.JSON(http.StatusUnauthorized, he.ToErrorResponse())
}
