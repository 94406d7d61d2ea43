package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/user"
)

const (
	contextClaimsKey = "claims"
	contextTokenKey  = "token"
	contextUserKey   = "user"
)

// authMiddleware guards a route. The checks run in a fixed order: bearer
// extraction, revocation lookup, token decoding, then the role match. An
// empty roles list admits any authenticated user.
func authMiddleware(svc *auth.Service, roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, err := extractBearerToken(ctx)
			if err != nil {
				return err
			}
			claims, err := svc.Authorize(ctx.Request().Context(), token, roles...)
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			ctx.Set(contextTokenKey, token)
			return next(ctx)
		}
	}
}

func extractBearerToken(ctx echo.Context) (string, error) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errMissingToken
	}
	return header[len(prefix):], nil
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, errMissingToken
}

func getContextToken(ctx echo.Context) (string, error) {
	if token, ok := ctx.Get(contextTokenKey).(string); ok {
		return token, nil
	}
	return "", errMissingToken
}

// getContextUser loads the User behind the request's claims, caching it on
// the echo.Context for the duration of the request.
func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
