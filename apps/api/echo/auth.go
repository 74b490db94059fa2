package echoapi

import (
	"crypto/rsa"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

const (
	contextTokenKey     = "userToken"
	contextPrincipalKey = "principal"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidIssuer = echo.NewHTTPError(http.StatusUnauthorized, "invalid token issuer")
)

// Claims represents the identity claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// ParseJWTKey reads the identity provider's PEM encoded RSA public key.
func ParseJWTKey(pem string) (*rsa.PublicKey, error) {
	if pem == "" {
		return nil, errors.New("identity public key not configured")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, errors.Wrap(err, "parsing identity public key")
	}
	return key, nil
}

// newJWTMiddleware verifies RS256 tokens and stores the caller's Principal in the context.
// issuer is only checked when set.
func newJWTMiddleware(key *rsa.PublicKey, issuer string, dir *core.Directory) echo.MiddlewareFunc {
	jwtAuth := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    key,
		SigningMethod: "RS256",
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtAuth(func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, true) {
				return errInvalidIssuer
			}
			ctx.Set(contextPrincipalKey, dir.Principal(claims.Subject, claims.Email))
			return next(ctx)
		})
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (core.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(core.Principal); ok {
		return p, nil
	}
	return core.Principal{}, errUnauthorized
}
