// Package auth issues and verifies the admin tokens that guard write routes.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/hrygo/eventdesk/server/internal/errors"
)

const (
	// Issuer is the iss claim of every token.
	Issuer = "eventdesk"
	// AdminSubject is the sub claim of admin tokens.
	AdminSubject = "admin"

	claimsContextKey = "auth.claims"
)

// Claims are the JWT claims carried by an admin token.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateAdminToken signs an admin token with secret. A zero ttl yields a
// token that never expires.
func GenerateAdminToken(secret string, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required")
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			Subject:  AdminSubject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return token, nil
}

// Authenticator verifies bearer tokens signed with a shared secret.
type Authenticator struct {
	secret string
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// ParseToken verifies token and returns its claims.
func (a *Authenticator) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(a.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(AdminSubject),
	)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}
	return claims, nil
}

// Authenticate verifies an Authorization header value of the form
// "Bearer <token>".
func (a *Authenticator) Authenticate(authHeader string) (*Claims, error) {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return nil, errors.New("missing bearer token")
	}
	return a.ParseToken(token)
}

// Middleware attaches the claims of a valid bearer token to the request.
// Requests without a valid token pass through anonymously.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
				if claims, err := a.Authenticate(header); err == nil {
					c.Set(claimsContextKey, claims)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects requests that Middleware did not authenticate.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="eventdesk"`)
			return &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: http.StatusText(http.StatusUnauthorized)}
		}
		return next(c)
	}
}

// IsAdmin reports whether the request carries a valid admin token.
func IsAdmin(c echo.Context) bool {
	_, ok := c.Get(claimsContextKey).(*Claims)
	return ok
}
