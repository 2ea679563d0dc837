// Package middleware provides the echo middleware in front of the skydesk
// API: bearer authentication, role checks and rate limiting.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ActorIDKey = "actor_id"
	RoleKey    = "role"
)

// RoleStaff may run the administrative commands.
const RoleStaff = "staff"

// Claims is the token payload. Subject is the actor's numeric platform id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates an HS256 bearer token signed with secret and stores the
// actor id and role in the context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			claims := new(Claims)
			tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			actorID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || actorID <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}

			c.Set(ActorIDKey, actorID)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

// ActorID returns the authenticated actor, or 0 when there is none.
func ActorID(c echo.Context) int64 {
	id, _ := c.Get(ActorIDKey).(int64)
	return id
}

// Role returns the authenticated actor's role.
func Role(c echo.Context) string {
	role, _ := c.Get(RoleKey).(string)
	return role
}

// NewToken signs a token for actorID with role. The binary uses it for
// operator tooling; tests use it to authenticate requests.
func NewToken(secret string, actorID int64, role string, opts ...func(*Claims)) (string, error) {
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(actorID, 10),
		},
	}
	for _, opt := range opts {
		opt(claims)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
