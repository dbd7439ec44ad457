package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dineqr/menuhub/internal/auth"
	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserStore
}

func NewAuthMiddleware(jwt TokenVerifier, users UserStore) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// resolve walks the full chain: bearer header, signature/expiry check,
// then a live lookup. The token's embedded claims are never trusted as a
// snapshot of the account; a deleted user's still-valid token resolves to
// nothing. A non-nil error means the lookup itself failed, which is a
// server problem rather than a bad credential.
func (m *AuthMiddleware) resolve(c *gin.Context) (user.User, string, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return user.User{}, "Missing or invalid Authorization header", false, nil
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if raw == "" {
		return user.User{}, "Missing or invalid access token", false, nil
	}

	claims, err := m.jwt.Verify(raw)
	if err != nil {
		return user.User{}, "Invalid or expired access token", false, nil
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := m.users.GetByID(cctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "Invalid or expired access token", false, nil
		}

		return user.User{}, "", false, err
	}

	return u, "", true, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, msg, ok, err := m.resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Something went wrong",
				},
			})
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": msg,
				},
			})
			return
		}

		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "account_deactivated",
					"message": "Account has been deactivated",
				},
			})
			return
		}

		c.Set(string(CtxUser), u)

		c.Next()
	}
}

// OptionalAuth attaches an identity when one resolves and stays silent
// otherwise, lookup failures included. Public-or-personalized endpoints
// use it.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _, ok, _ := m.resolve(c)

		if ok && u.IsActive {
			c.Set(string(CtxUser), u)
		}

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(string(CtxUser))
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
