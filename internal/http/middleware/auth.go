package middleware

import (
	"errors"
	"net/http"
	"strings"

	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/repo"
	"paso-monitor-server/internal/services"
	"paso-monitor-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const currentUserKey = "current_user"

type AuthConfig struct {
	Secret string
	Users  services.UserStore
}

// TokenAuth guards a route group. requiredRole == "" admits any authenticated
// user. The role check runs against the stored user record, never against the
// role embedded in the token, so a stale token cannot keep revoked privileges.
func TokenAuth(cfg AuthConfig, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "authorization header required")
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "authorization header must use Bearer scheme")
			return
		}

		token, err := jwt.ParseWithClaims(tokenStr, &services.Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*services.Claims)
		if !ok || claims.UserID == "" {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid token payload")
			return
		}

		user, err := cfg.Users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				abort(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
				return
			}
			abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not load user")
			return
		}

		if requiredRole != "" && user.Role != requiredRole {
			abort(c, http.StatusForbidden, "FORBIDDEN", "insufficient role")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func abort(c *gin.Context, status int, code, message string) {
	utils.RespondError(c, utils.NewAppError(status, code, message, nil))
	c.Abort()
}

// CurrentUser returns the user the guard attached to the request context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}
