package middleware

import (
	"strings"

	"trackit-api/internal/apperror"
	"trackit-api/internal/database"
	"trackit-api/internal/models"
	"trackit-api/internal/response"
	"trackit-api/internal/services"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key holding the session *models.User.
const UserKey = "user"

// SessionAuth resolves the acting user from the session cookie, falling back
// to an Authorization bearer token and, for websocket upgrades where custom
// headers cannot be set, a token query parameter.
func SessionAuth(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			response.Abort(c, apperror.Authentication("Not authenticated, please log in"))
			return
		}

		users := services.NewUserService(database.GetDB(), services.UserOptions{})
		user, err := users.ResolveSessionUser(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// RequireRole rejects users whose role is not listed. Must run after SessionAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, apperror.Authentication("Not authenticated, please log in"))
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, apperror.Forbidden("You do not have permission to perform this action"))
	}
}

// CurrentUser returns the user stored by SessionAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
