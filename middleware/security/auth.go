package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	security "linguachat/tools/security"
)

// CtxUserKey is where the middleware stores the authenticated user id.
const CtxUserKey = "authUserID"

// Middleware resolves "Authorization: Bearer <token>" into the stable user
// id and aborts unauthenticated requests.
func Middleware(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := security.Verify(opts, token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(CtxUserKey, userID)
		c.Next()
	}
}

// UserID reads the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserKey)
	s, _ := v.(string)
	return s
}
