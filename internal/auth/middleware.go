package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie.
const CookieName = "kiosk_session"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// SetSession writes the session cookie.
func SetSession(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSession expires the session cookie.
func ClearSession(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// RequireSession rejects requests without a valid session cookie. API paths get
// 401 JSON, pages are redirected to the login page.
func RequireSession(signingKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err == nil && token != "" {
			if claims, err := Parse(token, signingKey); err == nil {
				c.Set("claims", claims)
				c.Next()
				return
			}
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Unauthorized."})
			return
		}
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}
