package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"gymkiosk/internal/auth"
)

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBind(&req)

	if !h.Admin.Verify(req.Email, req.Password) {
		h.logger().Warn(c.Request.Context(), "login rejected", "email", req.Email, "ip", c.ClientIP())
		if wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Invalid credentials."})
			return
		}
		h.servePage(c, http.StatusUnauthorized, "login")
		return
	}

	token, _, err := auth.Issue(h.Admin.Email, h.SessionKey, h.SessionTTL)
	if err != nil {
		h.logger().Error(c.Request.Context(), "session issue failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Server error."})
		return
	}
	auth.SetSession(c, token, h.SessionTTL, h.SecureCookies)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	auth.ClearSession(c, h.SecureCookies)
	c.Redirect(http.StatusSeeOther, auth.LoginPath)
}

func (h *Handler) webPath(elem ...string) string {
	return filepath.Join(append([]string{h.WebDir}, elem...)...)
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.servePage(c, http.StatusOK, name)
	}
}

func (h *Handler) servePage(c *gin.Context, status int, name string) {
	buf, err := os.ReadFile(h.webPath(name + ".html"))
	if err != nil {
		c.String(http.StatusNotFound, "page %s not available", name)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf)
}
