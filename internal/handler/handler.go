// Package handler exposes the kiosk HTTP surface on a gin engine.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gymkiosk/internal/auth"
	"gymkiosk/internal/identity"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/membership"
	"gymkiosk/internal/photos"
	"gymkiosk/internal/scan"
)

// Scanner handles one scanned payload.
type Scanner interface {
	HandleScan(ctx context.Context, payload string) (scan.Outcome, error)
}

// Memberships creates memberships for the admin pages.
type Memberships interface {
	CreateMonthly(ctx context.Context, memberID string, months int) (membership.Membership, error)
	CreateDaily(ctx context.Context, memberID string) (membership.Membership, error)
}

// Enroller creates members.
type Enroller interface {
	Enrol(ctx context.Context, req identity.EnrolRequest) (identity.Enrolment, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Handler holds the HTTP dependencies.
type Handler struct {
	Scanner     Scanner
	Memberships Memberships
	Enroller    Enroller
	Photos      photos.Reader

	Admin          auth.Admin
	SessionKey     string
	SessionTTL     time.Duration
	SecureCookies  bool
	WebDir         string
	MaxUploadBytes int64

	Health map[string]HealthCheck
	Log    logging.Logger
}

func (h *Handler) logger() logging.Logger {
	if h.Log == nil {
		return logging.Discard()
	}
	return h.Log
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.healthz)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, auth.LoginPath) })
	r.GET("/login", h.page("login"))
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.Static("/static", h.webPath("static"))

	private := r.Group("/", auth.RequireSession(h.SessionKey))
	private.GET("/dashboard", h.page("dashboard"))
	private.GET("/create-user", h.page("create_user"))
	private.GET("/create-membership", h.page("create_membership"))
	private.GET("/scan", h.page("scan"))
	if h.Photos != nil {
		private.GET("/photos/:key", h.photo)
	}

	api := private.Group("/api")
	api.POST("/scan/check-in", h.checkIn)
	api.POST("/memberships/monthly", h.createMonthly)
	api.POST("/passes/daily", h.createDaily)
	api.POST("/admin/create-user", h.createUser)
}

func (h *Handler) healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.Health {
		healthy := check(c.Request.Context())
		body[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

func (h *Handler) photo(c *gin.Context) {
	data, contentType, err := h.Photos.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
