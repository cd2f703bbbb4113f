package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gymkiosk/internal/apperr"
	"gymkiosk/internal/identity"
	"gymkiosk/internal/memberid"
	"gymkiosk/internal/scan"
)

const defaultMaxUpload = 8 << 20

type scanRequest struct {
	Payload string `form:"payload" json:"payload"`
}

func (h *Handler) checkIn(c *gin.Context) {
	var req scanRequest
	_ = c.ShouldBind(&req)

	out, err := h.Scanner.HandleScan(c.Request.Context(), req.Payload)
	if err != nil {
		h.logger().Error(c.Request.Context(), "scan failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Server error."})
		return
	}
	status := http.StatusOK
	if out.Status == scan.StatusInvalid {
		status = http.StatusBadRequest
	}
	c.JSON(status, out)
}

type membershipRequest struct {
	UserID string `form:"user_id" json:"user_id"`
	Months int    `form:"months" json:"months"`
}

func (h *Handler) createMonthly(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBind(&req); err != nil || !memberid.Valid(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "user_id must be 6 digits."})
		return
	}
	m, err := h.Memberships.CreateMonthly(c.Request.Context(), req.UserID, req.Months)
	if err != nil {
		h.fail(c, err, "Failed to create monthly membership.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "membership": m})
}

func (h *Handler) createDaily(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBind(&req); err != nil || !memberid.Valid(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "user_id must be 6 digits."})
		return
	}
	m, err := h.Memberships.CreateDaily(c.Request.Context(), req.UserID)
	if err != nil {
		h.fail(c, err, "Failed to create daily pass.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "membership": m})
}

func (h *Handler) createUser(c *gin.Context) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": "photo is too large"})
			return
		}
	}

	password := c.PostForm("password")
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "password is required"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "photo is required"})
		return
	}
	defer file.Close()
	if header.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": "photo is too large"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "photo is required"})
		return
	}

	res, err := h.Enroller.Enrol(c.Request.Context(), identity.EnrolRequest{
		Password: password,
		Name:     c.PostForm("name"),
		Photo:    data,
		Filename: header.Filename,
	})
	if err != nil {
		h.fail(c, err, "Failed to create user.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"email":  res.Email,
		"number": res.Number,
		"userId": res.Identity.ID,
	})
}

// fail reports validation errors verbatim and hides everything else behind message.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusBadRequest {
		c.JSON(status, gin.H{"ok": false, "message": err.Error()})
		return
	}
	h.logger().Error(c.Request.Context(), message, "err", err)
	c.JSON(status, gin.H{"ok": false, "message": message})
}
