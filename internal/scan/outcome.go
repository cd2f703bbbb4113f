package scan

import (
	"gymkiosk/internal/attendance"
	"gymkiosk/internal/membership"
)

// Status is the business verdict of a scan.
type Status string

const (
	StatusInvalid      Status = "invalid"
	StatusNoMembership Status = "no_membership"
	StatusExpired      Status = "expired"
	StatusActive       Status = "active"
)

// Outcome is the response contract of one scan.
type Outcome struct {
	OK         bool                   `json:"ok"`
	Status     Status                 `json:"status"`
	Action     attendance.Action      `json:"action,omitempty"`
	Message    string                 `json:"message"`
	Membership *membership.Membership `json:"membership,omitempty"`
	PhotoURL   string                 `json:"photoUrl,omitempty"`
	Log        *attendance.Log        `json:"log,omitempty"`
}
