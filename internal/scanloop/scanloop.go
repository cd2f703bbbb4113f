// Package scanloop drives a kiosk scanner: one decoded code at a time, a
// network round trip per code, then an automatic restart of the camera.
package scanloop

import (
	"context"
	"time"

	"gymkiosk/internal/scan"
)

// DefaultRestartDelay is the pause between a rendered result and the next scan.
const DefaultRestartDelay = 3000 * time.Millisecond

// State is the controller's lifecycle position.
type State int

const (
	Idle State = iota
	CameraStarting
	CameraActive
	Processing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CameraStarting:
		return "camera_starting"
	case CameraActive:
		return "camera_active"
	case Processing:
		return "processing"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Badge marks a rendered result as good or bad.
type Badge string

const (
	BadgeNone Badge = ""
	BadgeOK   Badge = "ok"
	BadgeBad  Badge = "bad"
)

// Device is one enumerated camera or scanner.
type Device struct {
	ID    string
	Label string
}

// Camera produces decoded strings from a device. Start with an empty deviceID
// picks the default environment-facing device.
type Camera interface {
	Devices(ctx context.Context) ([]Device, error)
	Start(ctx context.Context, deviceID string, onDecode func(string)) error
	Stop(ctx context.Context) error
}

// Checker submits a scanned code to the backend.
type Checker interface {
	Check(ctx context.Context, payload string) (scan.Outcome, error)
}

// Display renders results for the person at the kiosk.
type Display interface {
	SetResult(msg string, badge Badge)
	ShowPhoto(url string)
	HidePhoto()
}

// Timer is a cancellable scheduled task.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
