package scanloop

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"gymkiosk/internal/bg"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/memberid"
	"gymkiosk/internal/scan"
)

var preferredLabel = regexp.MustCompile(`(?i)back|rear|environment`)

// Options configures a Controller. Zero values pick production defaults.
type Options struct {
	Runner       bg.Runner
	Scheduler    Scheduler
	RestartDelay time.Duration
	Logger       logging.Logger
}

// Controller owns the scan loop state. All exported methods are safe for
// concurrent use; camera and display calls are made without holding the state lock.
type Controller struct {
	camera  Camera
	checker Checker
	display Display
	runner  bg.Runner
	sched   Scheduler
	delay   time.Duration
	log     logging.Logger

	// ops serializes camera transitions.
	ops sync.Mutex

	mu         sync.Mutex
	ctx        context.Context
	state      State
	processing bool
	devices    []Device
	current    int
	restart    Timer
}

func New(camera Camera, checker Checker, display Display, opts Options) *Controller {
	c := &Controller{
		camera:  camera,
		checker: checker,
		display: display,
		runner:  opts.Runner,
		sched:   opts.Scheduler,
		delay:   opts.RestartDelay,
		log:     opts.Logger,
		ctx:     context.Background(),
		state:   Idle,
	}
	if c.runner == nil {
		c.runner = bg.Async{}
	}
	if c.sched == nil {
		c.sched = clockScheduler{}
	}
	if c.delay <= 0 {
		c.delay = DefaultRestartDelay
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Init enumerates devices, prefers a back-facing one and starts scanning.
func (c *Controller) Init(ctx context.Context) {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	devices, err := c.camera.Devices(ctx)
	if err != nil {
		c.display.SetResult("Camera error: "+err.Error(), BadgeBad)
		return
	}
	if len(devices) == 0 {
		c.display.SetResult("No camera found.", BadgeBad)
		return
	}

	c.mu.Lock()
	c.devices = devices
	c.current = preferredDevice(devices)
	c.mu.Unlock()

	if err := c.startCamera(); err != nil {
		c.display.SetResult("Camera error: "+err.Error(), BadgeBad)
		return
	}
	c.display.SetResult("Point the camera at a QR code.", BadgeNone)
}

func preferredDevice(devices []Device) int {
	for i, d := range devices {
		if preferredLabel.MatchString(d.Label) {
			return i
		}
	}
	return 0
}

// OnDecode receives every decoded string from the camera. Codes that are not
// six digits, and codes arriving while a scan is in flight, are dropped.
func (c *Controller) OnDecode(payload string) {
	if !memberid.Valid(payload) {
		return
	}
	c.mu.Lock()
	if c.processing || c.state != CameraActive {
		c.mu.Unlock()
		return
	}
	c.processing = true
	c.state = Processing
	ctx := c.ctx
	c.mu.Unlock()

	c.runner.Do(func() { c.process(ctx, payload) })
}

func (c *Controller) process(ctx context.Context, payload string) {
	c.display.SetResult("Scanned: "+payload, BadgeNone)
	c.display.HidePhoto()

	c.ops.Lock()
	if c.State() == Processing {
		if err := c.camera.Stop(ctx); err != nil {
			c.log.Debug(ctx, "camera stop before check failed", "err", err)
		}
	}
	c.ops.Unlock()

	out, err := c.checker.Check(ctx, payload)
	c.render(out, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Processing {
		// a manual stop or switch took over while the request was in flight
		c.processing = false
		return
	}
	c.cancelRestartLocked()
	c.restart = c.sched.AfterFunc(c.delay, c.restartScan)
}

func (c *Controller) render(out scan.Outcome, err error) {
	if err != nil {
		c.display.SetResult("Server error: "+err.Error(), BadgeBad)
		return
	}
	if !out.OK {
		c.display.SetResult(orDefault(out.Message, "Error"), BadgeBad)
		return
	}
	switch out.Status {
	case scan.StatusExpired:
		c.display.SetResult(orDefault(out.Message, "Membership expired."), BadgeBad)
		c.display.HidePhoto()
	case scan.StatusNoMembership:
		c.display.SetResult(orDefault(out.Message, "No membership found."), BadgeBad)
		c.display.HidePhoto()
	case scan.StatusActive:
		c.display.SetResult(out.Message, BadgeOK)
		if out.PhotoURL != "" {
			c.display.ShowPhoto(out.PhotoURL)
		}
	default:
		c.display.SetResult(orDefault(out.Message, "Processed."), BadgeNone)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (c *Controller) restartScan() {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	if c.state != Processing {
		c.mu.Unlock()
		return
	}
	c.restart = nil
	c.processing = false
	c.mu.Unlock()

	if err := c.startCamera(); err != nil {
		c.display.SetResult("Restart error: "+err.Error(), BadgeBad)
		return
	}
	c.display.SetResult("Ready for next scan.", BadgeNone)
	c.display.HidePhoto()
}

// Toggle is the stop/start button.
func (c *Controller) Toggle() {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	c.takeOverLocked()
	state := c.state
	ctx := c.ctx
	c.mu.Unlock()

	if state == CameraActive || state == Processing {
		if err := c.camera.Stop(ctx); err != nil {
			c.log.Warn(ctx, "camera stop failed", "err", err)
		}
		c.setState(Stopped)
		c.display.SetResult("Scanner stopped.", BadgeNone)
		c.display.HidePhoto()
		return
	}

	if err := c.startCamera(); err != nil {
		c.display.SetResult("Camera error: "+err.Error(), BadgeBad)
		return
	}
	c.display.SetResult("Scanner running.", BadgeNone)
}

// Switch advances to the next enumerated device and restarts on it.
func (c *Controller) Switch() {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	if len(c.devices) == 0 {
		c.mu.Unlock()
		return
	}
	c.takeOverLocked()
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.camera.Stop(ctx); err != nil {
		c.setState(Idle)
		c.display.SetResult("Camera error: "+err.Error(), BadgeBad)
		return
	}

	c.mu.Lock()
	c.current = (c.current + 1) % len(c.devices)
	c.mu.Unlock()

	if err := c.startCamera(); err != nil {
		c.display.SetResult("Camera error: "+err.Error(), BadgeBad)
		return
	}
	c.display.SetResult("Scanner running.", BadgeNone)
	c.display.HidePhoto()
}

// Close cancels any pending restart and releases the camera.
func (c *Controller) Close() error {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	c.cancelRestartLocked()
	c.state = Stopped
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.camera.Stop(ctx); err != nil {
		return fmt.Errorf("stop camera: %w", err)
	}
	return nil
}

// startCamera starts the current device, or the default one when none were
// enumerated. Caller holds ops.
func (c *Controller) startCamera() error {
	c.mu.Lock()
	deviceID := ""
	if len(c.devices) > 0 {
		deviceID = c.devices[c.current].ID
	}
	c.state = CameraStarting
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.camera.Start(ctx, deviceID, c.OnDecode); err != nil {
		c.setState(Idle)
		c.log.Warn(ctx, "camera start failed", "device", deviceID, "err", err)
		return err
	}
	c.setState(CameraActive)
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) cancelRestartLocked() {
	if c.restart != nil {
		c.restart.Stop()
		c.restart = nil
	}
}

// takeOverLocked cancels a pending restart for a manual action. A scan whose
// result is already rendered releases the guard here; one still in flight
// releases it when its response arrives.
func (c *Controller) takeOverLocked() {
	if c.restart != nil {
		c.cancelRestartLocked()
		c.processing = false
	}
}
