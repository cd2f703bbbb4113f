package scanloop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gymkiosk/internal/apperr"
)

// StdinDevice names the process's standard input as a scanner.
const StdinDevice = "stdin"

// LineCamera reads codes from keyboard-wedge or serial QR scanners, which emit
// one newline-terminated code per read. Each device is opened once and read
// continuously; lines arriving while the device is not started are dropped.
type LineCamera struct {
	devices []string
	open    func(id string) (io.ReadCloser, error)

	mu       sync.Mutex
	readers  map[string]io.ReadCloser
	active   string
	onDecode func(string)
}

func NewLineCamera(devices []string) *LineCamera {
	return &LineCamera{
		devices: devices,
		open:    openDevice,
		readers: make(map[string]io.ReadCloser),
	}
}

func openDevice(id string) (io.ReadCloser, error) {
	if id == StdinDevice {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(id)
}

func (l *LineCamera) Devices(ctx context.Context) ([]Device, error) {
	out := make([]Device, 0, len(l.devices))
	for _, d := range l.devices {
		out = append(out, Device{ID: d, Label: d})
	}
	return out, nil
}

// Start routes decoded lines from deviceID to onDecode. An empty deviceID
// selects the first configured device.
func (l *LineCamera) Start(ctx context.Context, deviceID string, onDecode func(string)) error {
	if deviceID == "" {
		if len(l.devices) == 0 {
			return fmt.Errorf("no scanner configured: %w", apperr.ErrDevice)
		}
		deviceID = l.devices[0]
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.readers[deviceID]; !ok {
		r, err := l.open(deviceID)
		if err != nil {
			return fmt.Errorf("open %s: %w: %w", deviceID, apperr.ErrDevice, err)
		}
		l.readers[deviceID] = r
		go l.read(deviceID, r)
	}
	l.active = deviceID
	l.onDecode = onDecode
	return nil
}

func (l *LineCamera) Stop(ctx context.Context) error {
	l.mu.Lock()
	l.active = ""
	l.onDecode = nil
	l.mu.Unlock()
	return nil
}

// Close releases every opened device.
func (l *LineCamera) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for id, r := range l.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.readers, id)
	}
	l.active = ""
	l.onDecode = nil
	return first
}

func (l *LineCamera) read(id string, r io.ReadCloser) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		l.mu.Lock()
		cb := l.onDecode
		if l.active != id {
			cb = nil
		}
		l.mu.Unlock()
		if cb != nil {
			cb(line)
		}
	}

	l.mu.Lock()
	if cur, ok := l.readers[id]; ok && cur == r {
		delete(l.readers, id)
	}
	l.mu.Unlock()
}
