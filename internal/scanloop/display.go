package scanloop

import (
	"fmt"
	"io"
	"sync"
)

// TermDisplay prints results to a terminal.
type TermDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTermDisplay(w io.Writer) *TermDisplay {
	return &TermDisplay{w: w}
}

func (d *TermDisplay) SetResult(msg string, badge Badge) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if badge == BadgeNone {
		fmt.Fprintln(d.w, msg)
		return
	}
	fmt.Fprintf(d.w, "%s [%s]\n", msg, badge)
}

func (d *TermDisplay) ShowPhoto(url string) {
	if url == "" {
		d.HidePhoto()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "photo: %s\n", url)
}

// HidePhoto is a no-op; a terminal has nothing to clear.
func (d *TermDisplay) HidePhoto() {}
