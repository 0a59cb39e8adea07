package ontop

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/shu-go/nmfmt"
	"github.com/shu-go/rog"
)

// Options tune the operations.
type Options struct {
	// Limit caps the catalog. <= 0 is unlimited.
	Limit int

	// Settle is how long to wait before each check of the topmost bit.
	Settle time.Duration
	// Attempts is how many times the bit is checked after the change.
	Attempts int

	Debug bool

	sleep func(time.Duration)
}

// DefaultOptions match the tray's behavior.
func DefaultOptions() Options {
	return Options{
		Limit:    MaxMenuWindows,
		Settle:   100 * time.Millisecond,
		Attempts: 3,
	}
}

func (o Options) wait() {
	if o.sleep != nil {
		o.sleep(o.Settle)
		return
	}
	time.Sleep(o.Settle)
}

// Outcome is what a toggle did.
type Outcome int

const (
	Failed Outcome = iota
	Promoted
	Demoted
	Gone
)

func (o Outcome) String() string {
	switch o {
	case Promoted:
		return "promoted"
	case Demoted:
		return "demoted"
	case Gone:
		return "gone"
	default:
		return "failed"
	}
}

// Result describes a toggle.
type Result struct {
	Outcome Outcome

	Handle  Handle
	Title   string
	PID     int
	Process string

	Style         uint32
	ExStyleBefore uint32
	ExStyleAfter  uint32
	WasTopmost    bool
	IsTopmost     bool
	Checks        int

	// SetWindowPosErr is the OS error of the z-order call, if any.
	SetWindowPosErr error
}

func (r Result) OK() bool {
	return r.Outcome == Promoted || r.Outcome == Demoted
}

// Message is the text shown to the user.
func (r Result) Message() string {
	switch r.Outcome {
	case Promoted:
		return "Window set to always on top."
	case Demoted:
		return "Window removed from always on top."
	case Gone:
		return "The window no longer exists."
	}

	call := "TRUE"
	lastErr := "0"
	if r.SetWindowPosErr != nil {
		call = "FALSE"
		lastErr = r.SetWindowPosErr.Error()
	}

	return nmfmt.Sprintf(`Failed to change always on top status.

Debug Info:
Window: $title
HWND: $hwnd
Process ID: $pid ($process)
SetWindowPos returned: $call
GetLastError: $lasterr
Style: $style
ExStyle: $exbefore -> $exafter
Was Topmost: $was
Is Now Topmost: $is
Checks: $checks`,
		nmfmt.M{
			"title":    r.Title,
			"hwnd":     fmt.Sprintf("%#x", uintptr(r.Handle)),
			"pid":      r.PID,
			"process":  r.Process,
			"call":     call,
			"lasterr":  lastErr,
			"style":    fmt.Sprintf("0x%08X", r.Style),
			"exbefore": fmt.Sprintf("0x%08X", r.ExStyleBefore),
			"exafter":  fmt.Sprintf("0x%08X", r.ExStyleAfter),
			"was":      yesNo(r.WasTopmost),
			"is":       yesNo(r.IsTopmost),
			"checks":   r.Checks,
		})
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Toggle flips the topmost bit of h and verifies the change, polling up to
// opts.Attempts times. Tracked membership follows the verified state.
// The OS call is never retried.
func Toggle(d Desktop, st *State, h Handle, opts Options) Result {
	r := Result{Handle: h}

	if !d.IsWindow(h) {
		st.Tracked.Remove(h)
		r.Outcome = Gone
		if opts.Debug {
			rog.Printf("toggle %#x: gone", uintptr(h))
		}
		return r
	}

	r.Title = d.Title(h)
	r.PID = d.ProcessID(h)
	r.Process = ProcessName(r.PID)
	r.Style = d.Style(h)
	r.ExStyleBefore = d.ExStyle(h)
	r.WasTopmost = r.ExStyleBefore&WSEXTopmost != 0

	r.SetWindowPosErr = d.SetTopmost(h, !r.WasTopmost)

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for r.Checks = 1; ; r.Checks++ {
		opts.wait()
		r.ExStyleAfter = d.ExStyle(h)
		r.IsTopmost = r.ExStyleAfter&WSEXTopmost != 0
		if r.IsTopmost != r.WasTopmost || r.Checks >= attempts {
			break
		}
	}

	switch {
	case !r.WasTopmost && r.IsTopmost:
		r.Outcome = Promoted
		st.Tracked.Add(h)
	case r.WasTopmost && !r.IsTopmost:
		r.Outcome = Demoted
		st.Tracked.Remove(h)
	default:
		r.Outcome = Failed
		if !r.WasTopmost {
			st.Tracked.Remove(h)
		}
	}

	if opts.Debug {
		rog.Printf("toggle %#x %q: %v after %d check(s), err=%v", uintptr(h), r.Title, r.Outcome, r.Checks, r.SetWindowPosErr)
	}

	return r
}

// ProcessName returns the executable name of pid, or "?".
func ProcessName(pid int) string {
	if pid == 0 {
		return "?"
	}
	p, err := ps.FindProcess(pid)
	if p == nil || err != nil {
		return "?"
	}
	return p.Executable()
}
