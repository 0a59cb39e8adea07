package ontop

import (
	"errors"
	"iter"
	"time"
)

type fakeWin struct {
	h        Handle
	title    string
	visible  bool
	style    uint32
	exStyle  uint32
	owner    Handle
	cloaked  bool
	cloakErr error
	pid      int

	dead bool
	// ignore makes SetTopmost a no-op that still reports success.
	ignore bool
	// lag is how many ExStyle reads still see the old bit after SetTopmost.
	lag     int
	pending *bool

	setCalls int
}

type fakeDesktop struct {
	wins []*fakeWin

	enumerated int
}

var _ Desktop = (*fakeDesktop)(nil)

// appWin is a visible, captioned, unowned window.
func appWin(h Handle, title string) *fakeWin {
	return &fakeWin{
		h:       h,
		title:   title,
		visible: true,
		style:   WSCaption,
		pid:     int(h) + 1000,
	}
}

func newFake(wins ...*fakeWin) *fakeDesktop {
	return &fakeDesktop{wins: wins}
}

func (d *fakeDesktop) get(h Handle) *fakeWin {
	for _, w := range d.wins {
		if w.h == h && !w.dead {
			return w
		}
	}
	return nil
}

func (d *fakeDesktop) Windows() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for _, w := range d.wins {
			if w.dead {
				continue
			}
			d.enumerated++
			if !yield(w.h) {
				return
			}
		}
	}
}

func (d *fakeDesktop) IsWindow(h Handle) bool {
	return d.get(h) != nil
}

func (d *fakeDesktop) IsVisible(h Handle) bool {
	w := d.get(h)
	return w != nil && w.visible
}

func (d *fakeDesktop) Title(h Handle) string {
	if w := d.get(h); w != nil {
		return w.title
	}
	return ""
}

func (d *fakeDesktop) Style(h Handle) uint32 {
	if w := d.get(h); w != nil {
		return w.style
	}
	return 0
}

func (d *fakeDesktop) ExStyle(h Handle) uint32 {
	w := d.get(h)
	if w == nil {
		return 0
	}
	if w.pending != nil {
		if w.lag > 0 {
			w.lag--
		} else {
			w.setTopmostBit(*w.pending)
			w.pending = nil
		}
	}
	return w.exStyle
}

func (d *fakeDesktop) Owner(h Handle) Handle {
	if w := d.get(h); w != nil {
		return w.owner
	}
	return 0
}

func (d *fakeDesktop) ProcessID(h Handle) int {
	if w := d.get(h); w != nil {
		return w.pid
	}
	return 0
}

func (d *fakeDesktop) Cloaked(h Handle) (bool, error) {
	w := d.get(h)
	if w == nil {
		return false, errors.New("invalid window handle")
	}
	return w.cloaked, w.cloakErr
}

func (d *fakeDesktop) SetTopmost(h Handle, on bool) error {
	w := d.get(h)
	if w == nil {
		return errors.New("SetWindowPos: invalid window handle")
	}
	w.setCalls++
	if w.ignore {
		return nil
	}
	if w.lag > 0 {
		w.pending = &on
		return nil
	}
	w.setTopmostBit(on)
	return nil
}

func (w *fakeWin) setTopmostBit(on bool) {
	if on {
		w.exStyle |= WSEXTopmost
	} else {
		w.exStyle &^= WSEXTopmost
	}
}

func (w *fakeWin) topmost() bool {
	return w.exStyle&WSEXTopmost != 0
}

// quick runs the operations without real delays.
func quick() Options {
	opts := DefaultOptions()
	opts.sleep = func(time.Duration) {}
	return opts
}
