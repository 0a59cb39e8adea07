package ontop

import (
	"github.com/shu-go/rog"
)

// MaxMenuWindows caps the tray menu.
const MaxMenuWindows = 50

// Window is a candidate window as seen at enumeration time.
// Title may be stale by the time the user acts on it.
type Window struct {
	Handle Handle
	Title  string
}

type candidate struct {
	d     Desktop
	h     Handle
	title string
}

type rule struct {
	name   string
	reject func(p *candidate) bool
}

// rules is the catalog filter chain, in order. self is the program's own main window.
func rules(self Handle) []rule {
	return []rule{
		{"invisible", func(p *candidate) bool {
			return !p.d.IsVisible(p.h)
		}},
		{"untitled", func(p *candidate) bool {
			p.title = p.d.Title(p.h)
			return p.title == ""
		}},
		{"toolwindow", func(p *candidate) bool {
			return p.d.ExStyle(p.h)&WSEXToolWindow != 0
		}},
		{"owned", func(p *candidate) bool {
			return p.d.Owner(p.h) != 0
		}},
		{"nocaption", func(p *candidate) bool {
			app := p.d.ExStyle(p.h)&WSEXAppWindow != 0
			caption := p.d.Style(p.h)&WSCaption == WSCaption
			return !app && !caption
		}},
		{"cloaked", func(p *candidate) bool {
			cloaked, err := p.d.Cloaked(p.h)
			// eligible when the compositor can't tell
			return err == nil && cloaked
		}},
		{"self", func(p *candidate) bool {
			return self != 0 && p.h == self
		}},
	}
}

func classify(d Desktop, chain []rule, h Handle) (string, Window) {
	p := &candidate{d: d, h: h}
	for _, r := range chain {
		if r.reject(p) {
			return r.name, Window{}
		}
	}
	return "", Window{Handle: h, Title: p.title}
}

// Classify returns the name of the first rule rejecting h,
// or "" and the window record when h is a candidate.
func Classify(d Desktop, self, h Handle) (string, Window) {
	return classify(d, rules(self), h)
}

// Catalog returns up to limit candidate windows in enumeration order.
// limit <= 0 means no limit.
func Catalog(d Desktop, self Handle, limit int, debug bool) []Window {
	chain := rules(self)

	var wins []Window
	for h := range d.Windows() {
		name, w := classify(d, chain, h)
		if name != "" {
			if debug {
				rog.Printf("skip %#x: %s", uintptr(h), name)
			}
			continue
		}

		wins = append(wins, w)
		if limit > 0 && len(wins) >= limit {
			break
		}
	}
	return wins
}
