package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/shu-go/nmfmt"

	"github.com/shu-go/ontop/internal/ontop"
)

type topmostCmd struct {
	Target  string `cli:"target,t=WINDOW_TITLE" help:"default to current window"`
	Restore bool   `cli:"restore,r" help:"always remove topmost instead of toggling"`
}

func (c topmostCmd) Run(g globalCmd) error {
	d, err := openDesktop()
	if err != nil {
		return err
	}

	wins := ontop.Catalog(d, 0, 0, g.Debug)
	target, err := findTarget(d, c.Target, wins, ancestors(), g.Debug)
	if err != nil {
		return err
	}

	g.debug(os.Stderr, "target $=title:q $=restore\n",
		nmfmt.M{
			"title":   target.Title,
			"restore": c.Restore,
		})

	msg, err := applyTopmost(d, target, c.Restore, g.options())
	if msg != "" {
		fmt.Println(msg)
	}
	return err
}

// applyTopmost toggles the topmost bit of w and verifies it. With restore,
// a window that is not topmost is left alone and msg is empty.
func applyTopmost(d ontop.Desktop, w ontop.Window, restore bool, opts ontop.Options) (msg string, err error) {
	if restore && !ontop.IsTopmost(d, w.Handle) {
		return "", nil
	}

	var st ontop.State
	r := ontop.Toggle(d, &st, w.Handle, opts)
	if !r.OK() {
		return r.Message(), errors.Errorf("toggle %q: %v", w.Title, r.Outcome)
	}
	return r.Message(), nil
}
