package main

import (
	"fmt"

	"github.com/shu-go/nmfmt"

	"github.com/shu-go/ontop/internal/ontop"
)

type listCmd struct {
	All bool `cli:"all,a" help:"also show rejected windows and why"`
}

func (c listCmd) Run(g globalCmd) error {
	d, err := openDesktop()
	if err != nil {
		return err
	}

	var st ontop.State

	if !c.All {
		wins := ontop.Catalog(d, 0, g.Limit, g.Debug)
		if len(wins) == 0 {
			return ontop.ErrNoWindows
		}
		for _, w := range wins {
			fmt.Println(listRow(d, &st, w.Handle, w.Title, ""))
		}
		return nil
	}

	for h := range d.Windows() {
		reason, w := ontop.Classify(d, 0, h)
		title := w.Title
		if reason != "" {
			title = d.Title(h)
		}
		fmt.Println(listRow(d, &st, h, title, reason))
	}
	return nil
}

func listRow(d ontop.Desktop, st *ontop.State, h ontop.Handle, title, reason string) string {
	marker := ontop.Marker(d, st, h)
	if marker == "" {
		marker = "  "
	}
	if reason == "" {
		reason = "ok"
	}

	pid := d.ProcessID(h)
	return nmfmt.Sprintf("$marker$hwnd\t$reason\t$pid\t$process\t$title:q",
		nmfmt.M{
			"marker":  marker,
			"hwnd":    fmt.Sprintf("%#010x", uintptr(h)),
			"reason":  reason,
			"pid":     pid,
			"process": ontop.ProcessName(pid),
			"title":   title,
		})
}
