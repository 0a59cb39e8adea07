//go:build !windows

package main

import (
	"github.com/shu-go/ontop/internal/ontop"
)

func openDesktop() (ontop.Desktop, error) {
	return nil, errUnsupported
}

func runTray(d ontop.Desktop, opts ontop.Options) error {
	return errUnsupported
}
