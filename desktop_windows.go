//go:build windows

package main

import (
	"github.com/shu-go/ontop/internal/ontop"
	"github.com/shu-go/ontop/internal/win32"
)

func openDesktop() (ontop.Desktop, error) {
	return win32.Desktop{}, nil
}

func runTray(d ontop.Desktop, opts ontop.Options) error {
	ok, release, err := win32.Lock()
	if err != nil {
		return err
	}
	if !ok {
		win32.MessageBox(0, "Always On Top Manager is already running!", "Info", false)
		return nil
	}
	defer release()

	t := &win32.Tray{
		Desktop: d,
		Options: opts,
	}
	return t.Run()
}
