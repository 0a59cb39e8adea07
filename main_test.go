package main

import (
	"iter"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shu-go/ontop/internal/ontop"
)

// pidDesktop answers ProcessID only.
type pidDesktop struct {
	ontop.Desktop
	pids map[ontop.Handle]int
}

func (d pidDesktop) ProcessID(h ontop.Handle) int {
	return d.pids[h]
}

// winDesktop is a desktop of captioned windows keyed by handle.
type winDesktop struct {
	titles  map[ontop.Handle]string
	exStyle map[ontop.Handle]uint32
	// ignore makes SetTopmost succeed without effect.
	ignore map[ontop.Handle]bool

	setCalls int
}

func newWinDesktop() *winDesktop {
	return &winDesktop{
		titles:  map[ontop.Handle]string{},
		exStyle: map[ontop.Handle]uint32{},
		ignore:  map[ontop.Handle]bool{},
	}
}

func (d *winDesktop) Windows() iter.Seq[ontop.Handle] {
	return func(yield func(ontop.Handle) bool) {
		for h := range d.titles {
			if !yield(h) {
				return
			}
		}
	}
}

func (d *winDesktop) IsWindow(h ontop.Handle) bool {
	_, found := d.titles[h]
	return found
}

func (d *winDesktop) IsVisible(h ontop.Handle) bool { return d.IsWindow(h) }
func (d *winDesktop) Title(h ontop.Handle) string { return d.titles[h] }
func (d *winDesktop) Style(h ontop.Handle) uint32 { return ontop.WSCaption }
func (d *winDesktop) ExStyle(h ontop.Handle) uint32 { return d.exStyle[h] }
func (d *winDesktop) Owner(h ontop.Handle) ontop.Handle { return 0 }
func (d *winDesktop) ProcessID(h ontop.Handle) int { return 0 }
func (d *winDesktop) Cloaked(h ontop.Handle) (bool, error) { return false, nil }

func (d *winDesktop) SetTopmost(h ontop.Handle, on bool) error {
	d.setCalls++
	if d.ignore[h] {
		return nil
	}
	if on {
		d.exStyle[h] |= ontop.WSEXTopmost
	} else {
		d.exStyle[h] &^= ontop.WSEXTopmost
	}
	return nil
}

func quickOptions() ontop.Options {
	opts := ontop.DefaultOptions()
	opts.Settle = time.Nanosecond
	opts.Attempts = 1
	return opts
}

func TestApplyTopmost(t *testing.T) {
	w := ontop.Window{Handle: 1, Title: "Notepad"}

	t.Run("Toggle on and off", func(t *testing.T) {
		d := newWinDesktop()
		d.titles[1] = "Notepad"

		msg, err := applyTopmost(d, w, false, quickOptions())
		require.NoError(t, err)
		assert.Equal(t, "Window set to always on top.", msg)
		assert.True(t, ontop.IsTopmost(d, 1))

		msg, err = applyTopmost(d, w, false, quickOptions())
		require.NoError(t, err)
		assert.Equal(t, "Window removed from always on top.", msg)
		assert.False(t, ontop.IsTopmost(d, 1))
	})

	t.Run("Restore topmost window", func(t *testing.T) {
		d := newWinDesktop()
		d.titles[1] = "Notepad"
		d.exStyle[1] = ontop.WSEXTopmost

		msg, err := applyTopmost(d, w, true, quickOptions())
		require.NoError(t, err)
		assert.Equal(t, "Window removed from always on top.", msg)
		assert.False(t, ontop.IsTopmost(d, 1))
	})

	t.Run("Restore leaves normal window alone", func(t *testing.T) {
		d := newWinDesktop()
		d.titles[1] = "Notepad"

		msg, err := applyTopmost(d, w, true, quickOptions())
		require.NoError(t, err)
		assert.Empty(t, msg)
		assert.Equal(t, 0, d.setCalls)
		assert.False(t, ontop.IsTopmost(d, 1))
	})

	t.Run("Restore ignored by the window", func(t *testing.T) {
		d := newWinDesktop()
		d.titles[1] = "Notepad"
		d.exStyle[1] = ontop.WSEXTopmost
		d.ignore[1] = true

		msg, err := applyTopmost(d, w, true, quickOptions())
		assert.Error(t, err)
		assert.Contains(t, msg, "Failed to change always on top status.")
		assert.Contains(t, msg, "Is Now Topmost: Yes")
		assert.True(t, ontop.IsTopmost(d, 1))
	})

	t.Run("Closed window", func(t *testing.T) {
		d := newWinDesktop()

		msg, err := applyTopmost(d, w, false, quickOptions())
		assert.Error(t, err)
		assert.Equal(t, "The window no longer exists.", msg)
		assert.Equal(t, 0, d.setCalls)
	})
}

func TestListRow(t *testing.T) {
	d := newWinDesktop()
	d.titles[0x10] = "Tom & Jerry"
	d.titles[0x20] = "Clock"
	d.exStyle[0x20] = ontop.WSEXTopmost

	var st ontop.State

	row := listRow(d, &st, 0x10, "Tom & Jerry", "")
	assert.True(t, strings.HasPrefix(row, "  0x00000010\t"), row)
	assert.Contains(t, row, "\tok\t")
	assert.Contains(t, row, "\t0\t?\t")
	assert.True(t, strings.HasSuffix(row, `"Tom & Jerry"`), row)

	row = listRow(d, &st, 0x20, "Clock", "cloaked")
	assert.True(t, strings.HasPrefix(row, ontop.TopmostMarker+"0x00000020\t"), row)
	assert.Contains(t, row, "\tcloaked\t")
}

func TestFindTarget(t *testing.T) {
	d := pidDesktop{pids: map[ontop.Handle]int{
		1: 100, // console running ontop
		2: 200,
		3: 300,
	}}
	wins := []ontop.Window{
		{Handle: 1, Title: "cmd - ontop topmost -t note"},
		{Handle: 2, Title: "Untitled - Notepad"},
		{Handle: 3, Title: "notes.txt - Notepad"},
	}
	an := []int{500, 100}

	tests := []struct {
		name   string
		target string
		want   ontop.Handle
		err    error
	}{
		{name: "Case insensitive", target: "NOTEPAD", want: 2},
		{name: "Skips own console", target: "note", want: 2},
		{name: "Substring", target: "notes.txt", want: 3},
		{name: "Default to current window", target: "", want: 1},
		{name: "No match", target: "calc", err: errNoTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := findTarget(d, tt.target, wins, an, false)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Handle)
		})
	}
}

func TestAncestors(t *testing.T) {
	an := ancestors()
	require.NotEmpty(t, an)
	assert.Equal(t, os.Getpid(), an[0])
	if len(an) > 1 {
		assert.Equal(t, os.Getppid(), an[1])
	}
}

func TestOptions(t *testing.T) {
	g := globalCmd{Limit: 10, Attempts: 5, Debug: true}
	opts := g.options()
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 5, opts.Attempts)
	assert.True(t, opts.Debug)
}
