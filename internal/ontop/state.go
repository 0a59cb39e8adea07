package ontop

import (
	"github.com/shu-go/rog"
)

// Tracked is the set of windows this process made topmost.
// Handles keep the order they were added in.
type Tracked struct {
	order []Handle
	index map[Handle]int
}

func (t *Tracked) Has(h Handle) bool {
	_, found := t.index[h]
	return found
}

func (t *Tracked) Len() int {
	return len(t.order)
}

func (t *Tracked) Add(h Handle) {
	if t.Has(h) {
		return
	}
	if t.index == nil {
		t.index = make(map[Handle]int)
	}
	t.index[h] = len(t.order)
	t.order = append(t.order, h)
}

func (t *Tracked) Remove(h Handle) {
	i, found := t.index[h]
	if !found {
		return
	}
	t.order = append(t.order[:i], t.order[i+1:]...)
	delete(t.index, h)
	for j := i; j < len(t.order); j++ {
		t.index[t.order[j]] = j
	}
}

// Handles returns a copy of the tracked handles.
func (t *Tracked) Handles() []Handle {
	return append([]Handle(nil), t.order...)
}

func (t *Tracked) Clear() {
	t.order = nil
	t.index = nil
}

// State is everything the tray keeps between clicks.
// The event loop owns it and hands it to each operation.
type State struct {
	// Self is the program's own main window, excluded from the catalog.
	Self Handle

	Tracked Tracked

	// Candidates is the list the current menu was built from.
	Candidates []Window
}

// RestoreAll drops every tracked window out of the topmost band and empties
// the set. Dead windows and failed calls are skipped, not retried.
// It returns how many live windows were asked to restore.
func RestoreAll(d Desktop, st *State, debug bool) int {
	n := 0
	for _, h := range st.Tracked.Handles() {
		if !d.IsWindow(h) {
			if debug {
				rog.Printf("restore %#x: gone", uintptr(h))
			}
			continue
		}

		n++
		if err := d.SetTopmost(h, false); err != nil && debug {
			rog.Printf("restore %#x: %v", uintptr(h), err)
		}
	}
	st.Tracked.Clear()

	return n
}
