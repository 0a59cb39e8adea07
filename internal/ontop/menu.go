package ontop

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shu-go/nmfmt"
)

// menu command ids
const (
	IDExit       = 1001
	IDRestoreAll = 1002
	IDWindowBase = 2000
)

const (
	TrackedMarker = "● "
	TopmostMarker = "✓ "
)

// ErrNoWindows is returned when nothing on the desktop is a candidate.
var ErrNoWindows = errors.New("no windows found")

// MenuItem is one line of the tray menu. A zero ID is a separator.
type MenuItem struct {
	ID    int
	Label string
}

func (i MenuItem) Separator() bool {
	return i.ID == 0
}

// Marker is the menu prefix for h: tracked windows first, then any topmost one.
func Marker(d Desktop, st *State, h Handle) string {
	if st.Tracked.Has(h) {
		return TrackedMarker
	}
	if IsTopmost(d, h) {
		return TopmostMarker
	}
	return ""
}

// BuildMenu rebuilds st.Candidates and returns the menu for it.
func BuildMenu(d Desktop, st *State, opts Options) ([]MenuItem, error) {
	limit := opts.Limit
	if limit <= 0 || limit > MaxMenuWindows {
		limit = MaxMenuWindows
	}

	st.Candidates = Catalog(d, st.Self, limit, opts.Debug)
	if len(st.Candidates) == 0 {
		return nil, ErrNoWindows
	}

	var items []MenuItem

	if n := st.Tracked.Len(); n > 0 {
		items = append(items,
			MenuItem{
				ID:    IDRestoreAll,
				Label: nmfmt.Sprintf("Restore All ($n windows)", nmfmt.M{"n": n}),
			},
			MenuItem{})
	}

	for i, w := range st.Candidates {
		items = append(items, MenuItem{
			ID:    IDWindowBase + i,
			Label: Marker(d, st, w.Handle) + menuText(w.Title),
		})
	}

	items = append(items,
		MenuItem{},
		MenuItem{ID: IDExit, Label: "Exit"})

	return items, nil
}

// menuText keeps & in titles from turning into accelerators.
func menuText(s string) string {
	return strings.ReplaceAll(s, "&", "&&")
}

// Action is what the tray does after a selection.
type Action struct {
	// Message, if any, is shown to the user.
	Message string
	// Error marks Message as an error.
	Error bool
	// Quit ends the message loop.
	Quit bool

	Result *Result
}

// Dispatch carries out the menu command id against st.Candidates.
// Unknown ids, including 0 for a dismissed menu, do nothing.
func Dispatch(d Desktop, st *State, id int, opts Options) Action {
	switch {
	case id == IDRestoreAll:
		RestoreAll(d, st, opts.Debug)
		return Action{Message: "All windows restored to normal."}

	case id == IDExit:
		RestoreAll(d, st, opts.Debug)
		return Action{Quit: true}

	case id >= IDWindowBase && id < IDWindowBase+len(st.Candidates):
		r := Toggle(d, st, st.Candidates[id-IDWindowBase].Handle, opts)
		return Action{
			Message: r.Message(),
			Error:   !r.OK(),
			Result:  &r,
		}
	}

	return Action{}
}
