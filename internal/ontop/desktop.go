package ontop

import "iter"

// Handle is an OS window handle. It is referenced, never owned.
type Handle uintptr

// Desktop is the subset of the window system ontop needs.
type Desktop interface {
	// Windows yields every top-level window in z-order.
	// Each call starts a new enumeration.
	Windows() iter.Seq[Handle]

	IsWindow(h Handle) bool
	IsVisible(h Handle) bool
	Title(h Handle) string
	Style(h Handle) uint32
	ExStyle(h Handle) uint32
	Owner(h Handle) Handle
	ProcessID(h Handle) int

	// Cloaked reports whether the compositor hides h.
	Cloaked(h Handle) (bool, error)

	// SetTopmost changes the z-order band of h without moving, sizing or activating it.
	SetTopmost(h Handle, on bool) error
}

// window style bits
const (
	WSCaption = 0x00C00000

	WSEXTopmost    = 0x00000008
	WSEXToolWindow = 0x00000080
	WSEXAppWindow  = 0x00040000
)

// IsTopmost reports the live topmost bit of h.
func IsTopmost(d Desktop, h Handle) bool {
	return d.ExStyle(h)&WSEXTopmost != 0
}
