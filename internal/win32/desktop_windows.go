//go:build windows

package win32

import (
	"iter"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/shu-go/ontop/internal/ontop"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	enumWindows              = user32.NewProc("EnumWindows")
	getWindow                = user32.NewProc("GetWindow")
	getWindowText            = user32.NewProc("GetWindowTextW")
	getWindowTextLength      = user32.NewProc("GetWindowTextLengthW")
	getWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	getWindowLong            = user32.NewProc("GetWindowLongW")
	isWindow                 = user32.NewProc("IsWindow")
	isWindowVisible          = user32.NewProc("IsWindowVisible")
	setWindowPos             = user32.NewProc("SetWindowPos")

	dwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	gwlStyle   = ^uintptr(15) // -16
	gwlEXStyle = ^uintptr(19) // -20

	gwOwner = 4

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010

	hwndTopmost   = ^uintptr(0) // -1
	hwndNoTopmost = ^uintptr(1) // -2

	dwmwaCloaked = 14
)

// enumeration callbacks can't be freed, so one trampoline serves every
// enumeration. The tray and the CLI enumerate from a single thread.
var (
	enumYield func(ontop.Handle) bool
	enumProc  = syscall.NewCallback(func(hwnd syscall.Handle, lparam uintptr) uintptr {
		if enumYield == nil || !enumYield(ontop.Handle(hwnd)) {
			return 0
		}
		return 1
	})
)

// Desktop is the live Win32 desktop.
type Desktop struct{}

var _ ontop.Desktop = Desktop{}

func (Desktop) Windows() iter.Seq[ontop.Handle] {
	return func(yield func(ontop.Handle) bool) {
		prev := enumYield
		enumYield = yield
		defer func() { enumYield = prev }()

		// EnumWindows reports FALSE when the callback stops it early, too.
		enumWindows.Call(enumProc, 0)
	}
}

func (Desktop) IsWindow(h ontop.Handle) bool {
	b, _, _ := isWindow.Call(uintptr(h))
	return b != 0
}

func (Desktop) IsVisible(h ontop.Handle) bool {
	b, _, _ := isWindowVisible.Call(uintptr(h))
	return b != 0
}

func (Desktop) Title(h ontop.Handle) string {
	tlen, _, _ := getWindowTextLength.Call(uintptr(h))
	if tlen == 0 {
		return ""
	}

	tlen++
	buff := make([]uint16, tlen)
	getWindowText.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&buff[0])),
		uintptr(tlen),
	)
	return windows.UTF16ToString(buff)
}

func (Desktop) Style(h ontop.Handle) uint32 {
	style, _, _ := getWindowLong.Call(uintptr(h), gwlStyle)
	return uint32(style)
}

func (Desktop) ExStyle(h ontop.Handle) uint32 {
	style, _, _ := getWindowLong.Call(uintptr(h), gwlEXStyle)
	return uint32(style)
}

func (Desktop) Owner(h ontop.Handle) ontop.Handle {
	owner, _, _ := getWindow.Call(uintptr(h), gwOwner)
	return ontop.Handle(owner)
}

func (Desktop) ProcessID(h ontop.Handle) int {
	var processID uint32
	getWindowThreadProcessId.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&processID)),
	)
	return int(processID)
}

func (Desktop) Cloaked(h ontop.Handle) (bool, error) {
	if err := dwmGetWindowAttribute.Find(); err != nil {
		return false, errors.Wrap(err, "dwmapi")
	}

	var cloaked uint32
	hr, _, _ := dwmGetWindowAttribute.Call(
		uintptr(h),
		dwmwaCloaked,
		uintptr(unsafe.Pointer(&cloaked)),
		unsafe.Sizeof(cloaked),
	)
	if int32(hr) < 0 {
		return false, errors.Errorf("DwmGetWindowAttribute: HRESULT 0x%08X", uint32(hr))
	}
	return cloaked != 0, nil
}

func (Desktop) SetTopmost(h ontop.Handle, on bool) error {
	hwndInsertAfter := hwndNoTopmost
	if on {
		hwndInsertAfter = hwndTopmost
	}

	r, _, err := setWindowPos.Call(
		uintptr(h),
		hwndInsertAfter,
		0,
		0,
		0,
		0,
		swpNoSize|swpNoMove|swpNoActivate)
	if r == 0 {
		return errors.Wrap(err, "SetWindowPos")
	}
	return nil
}
