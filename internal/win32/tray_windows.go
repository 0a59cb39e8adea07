//go:build windows

package win32

import (
	"runtime"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/shu-go/rog"
	"golang.org/x/sys/windows"

	"github.com/shu-go/ontop/internal/ontop"
)

const (
	AppName   = "ontop"
	className = "OnTopTrayClass"
	tooltip   = "Always On Top Manager"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	shell32  = windows.NewLazySystemDLL("shell32.dll")

	getModuleHandle = kernel32.NewProc("GetModuleHandleW")

	registerClassEx     = user32.NewProc("RegisterClassExW")
	createWindowEx      = user32.NewProc("CreateWindowExW")
	defWindowProc       = user32.NewProc("DefWindowProcW")
	destroyWindow       = user32.NewProc("DestroyWindow")
	getMessage          = user32.NewProc("GetMessageW")
	translateMessage    = user32.NewProc("TranslateMessage")
	dispatchMessage     = user32.NewProc("DispatchMessageW")
	postMessage         = user32.NewProc("PostMessageW")
	postQuitMessage     = user32.NewProc("PostQuitMessage")
	loadIcon            = user32.NewProc("LoadIconW")
	createPopupMenu     = user32.NewProc("CreatePopupMenu")
	appendMenu          = user32.NewProc("AppendMenuW")
	trackPopupMenu      = user32.NewProc("TrackPopupMenu")
	destroyMenu         = user32.NewProc("DestroyMenu")
	getCursorPos        = user32.NewProc("GetCursorPos")
	setForegroundWindow = user32.NewProc("SetForegroundWindow")

	shellNotifyIcon = shell32.NewProc("Shell_NotifyIconW")
)

const (
	wmNull      = 0x0000
	wmDestroy   = 0x0002
	wmClose     = 0x0010
	wmLButtonUp = 0x0202
	wmRButtonUp = 0x0205
	wmUser      = 0x0400
	wmTrayIcon  = wmUser + 1

	wsOverlappedWindow = 0x00CF0000
	cwUseDefault       = 0x80000000

	nimAdd    = 0
	nimDelete = 2

	nifMessage = 1
	nifIcon    = 2
	nifTip     = 4

	mfString    = 0x0000
	mfSeparator = 0x0800

	tpmRightButton = 0x0002
	tpmReturnCmd   = 0x0100

	idiApplication = 32512

	mbOK              = 0x00000000
	mbIconError       = 0x00000010
	mbIconInformation = 0x00000040
	mbTopmost         = 0x00040000

	trayIconID = 1
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     uintptr
	HIcon         uintptr
	HCursor       uintptr
	HbrBackground uintptr
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type point struct {
	X, Y int32
}

type notifyIconData struct {
	CbSize           uint32
	Hwnd             uintptr
	UID              uint32
	UFlags           uint32
	UCallbackMessage uint32
	HIcon            uintptr
	SzTip            [128]uint16
	DwState          uint32
	DwStateMask      uint32
	SzInfo           [256]uint16
	UVersion         uint32
	SzInfoTitle      [64]uint16
	DwInfoFlags      uint32
	GuidItem         windows.GUID
	HBalloonIcon     uintptr
}

// Tray runs the notification icon and its menu.
type Tray struct {
	Desktop ontop.Desktop
	Options ontop.Options

	state ontop.State
	nid   notifyIconData
}

// the window procedure needs a way back to the running tray.
var (
	running *Tray
	wndProc = syscall.NewCallback(func(hwnd, umsg, wparam, lparam uintptr) uintptr {
		if running != nil {
			if handled := running.handle(hwnd, uint32(umsg), lparam); handled {
				return 0
			}
		}
		r, _, _ := defWindowProc.Call(hwnd, umsg, wparam, lparam)
		return r
	})
)

// Run creates the hidden main window and the icon, and pumps messages
// until Exit is chosen or the window is closed.
func (t *Tray) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if running != nil {
		return errors.New("tray already running")
	}
	running = t
	defer func() { running = nil }()

	hinst, _, _ := getModuleHandle.Call(0)
	icon, _, _ := loadIcon.Call(0, idiApplication)

	classPtr, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return errors.Wrap(err, "class name")
	}
	titlePtr, err := windows.UTF16PtrFromString(tooltip)
	if err != nil {
		return errors.Wrap(err, "window title")
	}

	wc := wndClassEx{
		LpfnWndProc:   wndProc,
		HInstance:     hinst,
		HIcon:         icon,
		LpszClassName: classPtr,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	if r, _, err := registerClassEx.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return errors.Wrap(err, "RegisterClassExW")
	}

	hwnd, _, err := createWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(classPtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		wsOverlappedWindow,
		cwUseDefault, cwUseDefault, cwUseDefault, cwUseDefault,
		0, 0, hinst, 0)
	if hwnd == 0 {
		return errors.Wrap(err, "CreateWindowExW")
	}
	t.state.Self = ontop.Handle(hwnd)

	t.nid = notifyIconData{
		Hwnd:             hwnd,
		UID:              trayIconID,
		UFlags:           nifIcon | nifMessage | nifTip,
		UCallbackMessage: wmTrayIcon,
		HIcon:            icon,
	}
	t.nid.CbSize = uint32(unsafe.Sizeof(t.nid))
	tip, err := windows.UTF16FromString(tooltip)
	if err != nil {
		return errors.Wrap(err, "tooltip")
	}
	copy(t.nid.SzTip[:len(t.nid.SzTip)-1], tip)
	if r, _, err := shellNotifyIcon.Call(nimAdd, uintptr(unsafe.Pointer(&t.nid))); r == 0 {
		destroyWindow.Call(hwnd)
		return errors.Wrap(err, "Shell_NotifyIconW")
	}

	if t.Options.Debug {
		rog.Printf("tray up: hwnd=%#x", hwnd)
	}

	var m msg
	for {
		r, _, err := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case -1:
			return errors.Wrap(err, "GetMessageW")
		case 0:
			return nil
		}
		translateMessage.Call(uintptr(unsafe.Pointer(&m)))
		dispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (t *Tray) handle(hwnd uintptr, umsg uint32, lparam uintptr) bool {
	switch umsg {
	case wmTrayIcon:
		if ev := uint32(lparam) & 0xFFFF; ev == wmLButtonUp || ev == wmRButtonUp {
			t.showMenu(hwnd)
		}
		return true

	case wmClose:
		ontop.RestoreAll(t.Desktop, &t.state, t.Options.Debug)
		destroyWindow.Call(hwnd)
		return true

	case wmDestroy:
		shellNotifyIcon.Call(nimDelete, uintptr(unsafe.Pointer(&t.nid)))
		postQuitMessage.Call(0)
		return true
	}

	return false
}

func (t *Tray) showMenu(hwnd uintptr) {
	items, err := ontop.BuildMenu(t.Desktop, &t.state, t.Options)
	if errors.Is(err, ontop.ErrNoWindows) {
		MessageBox(hwnd, "No windows found!", "Error", true)
		return
	}
	if err != nil {
		MessageBox(hwnd, err.Error(), "Error", true)
		return
	}

	menu, _, _ := createPopupMenu.Call()
	if menu == 0 {
		return
	}
	defer destroyMenu.Call(menu)

	for _, item := range items {
		if item.Separator() {
			appendMenu.Call(menu, mfSeparator, 0, 0)
			continue
		}
		label, err := windows.UTF16PtrFromString(item.Label)
		if err != nil {
			continue
		}
		appendMenu.Call(menu, mfString, uintptr(item.ID), uintptr(unsafe.Pointer(label)))
	}

	var pt point
	getCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	setForegroundWindow.Call(hwnd)

	cmd, _, _ := trackPopupMenu.Call(
		menu,
		tpmReturnCmd|tpmRightButton,
		uintptr(pt.X), uintptr(pt.Y),
		0, hwnd, 0)
	// lets the menu close when the user clicks elsewhere next time
	postMessage.Call(hwnd, wmNull, 0, 0)

	act := ontop.Dispatch(t.Desktop, &t.state, int(int32(cmd)), t.Options)
	if act.Message != "" {
		caption := "Info"
		if act.Error {
			caption = "Error"
		}
		MessageBox(0, act.Message, caption, act.Error)
	}
	if act.Quit {
		destroyWindow.Call(hwnd)
	}
}

// MessageBox shows a modal, topmost dialog.
func MessageBox(owner uintptr, text, caption string, isError bool) {
	textPtr, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return
	}
	captionPtr, err := windows.UTF16PtrFromString(caption)
	if err != nil {
		return
	}

	style := uint32(mbOK | mbTopmost | mbIconInformation)
	if isError {
		style = mbOK | mbTopmost | mbIconError
	}
	windows.MessageBox(windows.HWND(owner), textPtr, captionPtr, style)
}

// Lock creates the single-instance mutex. ok is false when another
// instance already created it. release must be called on exit when ok.
func Lock() (ok bool, release func(), err error) {
	namePtr, err := windows.UTF16PtrFromString(AppName + "_SingleInstanceMutex")
	if err != nil {
		return false, nil, errors.Wrap(err, "mutex name")
	}

	mutex, err := windows.CreateMutex(nil, false, namePtr)
	if err == windows.ERROR_ALREADY_EXISTS {
		if mutex != 0 {
			windows.CloseHandle(mutex)
		}
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Wrap(err, "CreateMutex")
	}

	return true, func() {
		if err := windows.CloseHandle(mutex); err != nil {
			rog.Printf("close mutex: %v", err)
		}
	}, nil
}
