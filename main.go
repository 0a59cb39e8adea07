package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
	"github.com/shu-go/gli/v2"
	"github.com/shu-go/nmfmt"
	"github.com/shu-go/rog"

	"github.com/shu-go/ontop/internal/ontop"
)

// Version is app version
var Version string

func init() {
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102")
	}
}

var (
	errNoTarget    = errors.New("no target")
	errUnsupported = errors.New("ontop runs on Windows only")
)

type globalCmd struct {
	Debug bool

	Limit    int           `cli:"limit=N" default:"50" help:"max windows in the menu (0: no limit for list)"`
	Settle   time.Duration `cli:"settle=DURATION" default:"100ms" help:"wait before each check of the topmost bit"`
	Attempts int           `cli:"attempts=N" default:"3" help:"how many times the topmost bit is checked"`

	List    listCmd    `cli:"list,ls" help:"list candidate windows"`
	Topmost topmostCmd `cli:"topmost,top" help:"toggle topmost of a window"`
}

func (c globalCmd) options() ontop.Options {
	opts := ontop.DefaultOptions()
	opts.Limit = c.Limit
	opts.Settle = c.Settle
	opts.Attempts = c.Attempts
	opts.Debug = c.Debug
	return opts
}

func (c globalCmd) debug(w io.Writer, format string, m nmfmt.M) {
	if !c.Debug {
		return
	}
	nmfmt.Fprintf(w, format, m)
}

// Run starts the tray icon.
func (c globalCmd) Run() error {
	d, err := openDesktop()
	if err != nil {
		return err
	}

	c.debug(os.Stderr, "tray: $=limit $=settle $=attempts\n",
		nmfmt.M{
			"limit":    c.Limit,
			"settle":   c.Settle,
			"attempts": c.Attempts,
		})

	return runTray(d, c.options())
}

func main() {
	app := gli.NewWith(&globalCmd{})
	app.Name = "ontop"
	app.Desc = "toggle always-on-top of windows from the tray"
	app.Version = Version
	app.Usage = `ontop          # tray icon
ontop list --all
ontop topmost -t notepad`
	app.Copyright = "(C) 2019 Shuhei Kubota"
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// findTarget returns the first window whose title contains t (case
// insensitive) and that does not belong to an ancestor process.
// With an empty t, it returns the first window of an ancestor process,
// which is the console ontop runs in.
func findTarget(d ontop.Desktop, t string, wins []ontop.Window, an []int, debug bool) (ontop.Window, error) {
	t = strings.ToLower(t)

	for _, w := range wins {
		pid := d.ProcessID(w.Handle)

		ancestor := false
		for _, p := range an {
			if pid == p {
				ancestor = true
				break
			}
		}

		if debug {
			rog.Printf("win: %#v (ancestor? %v)", w, ancestor)
		}
		if t != "" && !ancestor {
			if strings.Contains(strings.ToLower(w.Title), t) {
				return w, nil
			}
		} else if t == "" && ancestor {
			return w, nil
		}
	}

	return ontop.Window{}, errNoTarget
}

func ancestors() []int {
	curr := os.Getpid()

	an := []int{curr}

	for {
		p, err := ps.FindProcess(curr)
		if p == nil || err != nil {
			break
		}

		next := p.PPid()
		if next == 0 || next == curr {
			break
		}
		curr = next
		an = append(an, curr)
	}

	return an
}
