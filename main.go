package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"pagesim/console"
	"pagesim/logger"
	"pagesim/system"
)

var (
	disableGui = flag.Bool("disablegui", false, "run with plain stdout output instead of the terminal gui")
	debugMode  = flag.Bool("debug", false, "enable debug logging")
	logPath    = flag.String("logfile", "", "log file path, empty logs to stdout")
	poolPages  = flag.Uint64("pages", system.DefaultPoolPages, "physical pool size in pages")
)

func main() {
	flag.Parse()
	l := logger.New(*logPath, *debugMode)

	if *disableGui {
		sys := system.InitializeSystem(console.NewSimple(), *poolPages, l)
		if err := sys.Run(); err != nil {
			l.Fatal(err)
		}
		fmt.Print(sys.DumpState())
		return
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln("Couldn't create gui!")
	}
	defer g.Close()

	g.SetManagerFunc(layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Panicln(err)
	}

	// start the simulation once the views exist
	g.Update(func(g *gocui.Gui) error {
		return startSim(g, l)
	})

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

// start the simulator --> allocation steps go to the console view,
// MMU state and recent operations to the two lower views
func startSim(g *gocui.Gui, l *logrus.Logger) error {
	for _, name := range []string{"console", "mmu", "status"} {
		v, err := g.View(name)
		if err != nil {
			return err
		}
		v.Clear()
	}

	sys := system.InitializeSystem(console.NewGui(g, "console"), *poolPages, l)

	updateState(sys, g)

	go func() {
		if err := sys.Run(); err != nil {
			l.Error(err)
		}
	}()
	return nil
}

// update the MMU state and status views once a second
// has to be run in a goroutine -> gocui allows updating the view only
// through the Update function
func updateState(sys *system.System, g *gocui.Gui) {
	ticker := time.NewTicker(time.Second * 1)

	go func() {
		for range ticker.C {
			g.Update(func(g *gocui.Gui) error {
				v, err := g.View("mmu")
				if err != nil {
					return err
				}
				v.Clear()
				fmt.Fprint(v, sys.DumpState())

				s, err := g.View("status")
				if err != nil {
					return err
				}
				s.Clear()
				for _, line := range sys.History() {
					fmt.Fprintln(s, line)
				}
				return nil
			})
		}
	}()
}

// gocui layout
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// up -> console
	if v, err := g.SetView("console", 0, 0, maxX-1, maxY-18); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Console"
	}

	// middle -> MMU state
	if v, err := g.SetView("mmu", 0, maxY-17, maxX-1, maxY-12); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "MMU"
	}
	// down -> recent operations
	if v, err := g.SetView("status", 0, maxY-11, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
