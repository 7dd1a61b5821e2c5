// Program ductsim runs a motion script against a scene, either for a
// fixed number of frames or live in the terminal.
//
//	ductsim -scene testdata/scene.yaml -script testdata/script.yaml
//	ductsim -scene testdata/scene.yaml -script testdata/script.yaml -live
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"zappem.net/pub/kinematics/motion"
	"zappem.net/pub/kinematics/motion/scene"
	"zappem.net/pub/kinematics/motion/script"
)

var (
	scenePath  = flag.String("scene", "scene.yaml", "scene file")
	scriptPath = flag.String("script", "script.yaml", "motion script file")
	live       = flag.Bool("live", false, "animate in the terminal in real time")
	frames     = flag.Int("frames", 0, "headless frame limit (default: the script's, else 10000)")
	verbose    = flag.Bool("v", false, "log scheduler events")
)

// report writes the world position of every named instance.
func report(w io.Writer, sc *scene.Scene) {
	for _, in := range sc.Root.WalkFunc(func(*scene.Instance) bool { return true }) {
		fmt.Fprintf(w, "%-16s %v\n", in.Name(), in.World().Origin())
	}
}

// viewer is a bubbletea model hosting a motion.Movement. Timer calls
// arrive as tick messages, so frames never overlap.
type viewer struct {
	sc     *scene.Scene
	period time.Duration
	frame  func()

	stopped bool
	frames  int
}

type tickMsg time.Time

func (v *viewer) StartTimer(period time.Duration, fn func()) func() {
	v.period = period
	v.frame = fn
	return func() { v.stopped = true }
}

func (v *viewer) Invalidate() {
	v.frames++
}

func (v *viewer) tick() tea.Cmd {
	return tea.Tick(v.period, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (v *viewer) Init() tea.Cmd {
	return v.tick()
}

func (v *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return v, tea.Quit
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return v, tea.Quit
			}
		}
	case tickMsg:
		if v.stopped || v.frame == nil {
			return v, nil
		}
		v.frame()
		if v.stopped {
			return v, nil
		}
		return v, v.tick()
	}
	return v, nil
}

func (v *viewer) View() string {
	var b strings.Builder
	state := "running"
	if v.stopped {
		state = "finished"
	}
	fmt.Fprintf(&b, "ductsim: frame %d (%s)\n\n", v.frames, state)
	report(&b, v.sc)
	b.WriteString("\n(q to quit)\n")
	return b.String()
}

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "ductsim: ", log.LstdFlags)

	sc, err := scene.Load(*scenePath)
	if err != nil {
		logger.Fatalf("load scene: %v", err)
	}
	f, err := script.Load(*scriptPath)
	if err != nil {
		logger.Fatalf("load script: %v", err)
	}
	var opts []motion.Option
	if *verbose {
		opts = append(opts, motion.WithLogger(logger))
	}
	m, err := script.Build(sc, f, opts...)
	if err != nil {
		logger.Fatalf("build %s: %v", *scriptPath, err)
	}

	if *live {
		v := &viewer{sc: sc}
		m.Run(v, time.Duration(f.Period*float64(time.Second)))
		if _, err := tea.NewProgram(v).Run(); err != nil {
			logger.Fatalf("live view: %v", err)
		}
		return
	}

	n := *frames
	if n == 0 {
		n = f.Frames
	}
	if n == 0 {
		n = 10000
	}
	if !m.RunFrames(n, f.Period) {
		logger.Printf("still moving after %d frames", n)
	}
	report(os.Stdout, sc)
}
