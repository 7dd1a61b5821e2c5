package motion

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"zappem.net/pub/math/geom"
)

// countdown arrives after a fixed number of ticks and records the
// frames it ran in.
type countdown struct {
	Arrivals
	name  string
	left  int
	trace *[]string
}

func newCountdown(name string, ticks int, trace *[]string) *countdown {
	return &countdown{name: name, left: ticks, trace: trace}
}

func (c *countdown) Arrived() bool { return c.left <= 0 }

func (c *countdown) Tick(float64) {
	if c.Arrived() {
		return
	}
	*c.trace = append(*c.trace, c.name)
	c.left--
	c.fire(c)
}

func TestChainRunsOneAtATime(t *testing.T) {
	var trace []string
	a := newCountdown("a", 2, &trace)
	b := newCountdown("b", 1, &trace)
	c := newCountdown("c", 3, &trace)

	cart := newBody("cart", geom.V(1, 1, 1))
	m := New()
	m.ReturnHomeWhenFinished(cart)
	m.Chain(a, b, c)
	if got := len(m.Active()); got != 1 {
		t.Fatalf("active after chain: got=%d want=1", got)
	}

	cart.SetTransform(Translate(geom.V(9, 9, 9)))
	homes := 0
	for i := 0; i < 20; i++ {
		if len(m.Active()) > 1 {
			t.Fatalf("frame %d: %d actions active", i, len(m.Active()))
		}
		if m.Step(0.1) {
			homes++
			break
		}
	}
	if want := "a a b c c c"; strings.Join(trace, " ") != want {
		t.Errorf("trace: got=%q want=%q", strings.Join(trace, " "), want)
	}
	if homes != 1 {
		t.Fatalf("movement did not finish")
	}
	if !cart.origin().Equals(geom.V(1, 1, 1)) {
		t.Errorf("cart not returned home: %v", cart.origin())
	}
}

func TestChainedActionStartsNextFrame(t *testing.T) {
	var trace []string
	m := New()
	m.Chain(newCountdown("a", 1, &trace), newCountdown("b", 1, &trace))
	if m.Step(0.1) || strings.Join(trace, " ") != "a" || len(m.Active()) != 1 {
		t.Fatalf("frame 1: trace=%v active=%d", trace, len(m.Active()))
	}
	if !m.Step(0.1) || strings.Join(trace, " ") != "a b" {
		t.Errorf("frame 2: trace=%v", trace)
	}
}

func TestRunFramesRestoresHomeOnce(t *testing.T) {
	var trace []string
	cart := newBody("cart", geom.V(0, 0, 0))
	m := New()
	m.ReturnHomeWhenFinished(cart)
	m.Chain(newCountdown("a", 1, &trace), NewMove(cart, geom.V(3, 0, 0), 1))

	finished := 0
	m.WhenFinished(func(*Movement) { finished++ })

	if !m.RunFrames(100, 1) {
		t.Fatal("RunFrames did not finish")
	}
	if finished != 1 {
		t.Errorf("finished callback ran %d times", finished)
	}
	if !cart.origin().Equals(geom.V(0, 0, 0)) {
		t.Errorf("cart not home: %v", cart.origin())
	}
	// Moving the cart after the run must not be undone.
	cart.SetTransform(Translate(geom.V(7, 0, 0)))
	if !cart.origin().Equals(geom.V(7, 0, 0)) {
		t.Errorf("cart reset again: %v", cart.origin())
	}
}

func TestChainTo(t *testing.T) {
	var trace []string
	anchor := newCountdown("anchor", 1, &trace)
	m := New()
	m.Add(anchor)
	m.ChainTo(anchor, newCountdown("x", 1, &trace), newCountdown("y", 1, &trace))
	m.RunFrames(10, 0.1)
	if want := "anchor x y"; strings.Join(trace, " ") != want {
		t.Errorf("trace: got=%q want=%q", strings.Join(trace, " "), want)
	}
}

func TestChainConcurrentFansOut(t *testing.T) {
	var trace []string
	anchor := newCountdown("anchor", 1, &trace)
	x := newCountdown("x", 2, &trace)
	y := newCountdown("y", 1, &trace)
	m := New()
	m.Add(anchor)
	m.ChainConcurrent(anchor, x, y)

	m.Step(0.1)
	if got := len(m.Active()); got != 2 {
		t.Fatalf("after anchor arrived: %d active, want 2", got)
	}
	m.Step(0.1)
	if got := len(m.Active()); got != 1 {
		t.Fatalf("after second frame: %d active, want 1", got)
	}
	if !m.Step(0.1) {
		t.Error("movement should have finished")
	}
	if want := "anchor x y x"; strings.Join(trace, " ") != want {
		t.Errorf("trace: got=%q want=%q", strings.Join(trace, " "), want)
	}
}

func TestWhenFinishedCanContinue(t *testing.T) {
	var trace []string
	m := New()
	m.Add(newCountdown("first", 1, &trace))
	rounds := 0
	m.WhenFinished(func(m *Movement) {
		rounds++
		if rounds < 3 {
			m.Add(newCountdown("again", 1, &trace))
		}
	})
	frames := 0
	for !m.Step(0.1) {
		frames++
		if frames > 10 {
			t.Fatal("never finished")
		}
	}
	if rounds != 3 {
		t.Errorf("finished callback rounds: got=%d want=3", rounds)
	}
	if want := "first again again"; strings.Join(trace, " ") != want {
		t.Errorf("trace: got=%q want=%q", strings.Join(trace, " "), want)
	}
}

func TestRemovedActionSkipsCallbacks(t *testing.T) {
	var trace []string
	a := newCountdown("a", 1, &trace)
	fired := false
	a.WhenArrived(func(Action) { fired = true })
	m := New()
	m.Add(a)
	// Abandoning an action is done by dropping it before it arrives.
	m.actions = nil
	m.Step(0.1)
	if fired || len(trace) != 0 {
		t.Errorf("abandoned action ran: fired=%v trace=%v", fired, trace)
	}
}

// fakeHost runs timer callbacks on demand.
type fakeHost struct {
	fn          func()
	stopped     bool
	invalidated int
}

func (h *fakeHost) StartTimer(period time.Duration, fn func()) func() {
	h.fn = fn
	return func() { h.stopped = true }
}

func (h *fakeHost) Invalidate() { h.invalidated++ }

func TestRun(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var buf bytes.Buffer
	cart := newBody("cart", geom.V(0, 0, 0))
	m := New(WithClock(clock), WithLogger(log.New(&buf, "", 0)))
	m.ReturnHomeWhenFinished(cart)
	tr := NewMove(cart, geom.V(10, 0, 0), 2)
	m.Add(tr)

	h := &fakeHost{}
	m.Run(h, 500*time.Millisecond)
	if h.fn == nil {
		t.Fatal("no timer installed")
	}

	// First frame uses the period.
	h.fn()
	if !near(cart.origin(), geom.V(1, 0, 0)) {
		t.Fatalf("first frame: %v", cart.origin())
	}
	// Later frames use the clock.
	now = now.Add(2 * time.Second)
	h.fn()
	if !near(cart.origin(), geom.V(5, 0, 0)) {
		t.Fatalf("second frame: %v", cart.origin())
	}
	if h.invalidated != 2 || h.stopped {
		t.Fatalf("invalidated=%d stopped=%v", h.invalidated, h.stopped)
	}
	now = now.Add(10 * time.Second)
	h.fn()
	if !tr.Arrived() || !h.stopped {
		t.Fatalf("arrived=%v stopped=%v", tr.Arrived(), h.stopped)
	}
	if !cart.origin().Equals(geom.V(0, 0, 0)) {
		t.Errorf("cart not home: %v", cart.origin())
	}
	// A late timer call after stopping does nothing.
	h.fn()
	if h.invalidated != 3 {
		t.Errorf("invalidated=%d want=3", h.invalidated)
	}
	if !strings.Contains(buf.String(), "restoring 1 home") {
		t.Errorf("log: %q", buf.String())
	}
}
