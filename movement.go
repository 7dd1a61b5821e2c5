package motion

import (
	"log"
	"time"
)

// home records an entity's transform to restore when a Movement
// finishes.
type home struct {
	entity Entity
	t      Transform
}

// Movement schedules a set of active actions, advancing each of them
// once per frame. Arrived actions are retired at the end of the frame
// they arrive in; their arrival callbacks are how successors get
// activated.
type Movement struct {
	actions  []Action
	homes    []home
	finished func(*Movement)

	logger *log.Logger
	now    func() time.Time
	last   time.Time
}

// Option configures a Movement.
type Option func(*Movement)

// WithLogger traces the scheduler's lifecycle to l.
func WithLogger(l *log.Logger) Option {
	return func(m *Movement) { m.logger = l }
}

// WithClock replaces the wall clock sampled by Run.
func WithClock(now func() time.Time) Option {
	return func(m *Movement) { m.now = now }
}

// New returns an idle Movement.
func New(opts ...Option) *Movement {
	m := &Movement{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Movement) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// Add activates actions immediately.
func (m *Movement) Add(actions ...Action) {
	m.actions = append(m.actions, actions...)
}

// Active returns a snapshot of the active actions in traversal order.
func (m *Movement) Active() []Action {
	return append([]Action(nil), m.actions...)
}

// activateOn arranges for next to become active when prev arrives.
func (m *Movement) activateOn(prev Action, next ...Action) {
	prev.WhenArrived(func(Action) { m.Add(next...) })
}

// Chain activates actions[0] now and each later action when its
// predecessor arrives, so they run strictly one after another.
func (m *Movement) Chain(actions ...Action) {
	if len(actions) == 0 {
		return
	}
	for i := 1; i < len(actions); i++ {
		m.activateOn(actions[i-1], actions[i])
	}
	m.Add(actions[0])
}

// ChainTo runs actions one after another following anchor, which is
// expected to be active already.
func (m *Movement) ChainTo(anchor Action, actions ...Action) {
	if len(actions) == 0 {
		return
	}
	m.activateOn(anchor, actions[0])
	for i := 1; i < len(actions); i++ {
		m.activateOn(actions[i-1], actions[i])
	}
}

// ChainConcurrent activates all of actions together when anchor
// arrives.
func (m *Movement) ChainConcurrent(anchor Action, actions ...Action) {
	if len(actions) == 0 {
		return
	}
	m.activateOn(anchor, actions...)
}

// ReturnHomeWhenFinished records the current transform of each entity
// and restores it once the whole movement has finished.
func (m *Movement) ReturnHomeWhenFinished(entities ...Entity) {
	for _, e := range entities {
		m.homes = append(m.homes, home{entity: e, t: e.Transform()})
	}
}

// WhenFinished sets fn to be called whenever a frame ends with no
// active actions. fn may add actions to keep the movement going.
func (m *Movement) WhenFinished(fn func(*Movement)) {
	m.finished = fn
}

// Step advances every active action by dt seconds and retires those
// that arrive. Actions activated by arrival callbacks start ticking
// on the next frame. If no actions remain, the finished callback runs;
// if it adds none either, every home entity is restored and Step
// returns true.
func (m *Movement) Step(dt float64) bool {
	active := m.actions
	m.actions = nil
	kept := make([]Action, 0, len(active))
	for _, a := range active {
		a.Tick(dt)
		if !a.Arrived() {
			kept = append(kept, a)
		}
	}
	m.actions = append(kept, m.actions...)

	if len(m.actions) != 0 {
		return false
	}
	if m.finished != nil {
		m.finished(m)
		if len(m.actions) != 0 {
			return false
		}
	}
	m.returnHome()
	return true
}

// returnHome restores the recorded home transforms.
func (m *Movement) returnHome() {
	m.logf("movement finished, restoring %d home entities", len(m.homes))
	for _, h := range m.homes {
		h.entity.SetTransform(h.t)
	}
}

// RunFrames steps the movement count times with a fixed period, in
// seconds, without consulting any clock. It stops early, after
// restoring home entities, once the movement finishes. It reports
// whether the movement finished.
func (m *Movement) RunFrames(count int, period float64) bool {
	for i := 0; i < count; i++ {
		if m.Step(period) {
			m.logf("finished after %d frames", i+1)
			return true
		}
	}
	return false
}

// Host is the periodic timer and view of the application running a
// Movement in real time.
type Host interface {
	// StartTimer calls fn every period until stop is called. Calls
	// to fn must not overlap.
	StartTimer(period time.Duration, fn func()) (stop func())

	// Invalidate asks for the view to be redrawn.
	Invalidate()
}

// Run drives the movement from h's timer. Each frame advances the
// actions by the wall clock time elapsed since the previous frame;
// the first frame uses period. The view is invalidated after every
// frame, and the timer is stopped once the movement finishes.
func (m *Movement) Run(h Host, period time.Duration) {
	m.last = time.Time{}
	var stop func()
	done := false
	stop = h.StartTimer(period, func() {
		if done {
			return
		}
		now := m.now()
		elapsed := period.Seconds()
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last).Seconds()
		}
		m.last = now

		finished := m.Step(elapsed)
		h.Invalidate()
		if !finished {
			return
		}
		done = true
		if stop != nil {
			stop()
		}
	})
}
