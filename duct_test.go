package motion

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"zappem.net/pub/kinematics/motion/cableduct"
	"zappem.net/pub/math/geom"
)

// ductPlates lays eight plates one pi apart along a hairpin duct:
// three pi along +X, a half circle of radius 1, three pi back along
// -X.
func ductPlates() []Entity {
	pi := math.Pi
	at := []geom.Vector{
		geom.V(0, 0, 0),
		geom.V(pi, 0, 0),
		geom.V(2*pi, 0, 0),
		geom.V(3*pi, 0, 0),
		geom.V(3*pi, 2, 0),
		geom.V(2*pi, 2, 0),
		geom.V(pi, 2, 0),
		geom.V(0, 2, 0),
	}
	ps := make([]Entity, len(at))
	for i, p := range at {
		ps[i] = newBody(fmt.Sprint("duct_part", i), p)
	}
	return ps
}

func TestNewDuctMove(t *testing.T) {
	d, err := NewDuctMove(newBody("duct", geom.V(0, 0, 0)), ductPlates())
	if err != nil {
		t.Fatalf("new duct move: %v", err)
	}
	m := d.Model()
	if !geom.Zeroish(m.Length - 7*math.Pi) {
		t.Errorf("length: got=%v want=7pi", m.Length)
	}
	if got := len(m.Spacers()); got != 8 {
		t.Errorf("spacers: got=%d want=8", got)
	}
	if !d.Arrived() {
		t.Error("an unkicked duct is at its target")
	}
	if !near(d.zero, geom.V(1, 0, 0)) {
		t.Errorf("zero direction: got=%v want=(1,0,0)", d.zero)
	}
}

func TestDuctMoveSkipsUnturnablePlates(t *testing.T) {
	plates := ductPlates()
	d, err := NewDuctMove(newBody("duct", geom.V(0, 0, 0)), plates)
	if err != nil {
		t.Fatalf("new duct move: %v", err)
	}
	d.Model().Normal = geom.V(0, 0, 0)
	was := plates[0].Transform()
	d.Kick(1, 1)
	d.Tick(1)
	if !d.Arrived() {
		t.Fatalf("current=%v, want 1", d.Current)
	}
	if got := plates[0].Transform(); !got.Equals(was) {
		t.Errorf("plate moved without a usable normal: %v", got)
	}
}

func TestNewDuctMoveFails(t *testing.T) {
	plates := ductPlates()[:5]
	_, err := NewDuctMove(newBody("short", geom.V(0, 0, 0)), plates)
	if !errors.Is(err, cableduct.ErrTooShort) {
		t.Fatalf("got %v, want ErrTooShort", err)
	}
	if want := "failed to create DuctMove with short"; !strings.HasPrefix(err.Error(), want) {
		t.Errorf("error lacks context: %q", err.Error())
	}
}

func TestDuctMoveKickAndTick(t *testing.T) {
	plates := ductPlates()
	d, err := NewDuctMove(newBody("duct", geom.V(0, 0, 0)), plates)
	if err != nil {
		t.Fatalf("new duct move: %v", err)
	}
	arrivals := 0
	d.WhenArrived(func(Action) { arrivals++ })

	d.Kick(2, 1)
	d.Tick(1)
	if d.Current != 1 || d.Arrived() {
		t.Fatalf("after 1s: current=%v", d.Current)
	}
	if got := plates[0].Transform().Origin(); !near(got, geom.V(1, 0, 0)) {
		t.Errorf("floating end: got=%v want=(1,0,0)", got)
	}
	if got := plates[7].Transform().Origin(); !near(got, geom.V(0, 2, 0)) {
		t.Errorf("fixed end moved to %v", got)
	}
	if !plates[0].Transform().M.Equals(geom.I) {
		t.Errorf("floating plate turned: %v", plates[0].Transform().M)
	}
	// Plates on the fixed run face back along -X.
	if got := plates[7].Transform().M.XV(geom.V(1, 0, 0)); !near(got, geom.V(-1, 0, 0)) {
		t.Errorf("fixed plate heading: got=%v want=(-1,0,0)", got)
	}

	d.Tick(1.5)
	if d.Current != 2 || !d.Arrived() || arrivals != 1 {
		t.Fatalf("after 2.5s: current=%v arrived=%v arrivals=%d", d.Current, d.Arrived(), arrivals)
	}
	if got := plates[0].Transform().Origin(); !near(got, geom.V(2, 0, 0)) {
		t.Errorf("floating end: got=%v want=(2,0,0)", got)
	}

	// Kicks compose from the current extension.
	d.Kick(0.5, 3)
	if d.Speed != -3 {
		t.Errorf("retracting speed: got=%v want=-3", d.Speed)
	}
	d.Tick(1)
	if d.Current != 0.5 {
		t.Errorf("retracted to %v, want 0.5", d.Current)
	}
}

func TestChainedDuctMoves(t *testing.T) {
	plates := ductPlates()
	d, err := NewDuctMove(newBody("duct", geom.V(0, 0, 0)), plates)
	if err != nil {
		t.Fatalf("new duct move: %v", err)
	}
	out := NewChainedDuctMove(d, 2, 1)
	back := NewChainedDuctMove(d, -1.5, 1)
	hold := NewChainedDuctMove(d, 0, 1)
	if out.Arrived() {
		t.Fatal("chained move arrived before its first tick")
	}
	var order []string
	out.WhenArrived(func(Action) { order = append(order, "out") })
	back.WhenArrived(func(Action) { order = append(order, "back") })
	hold.WhenArrived(func(Action) { order = append(order, "hold") })

	m := New()
	m.Chain(out, back, hold)
	if !m.RunFrames(100, 0.25) {
		t.Fatal("chained duct moves never finished")
	}
	if got := fmt.Sprint(order); got != "[out back hold]" {
		t.Errorf("arrival order: got=%s", got)
	}
	if d.Current != 0.5 {
		t.Errorf("extension: got=%v want=0.5", d.Current)
	}
	if got := plates[0].Transform().Origin(); !near(got, geom.V(0.5, 0, 0)) {
		t.Errorf("floating end: got=%v want=(0.5,0,0)", got)
	}
}
