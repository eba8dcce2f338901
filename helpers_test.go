package sprig

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertRect(t *testing.T, name string, got, want Rect) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

// recorder collects hook calls from test widgets in order.
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) {
	if r != nil {
		r.calls = append(r.calls, s)
	}
}

var _ interface {
	Widget
	Attacher
	EventRegistrar
	Renderer
	Releaser
	Resizer
	Focusable
	FocusObserver
} = (*testWidget)(nil)

// testWidget implements every optional hook and records the calls.
type testWidget struct {
	Node

	rec       *recorder
	focusable bool
	register  func(w *testWidget, bus *EventBus)
	render    func(w *testWidget, f *Frame)
	onResized func(w *testWidget)
	onRelease func(w *testWidget)

	released int
	resized  [][2]int
	focusLog []bool
	attached []*Gui
}

func newTestWidget(name string, rec *recorder) *testWidget {
	w := &testWidget{rec: rec}
	w.Init(w, name)
	return w
}

func (w *testWidget) Attached(g *Gui) {
	w.attached = append(w.attached, g)
	w.rec.add("attach:" + w.name)
}

func (w *testWidget) RegisterEvents(bus *EventBus) {
	if w.register != nil {
		w.register(w, bus)
	}
}

func (w *testWidget) Render(f *Frame) {
	w.rec.add("render:" + w.name)
	if w.render != nil {
		w.render(w, f)
	}
}

func (w *testWidget) Release() {
	w.released++
	w.rec.add("release:" + w.name)
	if w.onRelease != nil {
		w.onRelease(w)
	}
}

func (w *testWidget) Resized(oldW, oldH int) {
	w.resized = append(w.resized, [2]int{oldW, oldH})
	if w.onResized != nil {
		w.onResized(w)
	}
}

func (w *testWidget) CanFocus() bool { return w.focusable }

func (w *testWidget) FocusChanged(focused bool) {
	w.focusLog = append(w.focusLog, focused)
}

// openGui creates an active Gui with a 100×100 screen holding roots.
func openGui(t *testing.T, roots ...Widget) *Gui {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 100, 100
	cfg.RebuildOnResize = false
	g := New(cfg)
	for _, r := range roots {
		r := r
		g.Register(r.Base().Name(), func() (Widget, error) { return r, nil })
	}
	if err := g.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return g
}

func orderNames(g *Gui) []string {
	names := make([]string, 0, len(g.Order()))
	for _, w := range g.Order() {
		names = append(names, w.Base().Name())
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
