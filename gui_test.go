package sprig

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureLog routes sprig's logger into a buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestGuiStateMachine(t *testing.T) {
	g := New(DefaultConfig())
	if g.State() != StateClosed {
		t.Fatalf("State = %v, want closed", g.State())
	}
	if err := g.Close(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Close on closed Gui = %v, want ErrNotActive", err)
	}
	if err := g.Repopulate(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Repopulate on closed Gui = %v, want ErrNotActive", err)
	}

	var during State
	g.Register("probe", func() (Widget, error) {
		during = g.State()
		return NewPanel("probe"), nil
	})
	if err := g.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if during != StatePopulating {
		t.Errorf("State during factories = %v, want populating", during)
	}
	if g.State() != StateActive {
		t.Errorf("State after Open = %v, want active", g.State())
	}
	if err := g.Open(); !errors.Is(err, ErrNotClosed) {
		t.Errorf("second Open = %v, want ErrNotClosed", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if g.State() != StateClosed || len(g.Roots()) != 0 || len(g.Order()) != 0 {
		t.Errorf("after Close: state=%v roots=%d order=%d", g.State(), len(g.Roots()), len(g.Order()))
	}
}

func TestAddRootWhenClosedFails(t *testing.T) {
	g := New(DefaultConfig())
	if err := g.AddRoot(NewPanel("p")); !errors.Is(err, ErrNotActive) {
		t.Errorf("AddRoot = %v, want ErrNotActive", err)
	}
}

func TestFailingFactoriesAreSkipped(t *testing.T) {
	buf := captureLog(t)
	g := New(DefaultConfig())
	g.Register("ok1", func() (Widget, error) { return NewPanel("ok1"), nil })
	g.Register("err", func() (Widget, error) { return nil, errors.New("no assets") })
	g.Register("panic", func() (Widget, error) { panic("boom") })
	g.Register("ok2", func() (Widget, error) { return NewPanel("ok2"), nil })

	if err := g.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := orderNames(g); !equalStrings(got, []string{"ok1", "ok2"}) {
		t.Errorf("order = %v, want [ok1 ok2]", got)
	}
	out := buf.String()
	for _, want := range []string{"factory=err", "no assets", "factory=panic", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestPartitionOrder(t *testing.T) {
	a := NewPanel("a")
	a1 := NewPanel("a1")
	a2 := NewPanel("a2")
	a.AddChild(a1)
	a.AddChild(a2)
	a2.SetPriority(2)

	b := NewPanel("b")
	b.SetPriority(1)
	b1 := NewPanel("b1")
	b1.SetPriority(-1)
	b.AddChild(b1)

	c := NewPanel("c")
	c.SetVisible(false)
	c.AddChild(NewPanel("c1"))

	g := openGui(t, a, b, c)

	// Effective priorities: a=0 a1=0 a2=2 b=1 b1=0.
	want := []string{"a", "a1", "b1", "b", "a2"}
	if got := orderNames(g); !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestPartitionIsDeterministic(t *testing.T) {
	build := func() []Widget {
		var roots []Widget
		for _, name := range []string{"x", "y", "z"} {
			p := NewPanel(name)
			for _, c := range []string{"1", "2", "3"} {
				child := NewPanel(name + c)
				child.SetPriority(int(c[0]-'0') % 2)
				p.AddChild(child)
			}
			roots = append(roots, p)
		}
		return roots
	}
	first := orderNames(openGui(t, build()...))
	for i := 0; i < 5; i++ {
		if got := orderNames(openGui(t, build()...)); !equalStrings(got, first) {
			t.Fatalf("run %d: order = %v, want %v", i, got, first)
		}
	}
}

func TestMutationDuringDispatchIsDeferred(t *testing.T) {
	var log []string
	var g *Gui
	back := pointerLogger("back", &log, 0)
	late := pointerLogger("late", &log, 0)
	front := newTestWidget("front", nil)
	front.SetPriority(1)
	front.register = func(w *testWidget, bus *EventBus) {
		bus.PointerDown.Subscribe(func(*PointerEvent) {
			log = append(log, "front")
			if late.Gui() == nil {
				back.Dispose()
				if err := g.AddRoot(late); err != nil {
					t.Errorf("AddRoot: %v", err)
				}
			}
		})
	}
	g = openGui(t, back, front)

	before := orderNames(g)
	g.PointerDown(0, 0, MouseButtonLeft, 0)

	if want := []string{"front"}; !equalStrings(log, want) {
		t.Errorf("first dispatch = %v, want %v", log, want)
	}
	if got := orderNames(g); !equalStrings(got, before) {
		t.Errorf("order changed mid-frame: %v, want %v", got, before)
	}
	if !g.NeedsPartition() {
		t.Error("NeedsPartition should be set after the handler mutated the tree")
	}

	log = nil
	g.PointerDown(0, 0, MouseButtonLeft, 0)
	if want := []string{"front", "late"}; !equalStrings(log, want) {
		t.Errorf("second dispatch = %v, want %v", log, want)
	}
	if want := []string{"late", "front"}; !equalStrings(orderNames(g), want) {
		t.Errorf("order = %v, want %v", orderNames(g), want)
	}
}

func TestCloseReleasesDepthFirst(t *testing.T) {
	rec := &recorder{}
	a := newTestWidget("a", rec)
	a1 := newTestWidget("a1", rec)
	a.AddChild(a1)
	b := newTestWidget("b", rec)
	g := openGui(t, a, b)
	rec.calls = nil

	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	want := []string{"release:a1", "release:a", "release:b"}
	if !equalStrings(rec.calls, want) {
		t.Errorf("release order = %v, want %v", rec.calls, want)
	}

	rec.calls = nil
	g.Frame(0, nil)
	if len(rec.calls) != 0 {
		t.Errorf("Frame on closed Gui rendered %v", rec.calls)
	}
	if g.PointerDown(0, 0, MouseButtonLeft, 0) {
		t.Error("dispatch on closed Gui should report unhandled")
	}
}

func TestRepopulateRunsFactoriesAgain(t *testing.T) {
	calls := 0
	var made []*testWidget
	cfg := DefaultConfig()
	g := New(cfg)
	g.Register("w", func() (Widget, error) {
		calls++
		w := newTestWidget("w", nil)
		made = append(made, w)
		return w, nil
	})
	if err := g.Open(); err != nil {
		t.Fatal(err)
	}

	g.SetScreenSize(cfg.Width, cfg.Height)
	if calls != 1 {
		t.Errorf("unchanged size rebuilt: calls = %d", calls)
	}
	g.SetScreenSize(800, 600)
	if calls != 2 {
		t.Errorf("resize should rebuild: calls = %d, want 2", calls)
	}
	g.SetScale(2)
	if calls != 3 {
		t.Errorf("rescale should rebuild: calls = %d, want 3", calls)
	}
	if !made[0].IsDisposed() || made[0].released != 1 {
		t.Error("rebuild should destroy the previous widgets")
	}
	if len(g.Roots()) != 1 || g.Roots()[0] != Widget(made[2]) {
		t.Error("roots should hold only the newest widget")
	}
}

func TestResizeWithoutRebuildKeepsWidgets(t *testing.T) {
	root := NewPanel("root")
	g := openGui(t, root)
	g.SetScreenSize(300, 200)
	if root.IsDisposed() {
		t.Error("RebuildOnResize=false must keep widgets")
	}
	if w, h := g.ScreenSize(); w != 300 || h != 200 {
		t.Errorf("ScreenSize = %dx%d, want 300x200", w, h)
	}
}

func TestFrameRendersBackToFront(t *testing.T) {
	rec := &recorder{}
	a := newTestWidget("a", rec)
	a.SetPriority(3)
	b := newTestWidget("b", rec)
	hidden := newTestWidget("hidden", rec)
	hidden.SetVisible(false)
	b.AddChild(hidden)
	g := openGui(t, a, b)
	rec.calls = nil

	g.Frame(0.016, "handle")
	want := []string{"render:b", "render:a"}
	if !equalStrings(rec.calls, want) {
		t.Errorf("render = %v, want %v", rec.calls, want)
	}
	if g.FrameCount() != 1 {
		t.Errorf("FrameCount = %d, want 1", g.FrameCount())
	}
}

func TestFrameScopesClipAndTransform(t *testing.T) {
	root := newTestWidget("root", nil)
	root.SetFixed(10, 10, 50, 50)
	root.SetClipChildren(true)
	root.SetTransform(Translate(5, 0, 0))

	child := newTestWidget("child", nil)
	child.SetFixed(40, 40, 50, 50)
	root.AddChild(child)

	var clip Rect
	var depth int
	var handle any
	var dx float64
	child.render = func(_ *testWidget, f *Frame) {
		clip = f.Clip.Active()
		depth = f.Transform.Depth()
		handle = f.Handle
		dx, _ = f.Transform.Top().Apply(0, 0)
	}
	g := openGui(t, root)
	g.Frame(0, 42)

	assertRect(t, "clip", clip, Rect{X: 15, Y: 10, Width: 50, Height: 50})
	if depth != 2 {
		t.Errorf("transform depth = %d, want 2", depth)
	}
	if handle != 42 {
		t.Errorf("handle = %v, want 42", handle)
	}
	assertNear(t, "dx", dx, 5)
	if g.clips.Depth() != 0 || g.transforms.Depth() != 1 {
		t.Error("stacks should be back at their base after the frame")
	}
}

func TestHitTestHonorsClipAndTransform(t *testing.T) {
	root := NewPanel("root")
	root.SetFixed(10, 10, 50, 50)
	root.SetClipChildren(true)
	child := NewPanel("child")
	child.SetFixed(40, 40, 50, 50)
	root.AddChild(child)

	g := openGui(t, root)
	g.SetScreenSize(300, 300)
	g.Layout()

	if !g.HitTest(child, 55, 55) {
		t.Error("(55, 55) is inside the child and the clip")
	}
	if g.HitTest(child, 70, 70) {
		t.Error("(70, 70) is inside the child but clipped away")
	}

	root.SetTransform(Translate(100, 0, 0))
	if g.HitTest(child, 55, 55) {
		t.Error("translated child should no longer be hit at its untransformed position")
	}
	if !child.HitTest(155, 55) {
		t.Error("translated child should be hit where it is drawn")
	}
	if NewPanel("detached").HitTest(0, 0) {
		t.Error("a detached widget is never hit")
	}
}

type imbalanced struct {
	Node
}

func (w *imbalanced) Render(f *Frame) {
	f.Clip.Push(Rect{Width: 5, Height: 5})
}

func TestUnbalancedRenderPanicsInDebugMode(t *testing.T) {
	w := &imbalanced{}
	w.Init(w, "leaky")
	g := openGui(t, w)
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	expectPanic(t, `widget "leaky" left clip stack`, func() { g.Frame(0, nil) })
}

func TestUnbalancedRenderLogsWithoutDebug(t *testing.T) {
	buf := captureLog(t)
	w := &imbalanced{}
	w.Init(w, "leaky")
	g := openGui(t, w)

	g.Frame(0, nil)
	if !strings.Contains(buf.String(), "unbalanced stacks") {
		t.Errorf("expected an imbalance warning, log:\n%s", buf.String())
	}
	// The next frame starts from clean stacks.
	g.Frame(0, nil)
	if g.clips.Depth() != 1 {
		t.Errorf("clip depth = %d, want 1 (only this frame's leak)", g.clips.Depth())
	}
}

type fakeStore struct {
	events []InteractionEvent
}

func (s *fakeStore) EmitEvent(e InteractionEvent) { s.events = append(s.events, e) }

func TestEntityStoreReceivesEvents(t *testing.T) {
	g := openGui(t, NewPanel("p"))
	store := &fakeStore{}
	g.SetEntityStore(store)

	g.PointerDown(3, 4, MouseButtonRight, ModCtrl)
	g.Wheel(1, 2, 0, -1, 0)
	g.KeyPress('x', 0)

	if len(store.events) != 3 {
		t.Fatalf("events = %d, want 3", len(store.events))
	}
	e := store.events[0]
	if e.Type != EventPointerDown || e.X != 3 || e.Y != 4 || e.Button != MouseButtonRight || e.Mods != ModCtrl {
		t.Errorf("pointer event = %+v", e)
	}
	if store.events[1].Type != EventWheel || store.events[1].DeltaY != -1 {
		t.Errorf("wheel event = %+v", store.events[1])
	}
	if store.events[2].Type != EventKeyPress || store.events[2].Char != 'x' {
		t.Errorf("char event = %+v", store.events[2])
	}
}

func TestDumpTree(t *testing.T) {
	root := NewPanel("root")
	root.SetFixed(0, 0, 10, 10)
	child := NewPanel("child")
	child.SetFixed(1, 2, 3, 4)
	child.SetPriority(2)
	root.AddChild(child)
	g := openGui(t, root)
	g.Layout()

	var buf bytes.Buffer
	if err := g.DumpTree(&buf); err != nil {
		t.Fatal(err)
	}
	want := "root {X:0 Y:0 W:10 H:10} scale=1 fade=0\n" +
		"  child {X:1 Y:2 W:3 H:4} scale=1 fade=0 priority=2\n"
	if buf.String() != want {
		t.Errorf("DumpTree =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWidgetAtAndEntityIDs(t *testing.T) {
	back := NewPanel("back")
	back.SetFixed(0, 0, 100, 100)
	back.EntityID = 1
	front := focusable("front")
	front.SetFixed(10, 10, 20, 20)
	front.SetPriority(1)
	front.EntityID = 2
	g := openGui(t, back, front)
	g.Layout()

	if w := g.WidgetAt(15, 15); w != Widget(front) {
		t.Errorf("WidgetAt(15, 15) = %v, want front", w)
	}
	if w := g.WidgetAt(50, 50); w != Widget(back) {
		t.Errorf("WidgetAt(50, 50) = %v, want back", w)
	}
	if w := g.WidgetAt(500, 500); w != nil {
		t.Errorf("WidgetAt off screen = %v, want nil", w)
	}

	store := &fakeStore{}
	g.SetEntityStore(store)
	g.PointerDown(15, 15, MouseButtonLeft, 0)
	g.PointerDown(50, 50, MouseButtonLeft, 0)
	g.KeyPress('a', 0)
	g.Focus(front)
	g.KeyPress('b', 0)

	want := []uint32{2, 1, 0, 2}
	for i, e := range store.events {
		if e.EntityID != want[i] {
			t.Errorf("event %d EntityID = %d, want %d", i, e.EntityID, want[i])
		}
	}
}

func TestHitTestFromRenderMatchesDraw(t *testing.T) {
	root := NewPanel("root")
	root.SetFixed(0, 0, 100, 100)
	root.SetTransform(Translate(100, 0, 0))
	child := newTestWidget("child", nil)
	child.SetFixed(10, 10, 20, 20)
	root.AddChild(child)

	var drawnX float64
	var hitDrawn, hitTwice bool
	var depthBefore, depthAfter int
	child.render = func(w *testWidget, f *Frame) {
		drawnX, _ = f.Transform.Top().Apply(float64(w.X()), float64(w.Y()))
		depthBefore = f.Transform.Depth()
		hitDrawn = f.Gui.HitTest(w, 115, 15)
		hitTwice = f.Gui.HitTest(w, 215, 15)
		depthAfter = f.Transform.Depth()
	}
	g := openGui(t, root)
	g.SetScreenSize(400, 100)
	g.Frame(0, nil)

	assertNear(t, "drawn x", drawnX, 110)
	if !hitDrawn {
		t.Error("HitTest inside Render should hit where the widget is drawn")
	}
	if hitTwice {
		t.Error("HitTest inside Render applied the ancestor transform twice")
	}
	if depthBefore != 2 || depthAfter != depthBefore {
		t.Errorf("render transform depth %d -> %d, want 2 -> 2", depthBefore, depthAfter)
	}
}
