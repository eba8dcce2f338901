package sprig

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// State is the lifecycle state of a Gui.
type State uint8

const (
	StateClosed     State = iota // no widgets
	StatePopulating              // factories are building the root widgets
	StateActive                  // rendering and dispatching
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StatePopulating:
		return "populating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

var (
	// ErrNotClosed is returned by Open when the Gui is already open.
	ErrNotClosed = errors.New("gui is not closed")
	// ErrNotActive is returned by operations that need an open Gui.
	ErrNotActive = errors.New("gui is not active")
)

// Factory builds one root widget. A factory that returns an error or panics is
// logged and skipped; the rest of the Gui is still built.
type Factory func() (Widget, error)

type namedFactory struct {
	name string
	fn   Factory
}

// EntityStore is the interface for optional ECS integration.
// When set on a Gui, input events are forwarded after dispatch.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries dispatched input for the ECS bridge. EntityID is
// taken from the top-most widget under the pointer for pointer and wheel
// events, and from the focused widget for key events; it is 0 when there is
// no such widget.
type InteractionEvent struct {
	Type     EventType
	EntityID uint32
	X, Y     int
	Button   MouseButton
	DeltaX   float64
	DeltaY   float64
	Key      ebiten.Key
	Char     rune
	Mods     KeyModifiers
	Handled  bool
}

// partEntry is one widget of a partition in progress.
type partEntry struct {
	w        Widget
	priority int
}

// Gui owns a forest of root widgets. It flattens them into a back-to-front
// order by effective priority, resolves their bounds every frame, renders
// them, dispatches input through its EventBus and keeps at most one widget
// focused.
//
// Structural changes to the tree (adding, removing, hiding widgets or changing
// priorities) never touch the current order. They set a repartition flag and
// the order is rebuilt at the start of the next event or frame, so handlers
// may freely mutate the tree while an event is being delivered.
type Gui struct {
	cfg   Config
	state State
	debug bool
	store EntityStore

	factories []namedFactory
	roots     []Widget
	order     []Widget // back-to-front
	focused   *Node

	needsPartition bool
	partitions     int
	partBuf        []partEntry

	screenW, screenH int
	scale            int

	bus        *EventBus
	clips      *ClipStack
	transforms *TransformStack
	frame      Frame

	// scratch stacks for HitTest
	hitClips      *ClipStack
	hitTransforms *TransformStack

	chainBuf   []*Node
	frameCount uint64

	// Synthetic input and screenshots
	ScreenshotDir   string
	injectQueue     []syntheticEvent
	screenshotQueue []string
	testRunner      *TestRunner
}

// New creates a closed Gui configured by cfg.
func New(cfg Config) *Gui {
	g := &Gui{
		cfg:           cfg,
		screenW:       cfg.Width,
		screenH:       cfg.Height,
		scale:         max(cfg.Scale, 1),
		bus:           NewEventBus(),
		transforms:    NewTransformStack(),
		ScreenshotDir: cfg.ScreenshotDir,
	}
	if g.ScreenshotDir == "" {
		g.ScreenshotDir = defaultScreenshotDir
	}
	g.clips = NewClipStack(Rect{Width: g.screenW, Height: g.screenH})
	g.SetDebugMode(cfg.Debug)
	return g
}

// Register adds a root widget factory. Factories run in registration order
// each time the Gui is populated.
func (g *Gui) Register(name string, f Factory) {
	g.factories = append(g.factories, namedFactory{name: name, fn: f})
}

// State returns the lifecycle state.
func (g *Gui) State() State { return g.state }

// Bus returns the event bus. Subscriptions made outside RegisterEvents are
// global and survive repartitions.
func (g *Gui) Bus() *EventBus { return g.bus }

// Config returns the configuration the Gui was created with.
func (g *Gui) Config() Config { return g.cfg }

// ScreenSize returns the current screen size.
func (g *Gui) ScreenSize() (int, int) { return g.screenW, g.screenH }

// UIScale returns the current global UI scale.
func (g *Gui) UIScale() int { return g.scale }

// Roots returns the root widgets. The returned slice MUST NOT be mutated.
func (g *Gui) Roots() []Widget { return g.roots }

// Order returns the flattened back-to-front order as of the last partition.
// The returned slice MUST NOT be mutated.
func (g *Gui) Order() []Widget { return g.order }

// NeedsPartition reports whether a structural change is waiting to be applied.
func (g *Gui) NeedsPartition() bool { return g.needsPartition }

// FrameCount returns the number of frames rendered since New.
func (g *Gui) FrameCount() uint64 { return g.frameCount }

// SetEntityStore sets the optional ECS bridge.
func (g *Gui) SetEntityStore(store EntityStore) {
	g.store = store
}

// --- Lifecycle ---

// Open runs every registered factory and starts the Gui.
func (g *Gui) Open() error {
	if g.state != StateClosed {
		return fmt.Errorf("sprig: open: %w", ErrNotClosed)
	}
	g.populate()
	return nil
}

// Close destroys every widget, children before parents, and returns the Gui to
// the closed state.
func (g *Gui) Close() error {
	if g.state != StateActive {
		return fmt.Errorf("sprig: close: %w", ErrNotActive)
	}
	g.teardown()
	g.state = StateClosed
	Logger().Debug("sprig: gui closed")
	return nil
}

// Repopulate destroys every widget and runs the factories again.
func (g *Gui) Repopulate() error {
	if g.state != StateActive {
		return fmt.Errorf("sprig: repopulate: %w", ErrNotActive)
	}
	g.teardown()
	g.populate()
	return nil
}

// SetScreenSize updates the screen size. An active Gui configured with
// RebuildOnResize is repopulated when the size changes.
func (g *Gui) SetScreenSize(w, h int) {
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW, g.screenH = w, h
	g.clips.SetScreen(Rect{Width: w, Height: h})
	g.rebuildIfConfigured()
}

// SetScale updates the global UI scale. An active Gui configured with
// RebuildOnResize is repopulated when the scale changes.
func (g *Gui) SetScale(scale int) {
	scale = max(scale, 1)
	if scale == g.scale {
		return
	}
	g.scale = scale
	g.rebuildIfConfigured()
}

func (g *Gui) rebuildIfConfigured() {
	if g.state == StateActive && g.cfg.RebuildOnResize {
		g.teardown()
		g.populate()
	}
}

func (g *Gui) populate() {
	g.state = StatePopulating
	Logger().Debug("sprig: populating", "factories", len(g.factories))
	for _, f := range g.factories {
		w, err := buildWidget(f.fn)
		if err != nil {
			Logger().Warn("sprig: widget construction failed", "factory", f.name, "err", err)
			continue
		}
		if w == nil {
			continue
		}
		if err := g.AddRoot(w); err != nil {
			Logger().Warn("sprig: widget construction failed", "factory", f.name, "err", err)
		}
	}
	g.partition()
	g.state = StateActive
}

// buildWidget runs a factory, turning a panic into an error.
func buildWidget(f Factory) (w Widget, err error) {
	defer func() {
		if r := recover(); r != nil {
			w = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}

func (g *Gui) teardown() {
	roots := g.roots
	g.roots = nil
	for _, r := range roots {
		rn := r.Base()
		rn.parent = nil
		rn.destroy()
	}
	g.bus.resetOwned()
	g.order = nil
	g.focused = nil
	g.needsPartition = false
}

// AddRoot appends a root widget. If the widget already has a parent it is
// moved, not destroyed.
func (g *Gui) AddRoot(w Widget) error {
	if g.state == StateClosed {
		return fmt.Errorf("sprig: add root: %w", ErrNotActive)
	}
	if w == nil {
		panic("sprig: cannot add nil root")
	}
	n := w.Base()
	if globalDebug {
		debugCheckDisposed(n, "AddRoot")
	}
	n.self = w
	n.unlink()
	g.roots = append(g.roots, w)
	g.needsPartition = true
	setGui(n, g)
	return nil
}

// removeRoot drops n from the root list. The list is rebuilt rather than
// edited in place so a pass iterating the old slice is unaffected.
func (g *Gui) removeRoot(n *Node) {
	for i, r := range g.roots {
		if r.Base() == n {
			roots := make([]Widget, 0, len(g.roots)-1)
			roots = append(roots, g.roots[:i]...)
			g.roots = append(roots, g.roots[i+1:]...)
			g.needsPartition = true
			return
		}
	}
}

// --- Partition ---

// partition rebuilds the back-to-front order and re-subscribes every widget.
// Effective priority is a widget's own priority plus its ancestors'; the sort
// is stable, so equal priorities keep depth-first pre-order.
func (g *Gui) partition() {
	g.partBuf = g.partBuf[:0]
	for _, r := range g.roots {
		g.partBuf = collectPartition(r.Base(), 0, g.partBuf)
	}
	slices.SortStableFunc(g.partBuf, func(a, b partEntry) int {
		return cmp.Compare(a.priority, b.priority)
	})

	order := make([]Widget, len(g.partBuf))
	for i, e := range g.partBuf {
		order[i] = e.w
		g.partBuf[i] = partEntry{}
	}
	g.order = order
	g.needsPartition = false
	g.partitions++

	g.bus.resetOwned()
	for _, w := range order {
		if r, ok := w.(EventRegistrar); ok {
			g.bus.register(w, r)
		}
	}
	Logger().Debug("sprig: repartition", "widgets", len(order))
}

func collectPartition(n *Node, inherited int, buf []partEntry) []partEntry {
	if n.hidden || n.disposed {
		return buf
	}
	eff := inherited + n.priority
	buf = append(buf, partEntry{w: n.Widget(), priority: eff})
	for _, child := range n.children {
		buf = collectPartition(child.Base(), eff, buf)
	}
	return buf
}

// syncPartition applies a pending repartition. Called at every event and
// frame boundary, never during dispatch.
func (g *Gui) syncPartition() {
	if g.needsPartition && g.state == StateActive {
		g.partition()
	}
}

// --- Frame ---

// Layout resolves the bounds of every root subtree against the current screen
// size and scale, then fires resize notifications.
func (g *Gui) Layout() {
	ctx := LayoutContext{ScreenWidth: g.screenW, ScreenHeight: g.screenH, Scale: g.scale}
	roots := g.roots
	for _, r := range roots {
		r.Base().resolveTree(ctx)
	}
	for _, r := range roots {
		notifyResized(r.Base())
	}
}

// Frame runs one frame: pending repartition, layout, then the pre-render
// event, every widget's Render in back-to-front order, and the post-render
// event. handle is passed to widgets untouched. Panics raised by widgets are
// not recovered.
func (g *Gui) Frame(dt float64, handle any) {
	if g.state != StateActive {
		return
	}

	var stats debugStats
	var t0 time.Time
	if g.debug {
		t0 = time.Now()
	}

	g.syncPartition()
	g.Layout()

	if g.debug {
		stats.layoutTime = time.Since(t0)
		t0 = time.Now()
	}

	g.render(dt, handle)
	g.frameCount++

	if g.debug {
		stats.renderTime = time.Since(t0)
		stats.widgetCount = len(g.order)
		stats.partitions = g.partitions
		g.debugLog(stats)
	}
	g.partitions = 0
}

func (g *Gui) render(dt float64, handle any) {
	g.clips.reset()
	g.transforms.reset()
	clipDepth, tfDepth := g.clips.Depth(), g.transforms.Depth()

	g.frame = Frame{Delta: dt, Handle: handle, Clip: g.clips, Transform: g.transforms, Gui: g}
	ev := RenderEvent{Delta: dt, Handle: handle}
	g.bus.PreRender.dispatch(&ev)

	order := g.order
	for _, w := range order {
		n := w.Base()
		if n.disposed || n.gui != g {
			continue
		}
		r, ok := w.(Renderer)
		if !ok {
			continue
		}
		s := g.enterScope(n)
		if g.debug {
			c, t := g.clips.Depth(), g.transforms.Depth()
			r.Render(&g.frame)
			debugCheckWidgetBalance(n, c, t, g.clips.Depth(), g.transforms.Depth())
		} else {
			r.Render(&g.frame)
		}
		g.exitScope(s)
	}

	ev = RenderEvent{Delta: dt, Handle: handle}
	g.bus.PostRender.dispatch(&ev)
	g.checkBalance(clipDepth, tfDepth)
}

// --- Dispatch ---

func (g *Gui) beginDispatch() bool {
	if g.state != StateActive {
		return false
	}
	g.syncPartition()
	return true
}

// PointerDown dispatches a pointer press. Reports whether a handler consumed it.
func (g *Gui) PointerDown(x, y int, button MouseButton, mods KeyModifiers) bool {
	return g.dispatchPointer(&g.bus.PointerDown, EventPointerDown, x, y, button, mods)
}

// PointerUp dispatches a pointer release. Reports whether a handler consumed it.
func (g *Gui) PointerUp(x, y int, button MouseButton, mods KeyModifiers) bool {
	return g.dispatchPointer(&g.bus.PointerUp, EventPointerUp, x, y, button, mods)
}

// PointerMove dispatches a pointer move. Reports whether a handler consumed it.
func (g *Gui) PointerMove(x, y int, mods KeyModifiers) bool {
	return g.dispatchPointer(&g.bus.PointerMove, EventPointerMove, x, y, MouseButtonLeft, mods)
}

func (g *Gui) dispatchPointer(c *Channel[PointerEvent], t EventType, x, y int, button MouseButton, mods KeyModifiers) bool {
	if !g.beginDispatch() {
		return false
	}
	e := PointerEvent{X: x, Y: y, Button: button, Mods: mods}
	c.dispatch(&e)
	g.emitInteractionEvent(InteractionEvent{Type: t, X: x, Y: y, Button: button, Mods: mods, Handled: e.Handled})
	return e.Handled
}

// Wheel dispatches a scroll. Reports whether a handler consumed it.
func (g *Gui) Wheel(x, y int, dx, dy float64, mods KeyModifiers) bool {
	if !g.beginDispatch() {
		return false
	}
	e := WheelEvent{X: x, Y: y, DeltaX: dx, DeltaY: dy, Mods: mods}
	g.bus.Wheel.dispatch(&e)
	g.emitInteractionEvent(InteractionEvent{Type: EventWheel, X: x, Y: y, DeltaX: dx, DeltaY: dy, Mods: mods, Handled: e.Handled})
	return e.Handled
}

// KeyDown dispatches a key press. An unhandled Tab moves focus to the next
// focusable widget, Shift+Tab to the previous one.
func (g *Gui) KeyDown(key ebiten.Key, mods KeyModifiers) bool {
	if !g.beginDispatch() {
		return false
	}
	e := KeyEvent{Key: key, Mods: mods}
	g.bus.KeyDown.dispatch(&e)
	if !e.Handled && key == ebiten.KeyTab {
		if mods.Shift() {
			g.FocusPrev()
		} else {
			g.FocusNext()
		}
		e.Handled = true
	}
	g.emitInteractionEvent(InteractionEvent{Type: EventKeyDown, Key: key, Mods: mods, Handled: e.Handled})
	return e.Handled
}

// KeyUp dispatches a key release. Reports whether a handler consumed it.
func (g *Gui) KeyUp(key ebiten.Key, mods KeyModifiers) bool {
	if !g.beginDispatch() {
		return false
	}
	e := KeyEvent{Key: key, Mods: mods}
	g.bus.KeyUp.dispatch(&e)
	g.emitInteractionEvent(InteractionEvent{Type: EventKeyUp, Key: key, Mods: mods, Handled: e.Handled})
	return e.Handled
}

// KeyPress dispatches a typed character. Reports whether a handler consumed it.
func (g *Gui) KeyPress(char rune, mods KeyModifiers) bool {
	if !g.beginDispatch() {
		return false
	}
	e := CharEvent{Char: char, Mods: mods}
	g.bus.KeyPress.dispatch(&e)
	g.emitInteractionEvent(InteractionEvent{Type: EventKeyPress, Char: char, Mods: mods, Handled: e.Handled})
	return e.Handled
}

// --- ECS bridge ---

func (g *Gui) emitInteractionEvent(ev InteractionEvent) {
	if g.store == nil {
		return
	}
	var target Widget
	switch ev.Type {
	case EventPointerDown, EventPointerUp, EventPointerMove, EventWheel:
		target = g.WidgetAt(ev.X, ev.Y)
	default:
		target = g.Focused()
	}
	if target != nil {
		ev.EntityID = target.Base().EntityID
	}
	g.store.EmitEvent(ev)
}
