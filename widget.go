package sprig

// Widget is implemented by every element of a GUI tree. Concrete widgets embed
// Node, which supplies the tree, layout and lifecycle machinery; the Gui only
// ever depends on this interface and the optional hook interfaces below.
type Widget interface {
	Base() *Node
}

// Attacher is notified when a widget joins a Gui's tree.
type Attacher interface {
	Attached(g *Gui)
}

// Renderer draws a widget. Render is called once per frame in back-to-front
// order with the clip and transform stacks already scoped to the widget.
type Renderer interface {
	Render(f *Frame)
}

// EventRegistrar subscribes a widget to bus channels. It is called every time
// the Gui repartitions, on a freshly reset bus.
type EventRegistrar interface {
	RegisterEvents(bus *EventBus)
}

// Releaser is called once when a widget is destroyed.
type Releaser interface {
	Release()
}

// Resizer is notified when a widget's resolved size differs from the size it
// had after the previous layout pass.
type Resizer interface {
	Resized(oldW, oldH int)
}

// Focusable is implemented by widgets that can hold keyboard focus.
type Focusable interface {
	CanFocus() bool
}

// FocusObserver is notified when a widget gains or loses focus.
type FocusObserver interface {
	FocusChanged(focused bool)
}

// nodeIDCounter is a plain counter; sprig is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node carries the tree links, layout directives and resolved bounds of a
// widget. The zero value is a visible, unattached, fixed-position widget of
// size zero; embed it in concrete widget types.
type Node struct {
	// Metadata
	EntityID uint32
	UserData any

	id   uint32
	name string
	self Widget

	// Hierarchy. parent is a non-owning back-reference.
	parent   *Node
	children []Widget
	gui      *Gui

	priority     int
	hidden       bool
	clipChildren bool
	transform    Matrix
	hasTransform bool
	focused      bool
	disposed     bool

	layout   directives
	resolved resolvedState
}

// Base returns n itself. Widgets embedding Node satisfy Widget through it.
func (n *Node) Base() *Node { return n }

// Panel is a widget with no visual output, used to group and position children.
type Panel struct {
	Node
}

var (
	_ Widget = (*Node)(nil)
	_ Widget = (*Panel)(nil)
)

// NewPanel creates an empty panel.
func NewPanel(name string) *Panel {
	p := &Panel{}
	p.Init(p, name)
	return p
}

// Init records the outer widget embedding n and its debug name. Constructors
// of concrete widgets should call it so hooks fire even before the widget is
// added to a tree; AddChild and AddRoot record the outer widget as well.
func (n *Node) Init(self Widget, name string) {
	n.self = self
	n.name = name
}

// ID returns the widget's unique identifier, assigning one on first use.
func (n *Node) ID() uint32 {
	if n.id == 0 {
		n.id = nextNodeID()
	}
	return n.id
}

// Name returns the debug name.
func (n *Node) Name() string { return n.name }

// SetName sets the debug name.
func (n *Node) SetName(name string) { n.name = name }

// Widget returns the outer widget that embeds this node. Before the node has
// been added anywhere this is the node itself.
func (n *Node) Widget() Widget {
	if n.self == nil {
		return n
	}
	return n.self
}

// Parent returns the owning widget, or nil for a root.
func (n *Node) Parent() Widget {
	if n.parent == nil {
		return nil
	}
	return n.parent.Widget()
}

// Root returns the top-most ancestor, or the widget itself when it has no parent.
func (n *Node) Root() Widget {
	p := n
	for p.parent != nil {
		p = p.parent
	}
	return p.Widget()
}

// Gui returns the container this widget is attached to, or nil.
func (n *Node) Gui() *Gui { return n.gui }

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []Widget { return n.children }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) Widget { return n.children[index] }

// Priority returns the declared (not effective) priority.
func (n *Node) Priority() int { return n.priority }

// SetPriority sets the declared priority. A widget's effective priority is its
// own plus every ancestor's; higher effective priorities render later and
// receive pointer events first.
func (n *Node) SetPriority(p int) {
	if n.priority == p {
		return
	}
	n.priority = p
	n.invalidate()
}

// Visible reports whether the widget takes part in rendering and dispatch.
func (n *Node) Visible() bool { return !n.hidden }

// SetVisible shows or hides the widget and its subtree.
func (n *Node) SetVisible(v bool) {
	if n.hidden == !v {
		return
	}
	n.hidden = !v
	n.invalidate()
}

// ClipChildren reports whether rendering and hit testing of this widget and its
// descendants are scissored to its resolved bounds.
func (n *Node) ClipChildren() bool { return n.clipChildren }

// SetClipChildren enables or disables scissoring to the resolved bounds.
func (n *Node) SetClipChildren(clip bool) { n.clipChildren = clip }

// SetTransform sets a local transform composed onto every ancestor transform
// for this widget and its descendants, both when rendering and hit testing.
// The matrix works in absolute screen coordinates.
func (n *Node) SetTransform(m Matrix) {
	n.transform = m
	n.hasTransform = true
}

// ClearTransform removes the local transform.
func (n *Node) ClearTransform() {
	n.transform = Matrix{}
	n.hasTransform = false
}

// Transform returns the local transform and whether one is set.
func (n *Node) Transform() (Matrix, bool) { return n.transform, n.hasTransform }

// Focused reports whether this widget holds focus in its Gui.
func (n *Node) Focused() bool { return n.focused }

// IsDisposed returns true if this widget has been destroyed.
func (n *Node) IsDisposed() bool { return n.disposed }

// --- Tree manipulation ---

// AddChild appends child to this widget's children.
// If child already has a parent, it is moved (not destroyed).
// Panics if child is nil or child is an ancestor of this widget (cycle).
func (n *Node) AddChild(child Widget) {
	n.insertChild(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child Widget, index int) {
	if index < 0 || index > len(n.children) {
		panic("sprig: child index out of range")
	}
	n.insertChild(child, index)
}

func (n *Node) insertChild(child Widget, index int) {
	if child == nil {
		panic("sprig: cannot add nil child")
	}
	cn := child.Base()
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(cn, "AddChild (child)")
	}
	if isAncestor(cn, n) {
		panic("sprig: adding child would create a cycle")
	}
	cn.self = child
	cn.unlink()
	if index > len(n.children) {
		index = len(n.children)
	}
	cn.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.invalidate()
	setGui(cn, n.gui)
	if globalDebug {
		debugCheckTreeDepth(cn)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches and destroys child and its descendants.
// Panics if child is not a child of this widget.
func (n *Node) RemoveChild(child Widget) {
	cn := child.Base()
	if cn.parent != n {
		panic("sprig: child's parent is not this widget")
	}
	cn.Dispose()
}

// RemoveFromParent detaches this widget from its parent (or its Gui, for a
// root) and destroys it. Shorthand for Dispose.
func (n *Node) RemoveFromParent() {
	n.Dispose()
}

// Detach removes this widget from its parent (or its Gui, for a root) without
// destroying it, so it can be added elsewhere later.
func (n *Node) Detach() {
	n.unlink()
	setGui(n, nil)
}

// Dispose removes this widget from the tree and destroys it together with its
// descendants. Release hooks fire children first. Safe to call during event
// dispatch: the Gui only stops delivering to the widget, and rebuilds its
// dispatch order at the next event or frame boundary.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.unlink()
	n.destroy()
}

// unlink removes n from its parent's child list or from its Gui's roots.
func (n *Node) unlink() {
	switch {
	case n.parent != nil:
		p := n.parent
		p.removeChildByPtr(n)
		n.parent = nil
		p.invalidate()
	case n.gui != nil:
		n.gui.removeRoot(n)
	}
}

func (n *Node) destroy() {
	if n.disposed {
		return
	}
	for _, child := range n.children {
		cn := child.Base()
		cn.parent = nil
		cn.destroy()
	}
	if r, ok := n.Widget().(Releaser); ok {
		r.Release()
	}
	if n.gui != nil {
		if n.gui.focused == n {
			n.gui.focused = nil
		}
		n.gui.needsPartition = true
	}
	n.disposed = true
	n.focused = false
	n.children = nil
	n.gui = nil
	n.UserData = nil
}

// invalidate flags the owning Gui for repartition.
func (n *Node) invalidate() {
	if n.gui != nil {
		n.gui.needsPartition = true
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// The list is rebuilt into a fresh backing array so a walk ranging over the
// old slice never sees a hole.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c.Base() == child {
			children := make([]Widget, 0, len(n.children)-1)
			children = append(children, n.children[:i]...)
			n.children = append(children, n.children[i+1:]...)
			return
		}
	}
}

// setGui moves a subtree into g (or out of any Gui when g is nil), firing
// Attached hooks in pre-order for widgets that join g.
func setGui(n *Node, g *Gui) {
	if n.disposed {
		return
	}
	if n.gui != g {
		if n.gui != nil && n.gui.focused == n {
			n.gui.focused = nil
			n.focused = false
		}
		n.gui = g
		if g != nil {
			g.needsPartition = true
			if a, ok := n.Widget().(Attacher); ok {
				a.Attached(g)
			}
		}
	}
	for _, child := range n.children {
		setGui(child.Base(), g)
	}
}

// walk visits n and its descendants in depth-first pre-order.
func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		walk(child.Base(), fn)
	}
}
