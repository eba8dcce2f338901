package sprig

// ClipStack is a LIFO of nested scissor rectangles in screen pixels. Every
// pushed rectangle is intersected with the one below it (the screen when the
// stack is empty), so the active region only ever shrinks as the stack grows.
//
// Push and Pop must be strictly nested. An unbalanced sequence is not
// repaired: it leaves the wrong region active for whatever is drawn or hit
// tested next. Gui.SetDebugMode turns a per-frame depth check into a panic.
//
// Not safe for concurrent use.
type ClipStack struct {
	screen Rect
	stack  []Rect
}

// NewClipStack creates an empty clip stack whose implicit base is screen.
func NewClipStack(screen Rect) *ClipStack {
	return &ClipStack{screen: screen, stack: make([]Rect, 0, 16)}
}

// SetScreen replaces the implicit base region.
func (c *ClipStack) SetScreen(screen Rect) {
	c.screen = screen
}

// Push intersects r with the active region and makes the result active.
// Returns the new active region.
func (c *ClipStack) Push(r Rect) Rect {
	clipped := r.Intersect(c.Active())
	c.stack = append(c.stack, clipped)
	return clipped
}

// Pop restores the previously active region.
// Panics if the stack is empty.
func (c *ClipStack) Pop() {
	if len(c.stack) == 0 {
		panic("sprig: clip stack underflow")
	}
	c.stack = c.stack[:len(c.stack)-1]
}

// Active returns the region on top of the stack, or the screen when empty.
func (c *ClipStack) Active() Rect {
	if len(c.stack) == 0 {
		return c.screen
	}
	return c.stack[len(c.stack)-1]
}

// Clipping reports whether any region is pushed.
func (c *ClipStack) Clipping() bool {
	return len(c.stack) > 0
}

// PointInside reports whether a screen point lies within the region on top of
// the stack. Always true when nothing is pushed. Rendering and pointer hit
// testing both go through this method, so what is visible and what is
// clickable never disagree.
func (c *ClipStack) PointInside(x, y int) bool {
	if len(c.stack) == 0 {
		return true
	}
	return c.stack[len(c.stack)-1].Contains(x, y)
}

// Depth returns the number of pushed regions.
func (c *ClipStack) Depth() int {
	return len(c.stack)
}

// reset drops every pushed region.
func (c *ClipStack) reset() {
	c.stack = c.stack[:0]
}
