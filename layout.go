package sprig

import "math"

// LayoutContext carries the per-frame inputs of a layout pass.
type LayoutContext struct {
	ScreenWidth  int
	ScreenHeight int
	Scale        int // global UI scale; values below 1 are treated as 1
}

func (c LayoutContext) scale() int {
	if c.Scale < 1 {
		return 1
	}
	return c.Scale
}

func (c LayoutContext) screen() Rect {
	return Rect{Width: c.ScreenWidth, Height: c.ScreenHeight}
}

// directives is the layout configuration set by a widget's owner.
// Index 0 is the horizontal axis, index 1 the vertical axis.
type directives struct {
	posMode  [2]Mode
	sizeMode [2]Mode
	pos      [2]float64
	size     [2]float64
	align    Alignment
	outside  [2]bool
	fit      FitAxes
	fitDeep  bool
	noScale  bool
	fade     float64
}

// resolvedState is recomputed by every layout pass.
type resolvedState struct {
	bounds  Rect
	scale   int
	fade    float64
	noScale bool

	// size last reported through Resizer
	reportedW, reportedH int
}

// --- Directive setters ---
//
// Directive changes become visible in the resolved bounds after the next pass.

// SetPosition sets the raw position values. Their meaning depends on the
// position mode: pixels for Fixed, a fraction of the parent size for Percent.
func (n *Node) SetPosition(x, y float64) {
	n.layout.pos = [2]float64{x, y}
}

// SetSize sets the raw size values. Fixed sizes are multiplied by the
// effective scale; Percent sizes are fractions of the parent size.
func (n *Node) SetSize(w, h float64) {
	n.layout.size = [2]float64{w, h}
}

// SetPositionMode sets the horizontal and vertical position modes.
func (n *Node) SetPositionMode(h, v Mode) {
	n.layout.posMode = [2]Mode{h, v}
}

// SetSizeMode sets the horizontal and vertical size modes.
func (n *Node) SetSizeMode(h, v Mode) {
	n.layout.sizeMode = [2]Mode{h, v}
}

// SetFixed positions and sizes the widget in pixels.
func (n *Node) SetFixed(x, y, w, h float64) {
	n.SetPositionMode(Fixed, Fixed)
	n.SetSizeMode(Fixed, Fixed)
	n.SetPosition(x, y)
	n.SetSize(w, h)
}

// SetPercent positions and sizes the widget as fractions of its parent.
func (n *Node) SetPercent(x, y, w, h float64) {
	n.SetPositionMode(Percent, Percent)
	n.SetSizeMode(Percent, Percent)
	n.SetPosition(x, y)
	n.SetSize(w, h)
}

// SetAlign anchors the widget to one of nine positions of its parent. With an
// alignment set, position values become offsets measured inward from the
// anchored edge.
func (n *Node) SetAlign(a Alignment) {
	n.layout.align = a
}

// Align returns the alignment directive.
func (n *Node) Align() Alignment { return n.layout.align }

// SetAlignOutside places the widget fully outside the parent edge it is
// aligned to, per axis. Has no effect on centered axes.
func (n *Node) SetAlignOutside(h, v bool) {
	n.layout.outside = [2]bool{h, v}
}

// SetAutoFit derives the given dimensions from the widget's descendants after
// they are resolved. deep visits every descendant; otherwise only direct
// children are measured.
//
// The fitted size is measured from the widget's own top-left corner to the
// right and bottom edges of its descendants, so space before the first child
// is kept. Descendants placed left of or above that corner (for example with
// SetAlignOutside) do not extend the size.
//
// Auto-fit is a two-pass approximation: children are resolved, the widget is
// resized to enclose them, then the children are resolved once more against
// the new size. Children whose size depends on an auto-fit parent (Percent
// sizes, end or center alignment) are not solved to a fixed point.
func (n *Node) SetAutoFit(axes FitAxes, deep bool) {
	n.layout.fit = axes
	n.layout.fitDeep = deep
}

// SetNoScale opts the widget and all its descendants out of UI scaling.
func (n *Node) SetNoScale(noScale bool) {
	n.layout.noScale = noScale
}

// SetFade sets the local fade delta added to the parent's resolved fade.
func (n *Node) SetFade(f float64) {
	n.layout.fade = f
}

// LocalFade returns the local fade delta.
func (n *Node) LocalFade() float64 { return n.layout.fade }

// --- Resolved queries ---
//
// Valid only after a layout pass.

// X returns the resolved absolute left edge.
func (n *Node) X() int { return n.resolved.bounds.X }

// Y returns the resolved absolute top edge.
func (n *Node) Y() int { return n.resolved.bounds.Y }

// Width returns the resolved width.
func (n *Node) Width() int { return n.resolved.bounds.Width }

// Height returns the resolved height.
func (n *Node) Height() int { return n.resolved.bounds.Height }

// Bounds returns the resolved absolute rectangle.
func (n *Node) Bounds() Rect { return n.resolved.bounds }

// Scale returns the resolved scale factor: 1 when the widget or an ancestor
// opted out of scaling, otherwise the global UI scale.
func (n *Node) Scale() int { return n.resolved.scale }

// Fade returns the resolved fade: the parent's resolved fade plus the local delta.
func (n *Node) Fade() float64 { return n.resolved.fade }

// Contains reports whether a screen point lies inside the resolved bounds,
// ignoring clipping and transforms. Use Gui.HitTest for those.
func (n *Node) Contains(x, y int) bool { return n.resolved.bounds.Contains(x, y) }

// --- Resolution ---

// parentFrame is what a widget inherits from its parent during a pass.
type parentFrame struct {
	bounds  Rect
	fade    float64
	noScale bool
}

// Resolve computes resolved bounds for this widget and its subtree in one
// depth-first pass, then fires resize notifications. A root resolves against
// the screen; any other widget resolves against its parent's current resolved
// bounds. A parent that has not been resolved yet yields zero-sized bounds,
// which correct themselves on the next full pass.
func (n *Node) Resolve(ctx LayoutContext) {
	n.resolveTree(ctx)
	notifyResized(n)
}

func (n *Node) resolveTree(ctx LayoutContext) {
	pf := parentFrame{bounds: ctx.screen()}
	if p := n.parent; p != nil {
		pf = parentFrame{bounds: p.resolved.bounds, fade: p.resolved.fade, noScale: p.resolved.noScale}
	}
	n.resolveAgainst(ctx, pf)
}

func (n *Node) resolveAgainst(ctx LayoutContext, pf parentFrame) {
	d := &n.layout
	r := &n.resolved

	r.noScale = d.noScale || pf.noScale
	r.scale = 1
	if !r.noScale {
		r.scale = ctx.scale()
	}

	pw, ph := pf.bounds.Width, pf.bounds.Height
	w := resolveSize(d.sizeMode[0], d.size[0], pw, r.scale)
	h := resolveSize(d.sizeMode[1], d.size[1], ph, r.scale)
	x, y := n.place(w, h, pw, ph)

	r.bounds = Rect{X: pf.bounds.X + x, Y: pf.bounds.Y + y, Width: w, Height: h}
	r.fade = pf.fade + d.fade

	n.resolveChildren(ctx)

	if d.fit == FitNone || len(n.children) == 0 {
		return
	}
	if fitted, ok := n.fittedSize(); ok {
		fx, fy := n.place(fitted.Width, fitted.Height, pw, ph)
		r.bounds = Rect{X: pf.bounds.X + fx, Y: pf.bounds.Y + fy, Width: fitted.Width, Height: fitted.Height}
		n.resolveChildren(ctx)
	}
}

func (n *Node) resolveChildren(ctx LayoutContext) {
	pf := parentFrame{bounds: n.resolved.bounds, fade: n.resolved.fade, noScale: n.resolved.noScale}
	for _, child := range n.children {
		child.Base().resolveAgainst(ctx, pf)
	}
}

// place returns the parent-relative position of a w×h rectangle.
func (n *Node) place(w, h, pw, ph int) (int, int) {
	d := &n.layout
	x := resolvePosition(d.posMode[0], d.pos[0], pw)
	y := resolvePosition(d.posMode[1], d.pos[1], ph)
	ha, va, ok := d.align.axes()
	if !ok {
		return x, y
	}
	return alignAxis(ha, x, w, pw, d.outside[0]), alignAxis(va, y, h, ph, d.outside[1])
}

// resolvePosition converts a raw position. Fixed offsets are never scaled.
func resolvePosition(m Mode, raw float64, parent int) int {
	if m == Percent {
		return round(raw * float64(parent))
	}
	return round(raw)
}

func resolveSize(m Mode, raw float64, parent, scale int) int {
	if m == Percent {
		return round(raw * float64(parent))
	}
	return round(raw * float64(scale))
}

// alignAxis positions a span of length size along a parent span of length
// parent. offset is measured inward from the anchored edge, or away from it
// when outside is set.
func alignAxis(a anchor, offset, size, parent int, outside bool) int {
	switch a {
	case anchorMiddle:
		return (parent-size)/2 + offset
	case anchorEnd:
		if outside {
			return parent + offset
		}
		return parent - size - offset
	default:
		if outside {
			return -size - offset
		}
		return offset
	}
}

// fittedSize measures the extent of the widget's descendants from its own
// top-left corner. ok is false when no visible descendant was visited.
func (n *Node) fittedSize() (Rect, bool) {
	b := n.resolved.bounds
	right, bottom := b.X, b.Y
	found := false
	var visit func(*Node, bool)
	visit = func(p *Node, recurse bool) {
		for _, child := range p.children {
			cn := child.Base()
			if cn.hidden {
				continue
			}
			cb := cn.resolved.bounds
			right = max(right, cb.Right())
			bottom = max(bottom, cb.Bottom())
			found = true
			if recurse {
				visit(cn, true)
			}
		}
	}
	visit(n, n.layout.fitDeep)
	if !found {
		return b, false
	}
	if n.layout.fit.width() {
		b.Width = right - b.X
	}
	if n.layout.fit.height() {
		b.Height = bottom - b.Y
	}
	return b, true
}

// notifyResized fires Resized for every widget in the subtree whose size
// differs from the one last reported.
func notifyResized(n *Node) {
	if n.disposed {
		return
	}
	r := &n.resolved
	if r.bounds.Width != r.reportedW || r.bounds.Height != r.reportedH {
		oldW, oldH := r.reportedW, r.reportedH
		r.reportedW, r.reportedH = r.bounds.Width, r.bounds.Height
		if rs, ok := n.Widget().(Resizer); ok {
			rs.Resized(oldW, oldH)
		}
	}
	for _, child := range n.children {
		notifyResized(child.Base())
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
