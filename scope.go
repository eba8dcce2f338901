package sprig

// Frame is handed to Renderer.Render. Clip and Transform are already scoped to
// the widget being rendered: every ancestor's transform and clip (and the
// widget's own) are pushed. Anything a widget pushes itself it must pop before
// returning.
type Frame struct {
	Delta     float64 // seconds since the previous frame
	Handle    any     // host renderer handle, passed through untouched
	Clip      *ClipStack
	Transform *TransformStack
	Gui       *Gui
}

// scope records how many entries enterScope pushed.
type scope struct {
	clips, transforms int
}

// enterScope pushes, root first, the transform and clip of every widget on the
// path from the root down to n inclusive onto the Gui's render stacks.
func (g *Gui) enterScope(n *Node) scope {
	return g.pushChain(n, g.clips, g.transforms)
}

// exitScope pops what enterScope pushed.
func (g *Gui) exitScope(s scope) {
	popChain(s, g.clips, g.transforms)
}

// pushChain pushes the ancestor chain of n onto the given stacks. Rendering
// and hit testing both go through it, so a widget is clickable exactly where
// it is drawn.
func (g *Gui) pushChain(n *Node, clips *ClipStack, transforms *TransformStack) scope {
	g.chainBuf = g.chainBuf[:0]
	for p := n; p != nil; p = p.parent {
		g.chainBuf = append(g.chainBuf, p)
	}
	var s scope
	for i := len(g.chainBuf) - 1; i >= 0; i-- {
		p := g.chainBuf[i]
		if p.hasTransform {
			transforms.Push(p.transform)
			s.transforms++
		}
		if p.clipChildren {
			clips.Push(transforms.Top().TransformRect(p.resolved.bounds))
			s.clips++
		}
	}
	return s
}

func popChain(s scope, clips *ClipStack, transforms *TransformStack) {
	for range s.clips {
		clips.Pop()
	}
	for range s.transforms {
		transforms.Pop()
	}
}

// HitTest reports whether the screen point (x, y) hits w, honoring every clip
// and transform on its ancestor path. Widgets call it from pointer handlers
// and from Render. It works on its own stacks, so the render stacks are left
// untouched.
func (g *Gui) HitTest(w Widget, x, y int) bool {
	n := w.Base()
	if n.gui != g || n.disposed {
		return false
	}
	if g.hitClips == nil {
		g.hitClips = NewClipStack(Rect{})
		g.hitTransforms = NewTransformStack()
	}
	g.hitClips.SetScreen(Rect{Width: g.screenW, Height: g.screenH})
	s := g.pushChain(n, g.hitClips, g.hitTransforms)
	hit := g.hitClips.PointInside(x, y) && g.hitTransforms.ContainsPoint(n.resolved.bounds, x, y)
	popChain(s, g.hitClips, g.hitTransforms)
	return hit
}

// HitTest reports whether the screen point (x, y) hits this widget in its Gui.
// Always false for a widget that is not attached.
func (n *Node) HitTest(x, y int) bool {
	if n.gui == nil {
		return false
	}
	return n.gui.HitTest(n.Widget(), x, y)
}

// WidgetAt returns the front-most widget hit by the screen point (x, y), or
// nil. The order is the one built by the last partition.
func (g *Gui) WidgetAt(x, y int) Widget {
	order := g.order
	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		if g.HitTest(w, x, y) {
			return w
		}
	}
	return nil
}
