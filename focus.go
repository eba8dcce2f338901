package sprig

// Focused returns the focused widget, or nil.
func (g *Gui) Focused() Widget {
	if g.focused == nil {
		return nil
	}
	return g.focused.Widget()
}

// Focus gives w keyboard focus. Every other widget in the Gui is unfocused
// first, so at most one widget is focused at any time. Returns false (leaving
// nothing focused) when w is nil, belongs to another Gui, is hidden, or does
// not accept focus.
func (g *Gui) Focus(w Widget) bool {
	var target *Node
	if w != nil {
		if n := w.Base(); n.gui == g && canFocus(n) {
			target = n
		}
	}
	for _, r := range g.roots {
		walk(r.Base(), func(n *Node) {
			if n.focused && n != target {
				setFocused(n, false)
			}
		})
	}
	g.focused = target
	if target == nil {
		return false
	}
	if !target.focused {
		setFocused(target, true)
	}
	return true
}

// Blur removes focus from every widget.
func (g *Gui) Blur() {
	g.Focus(nil)
}

// FocusNext moves focus to the first focusable widget after the focused one
// in front-to-back order. With nothing focused it picks the front-most
// focusable widget; past the last one, focus is cleared.
func (g *Gui) FocusNext() Widget {
	g.syncPartition()
	cur := g.focusIndex()
	// Front-to-back is the back-to-front order walked in reverse.
	start := len(g.order) - 1
	if cur >= 0 {
		start = cur - 1
	}
	for i := start; i >= 0; i-- {
		if canFocus(g.order[i].Base()) {
			g.Focus(g.order[i])
			return g.order[i]
		}
	}
	g.Blur()
	return nil
}

// FocusPrev moves focus to the first focusable widget before the focused one
// in front-to-back order. With nothing focused it picks the back-most
// focusable widget; past the first one, focus is cleared.
func (g *Gui) FocusPrev() Widget {
	g.syncPartition()
	cur := g.focusIndex()
	start := 0
	if cur >= 0 {
		start = cur + 1
	}
	for i := start; i < len(g.order); i++ {
		if canFocus(g.order[i].Base()) {
			g.Focus(g.order[i])
			return g.order[i]
		}
	}
	g.Blur()
	return nil
}

// focusIndex returns the focused widget's index in the back-to-front order, or -1.
func (g *Gui) focusIndex() int {
	if g.focused == nil {
		return -1
	}
	for i, w := range g.order {
		if w.Base() == g.focused {
			return i
		}
	}
	return -1
}

// Focus asks the widget's Gui to focus it.
func (n *Node) Focus() bool {
	if n.gui == nil {
		return false
	}
	return n.gui.Focus(n.Widget())
}

func canFocus(n *Node) bool {
	if n.disposed {
		return false
	}
	for p := n; p != nil; p = p.parent {
		if p.hidden {
			return false
		}
	}
	f, ok := n.Widget().(Focusable)
	return ok && f.CanFocus()
}

func setFocused(n *Node, focused bool) {
	n.focused = focused
	if o, ok := n.Widget().(FocusObserver); ok {
		o.FocusChanged(focused)
	}
}
