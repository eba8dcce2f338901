package sprig

import "testing"

func TestClipStackIntersects(t *testing.T) {
	c := NewClipStack(Rect{Width: 200, Height: 200})
	c.Push(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	got := c.Push(Rect{X: 50, Y: 50, Width: 100, Height: 100})
	assertRect(t, "Push", got, Rect{X: 50, Y: 50, Width: 50, Height: 50})
	assertRect(t, "Active", c.Active(), Rect{X: 50, Y: 50, Width: 50, Height: 50})
}

func TestClipStackNeverGrows(t *testing.T) {
	c := NewClipStack(Rect{Width: 100, Height: 100})
	rects := []Rect{
		{X: 10, Y: 10, Width: 80, Height: 80},
		{X: -50, Y: -50, Width: 500, Height: 500},
		{X: 20, Y: 0, Width: 10, Height: 100},
		{X: 200, Y: 200, Width: 10, Height: 10},
	}
	prev := c.Active()
	for i, r := range rects {
		cur := c.Push(r)
		if !cur.Empty() && !prev.ContainsRect(cur) {
			t.Errorf("push %d: %+v escapes %+v", i, cur, prev)
		}
		if cur.Width > prev.Width || cur.Height > prev.Height {
			t.Errorf("push %d: region grew from %+v to %+v", i, prev, cur)
		}
		prev = cur
	}
	if !c.Active().Empty() {
		t.Errorf("disjoint push should leave an empty region, got %+v", c.Active())
	}
}

func TestClipStackPopRestores(t *testing.T) {
	c := NewClipStack(Rect{Width: 100, Height: 100})
	c.Push(Rect{X: 10, Y: 10, Width: 50, Height: 50})
	outer := c.Active()
	c.Push(Rect{X: 20, Y: 20, Width: 5, Height: 5})
	c.Pop()
	assertRect(t, "Active", c.Active(), outer)
	c.Pop()
	assertRect(t, "Active", c.Active(), Rect{Width: 100, Height: 100})
	if c.Clipping() {
		t.Error("Clipping should be false on an empty stack")
	}
}

func TestClipStackUnderflowPanics(t *testing.T) {
	c := NewClipStack(Rect{Width: 10, Height: 10})
	expectPanic(t, "clip stack underflow", func() { c.Pop() })
}

func TestClipStackPointInside(t *testing.T) {
	c := NewClipStack(Rect{Width: 100, Height: 100})
	if !c.PointInside(-5, 1000) {
		t.Error("empty stack contains every point")
	}
	c.Push(Rect{X: 10, Y: 10, Width: 10, Height: 10})
	tests := []struct {
		x, y int
		want bool
	}{
		{10, 10, true},
		{19, 19, true},
		{20, 10, false},
		{5, 15, false},
	}
	for _, tt := range tests {
		if got := c.PointInside(tt.x, tt.y); got != tt.want {
			t.Errorf("PointInside(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestClipStackClampsToScreen(t *testing.T) {
	c := NewClipStack(Rect{Width: 100, Height: 50})
	got := c.Push(Rect{X: 80, Y: -10, Width: 50, Height: 30})
	assertRect(t, "Push", got, Rect{X: 80, Y: 0, Width: 20, Height: 20})
	c.SetScreen(Rect{Width: 10, Height: 10})
	if c.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", c.Depth())
	}
}
