package sprig

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 directive fields of a widget at once. Create one
// with TweenFade or TweenPosition and call Update(dt) each frame; the new
// values show up in the next layout pass. If the target widget is disposed,
// the group stops immediately.
//
// There is no global animation manager; callers drive Update themselves,
// typically from a PreRender subscriber.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// target's directives. If the target has been disposed, Done is set and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.disposed {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenFade animates a widget's local fade delta to the given value.
func TweenFade(w Widget, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	n := w.Base()
	g := &TweenGroup{count: 1, target: n}
	g.tweens[0] = gween.New(float32(n.layout.fade), float32(to), duration, fn)
	g.fields[0] = &n.layout.fade
	return g
}

// TweenPosition animates a widget's raw position values. The values keep the
// meaning of the current position mode: pixels for Fixed, fractions for Percent.
func TweenPosition(w Widget, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	n := w.Base()
	g := &TweenGroup{count: 2, target: n}
	g.tweens[0] = gween.New(float32(n.layout.pos[0]), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(n.layout.pos[1]), float32(toY), duration, fn)
	g.fields[0] = &n.layout.pos[0]
	g.fields[1] = &n.layout.pos[1]
	return g
}

// defaultFlipDistance is the viewer distance used by PageFlip, in pixels.
const defaultFlipDistance = 1000

// PageFlip turns a widget about its left edge like a book page, with
// perspective. The angle runs from From to To (radians; 0 is flat, π is
// turned over onto the left) and is written to the widget's local transform
// on every Update, so the widget's descendants turn with it and stay
// clickable where they are drawn.
type PageFlip struct {
	From, To float64
	// Distance is the viewer distance in pixels. Larger values flatten the
	// perspective.
	Distance float64
	Done     bool

	tween  *gween.Tween
	target *Node
	angle  float64
}

// NewPageFlip creates a flip of w from angle from to angle to.
func NewPageFlip(w Widget, from, to float64, duration float32, fn ease.TweenFunc) *PageFlip {
	return &PageFlip{
		From:     from,
		To:       to,
		Distance: defaultFlipDistance,
		tween:    gween.New(float32(from), float32(to), duration, fn),
		target:   w.Base(),
		angle:    from,
	}
}

// NewPageTurn creates a flip of w from flat (0) to fully turned over (π).
func NewPageTurn(w Widget, duration float32, fn ease.TweenFunc) *PageFlip {
	return NewPageFlip(w, 0, math.Pi, duration, fn)
}

// Angle returns the current angle in radians.
func (p *PageFlip) Angle() float64 { return p.angle }

// Update advances the flip by dt seconds and applies the resulting matrix to
// the widget. The spine is read from the widget's resolved bounds, so the
// widget must have been laid out at least once.
func (p *PageFlip) Update(dt float32) {
	if p.Done {
		return
	}
	if p.target.disposed {
		p.Done = true
		return
	}
	val, finished := p.tween.Update(dt)
	p.angle = float64(val)
	if finished {
		p.angle = p.To
	}
	p.target.SetTransform(p.Matrix())
	p.Done = finished
}

// Matrix returns the transform for the current angle: a rotation about the
// vertical line through the widget's left edge, projected from a viewer
// centered on that line.
func (p *PageFlip) Matrix() Matrix {
	b := p.target.resolved.bounds
	sx := float64(b.X)
	cy := float64(b.Y) + float64(b.Height)/2
	d := p.Distance
	if d <= 0 {
		d = defaultFlipDistance
	}
	return Translate(sx, cy, 0).
		Mul(Perspective(d)).
		Mul(RotateY(-p.angle)).
		Mul(Translate(-sx, -cy, 0))
}

// Reset rewinds the flip to its starting angle.
func (p *PageFlip) Reset() {
	p.tween.Reset()
	p.angle = p.From
	p.Done = false
}
