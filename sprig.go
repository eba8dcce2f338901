package sprig

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rect is an axis-aligned rectangle in screen pixels. The coordinate system has
// its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point (x, y) lies inside the rectangle.
// The left and top edges are inside, the right and bottom edges are not.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// ContainsRect reports whether other lies entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Intersect returns the overlap of r and other. Width and height are clamped
// to zero when the rectangles do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	return Rect{X: x0, Y: y0, Width: max(0, x1-x0), Height: max(0, y1-y0)}
}

// Union returns the smallest rectangle enclosing both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.Right(), other.Right())
	y1 := max(r.Bottom(), other.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Mode selects how a raw position or size value is interpreted.
type Mode uint8

const (
	Fixed   Mode = iota // raw pixels
	Percent             // fraction of the parent's resolved size
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m == Percent {
		return "percent"
	}
	return "fixed"
}

// Alignment anchors a widget to one of nine positions of its parent.
type Alignment uint8

const (
	AlignNone         Alignment = iota // position directives are used as-is
	AlignLeftTop                       // top-left corner
	AlignCenterTop                     // centered along the top edge
	AlignRightTop                      // top-right corner
	AlignLeftCenter                    // centered along the left edge
	AlignCenter                        // centered on both axes
	AlignRightCenter                   // centered along the right edge
	AlignLeftBottom                    // bottom-left corner
	AlignCenterBottom                  // centered along the bottom edge
	AlignRightBottom                   // bottom-right corner
)

var alignNames = [...]string{
	"none", "left-top", "center-top", "right-top",
	"left-center", "center", "right-center",
	"left-bottom", "center-bottom", "right-bottom",
}

// String returns the kebab-case alignment name, e.g. "right-bottom".
func (a Alignment) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "unknown"
}

// ParseAlignment maps a name produced by Alignment.String back to its value.
func ParseAlignment(s string) (Alignment, bool) {
	for i, name := range alignNames {
		if name == s {
			return Alignment(i), true
		}
	}
	return AlignNone, false
}

// anchor is the position along one axis: start, middle or end.
type anchor uint8

const (
	anchorStart anchor = iota
	anchorMiddle
	anchorEnd
)

// axes splits the alignment into its horizontal and vertical anchors.
// ok is false for AlignNone.
func (a Alignment) axes() (h, v anchor, ok bool) {
	if a == AlignNone || a > AlignRightBottom {
		return 0, 0, false
	}
	i := int(a - AlignLeftTop)
	return anchor(i % 3), anchor(i / 3), true
}

// FitAxes selects which dimensions auto-fit derives from descendants.
type FitAxes uint8

const (
	FitNone   FitAxes = iota // size comes from directives
	FitWidth                 // width encloses descendants
	FitHeight                // height encloses descendants
	FitBoth                  // width and height enclose descendants
)

func (f FitAxes) width() bool  { return f == FitWidth || f == FitBoth }
func (f FitAxes) height() bool { return f == FitHeight || f == FitBoth }

// EventType identifies a kind of bus event.
type EventType uint8

const (
	EventPointerDown EventType = iota // pointer button pressed
	EventPointerUp                    // pointer button released
	EventPointerMove                  // pointer moved
	EventWheel                        // scroll wheel moved
	EventKeyDown                      // key pressed
	EventKeyUp                        // key released
	EventKeyPress                     // character typed
	EventPreRender                    // before the widgets render
	EventPostRender                   // after the widgets render
)

var eventNames = [...]string{
	"pointer-down", "pointer-up", "pointer-move", "wheel",
	"key-down", "key-up", "key-press", "pre-render", "post-render",
}

// String returns the event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Shift reports whether the Shift bit is set.
func (m KeyModifiers) Shift() bool { return m&ModShift != 0 }
