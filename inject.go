package sprig

import "github.com/hajimehoshi/ebiten/v2"

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthWheel
	synthKeyDown
	synthKeyUp
	synthChar
)

// syntheticEvent is one queued input event. Coordinates are screen pixels,
// matching what a screenshot shows.
type syntheticEvent struct {
	kind   syntheticKind
	x, y   int
	button MouseButton
	dx, dy float64
	key    ebiten.Key
	char   rune
	mods   KeyModifiers
}

// InjectPress queues a left-button press at the given screen coordinates.
// Queued events are dispatched one per Step.
func (g *Gui) InjectPress(x, y int) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthPress, x: x, y: y, button: MouseButtonLeft})
}

// InjectMove queues a pointer move. Use it between InjectPress and
// InjectRelease to simulate a drag.
func (g *Gui) InjectMove(x, y int) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthMove, x: x, y: y, button: MouseButtonLeft})
}

// InjectRelease queues a left-button release.
func (g *Gui) InjectRelease(x, y int) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthRelease, x: x, y: y, button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two steps.
func (g *Gui) InjectClick(x, y int) {
	g.InjectPress(x, y)
	g.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), steps-2 linearly interpolated
// moves and a release at (toX, toY). steps below 2 is treated as 2.
func (g *Gui) InjectDrag(fromX, fromY, toX, toY, steps int) {
	if steps < 2 {
		steps = 2
	}
	g.InjectPress(fromX, fromY)
	moves := steps - 2
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves+1)
		x := fromX + round(float64(toX-fromX)*t)
		y := fromY + round(float64(toY-fromY)*t)
		g.InjectMove(x, y)
	}
	g.InjectRelease(toX, toY)
}

// InjectWheel queues a scroll at the given point.
func (g *Gui) InjectWheel(x, y int, dx, dy float64) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthWheel, x: x, y: y, dx: dx, dy: dy})
}

// InjectKey queues a key down followed by a key up. Consumes two steps.
func (g *Gui) InjectKey(key ebiten.Key, mods KeyModifiers) {
	g.injectQueue = append(g.injectQueue,
		syntheticEvent{kind: synthKeyDown, key: key, mods: mods},
		syntheticEvent{kind: synthKeyUp, key: key, mods: mods})
}

// InjectChar queues one typed character per rune of s.
func (g *Gui) InjectChar(s string) {
	for _, r := range s {
		g.injectQueue = append(g.injectQueue, syntheticEvent{kind: synthChar, char: r})
	}
}

// Pending returns the number of queued synthetic events.
func (g *Gui) Pending() int { return len(g.injectQueue) }

// Step advances an attached TestRunner, then pops one synthetic event and
// dispatches it. Returns true if an event was dispatched, in which case the
// host skips real input for this tick.
func (g *Gui) Step() bool {
	if g.testRunner != nil {
		g.testRunner.step(g)
	}
	if len(g.injectQueue) == 0 {
		return false
	}
	evt := g.injectQueue[0]
	copy(g.injectQueue, g.injectQueue[1:])
	g.injectQueue = g.injectQueue[:len(g.injectQueue)-1]

	switch evt.kind {
	case synthPress:
		g.PointerDown(evt.x, evt.y, evt.button, evt.mods)
	case synthMove:
		g.PointerMove(evt.x, evt.y, evt.mods)
	case synthRelease:
		g.PointerUp(evt.x, evt.y, evt.button, evt.mods)
	case synthWheel:
		g.Wheel(evt.x, evt.y, evt.dx, evt.dy, evt.mods)
	case synthKeyDown:
		g.KeyDown(evt.key, evt.mods)
	case synthKeyUp:
		g.KeyUp(evt.key, evt.mods)
	case synthChar:
		g.KeyPress(evt.char, evt.mods)
	}
	return true
}
