package sprig

import "github.com/hajimehoshi/ebiten/v2"

// PointerEvent carries pointer down, up and move data. Coordinates are screen pixels.
type PointerEvent struct {
	X, Y    int
	Button  MouseButton
	Mods    KeyModifiers
	Handled bool
}

// WheelEvent carries scroll wheel data.
type WheelEvent struct {
	X, Y           int
	DeltaX, DeltaY float64
	Mods           KeyModifiers
	Handled        bool
}

// KeyEvent carries key down and key up data.
type KeyEvent struct {
	Key     ebiten.Key
	Mods    KeyModifiers
	Handled bool
}

// CharEvent carries a typed character.
type CharEvent struct {
	Char    rune
	Mods    KeyModifiers
	Handled bool
}

// RenderEvent is published before and after the widgets render.
type RenderEvent struct {
	Delta  float64
	Handle any
}

type subscription[E any] struct {
	fn     func(*E)
	owner  *Node
	active bool
}

// Channel is one typed event stream of an EventBus.
//
// Subscribers made by widgets inside RegisterEvents are delivered in dispatch
// order and dropped whenever the bus is rebuilt. Subscribers made anywhere
// else are global: they survive rebuilds and run after all widget subscribers.
//
// Every subscriber sees every event. Handlers are expected to check Handled
// first and to set it when they consume the event; the channel never stops
// delivery on its own.
type Channel[E any] struct {
	bus         *EventBus
	frontToBack bool
	subs        []*subscription[E]
	global      []*subscription[E]
}

// Subscription allows removing a registered callback.
type Subscription struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires. Safe to call during
// dispatch; the current dispatch keeps its snapshot of subscribers, but a
// removed callback is skipped.
func (s Subscription) Remove() {
	if s.remove != nil {
		s.remove()
	}
}

// Subscribe registers fn on the channel.
func (c *Channel[E]) Subscribe(fn func(*E)) Subscription {
	s := &subscription[E]{fn: fn, active: true}
	if c.bus != nil && c.bus.owner != nil {
		s.owner = c.bus.owner
		c.subs = append(c.subs, s)
	} else {
		c.global = append(c.global, s)
	}
	return Subscription{remove: func() { c.remove(s) }}
}

// Len returns the number of live subscribers.
func (c *Channel[E]) Len() int {
	return len(c.subs) + len(c.global)
}

// remove deactivates s and rebuilds the lists into fresh backing arrays so an
// in-flight dispatch iterating the old slices is unaffected.
func (c *Channel[E]) remove(s *subscription[E]) {
	if !s.active {
		return
	}
	s.active = false
	c.subs = without(c.subs, s)
	c.global = without(c.global, s)
}

func without[E any](list []*subscription[E], s *subscription[E]) []*subscription[E] {
	for i, x := range list {
		if x == s {
			out := make([]*subscription[E], 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}

// dispatch delivers e to every subscriber over a snapshot of the lists.
func (c *Channel[E]) dispatch(e *E) {
	subs, global := c.subs, c.global
	if c.frontToBack {
		for i := len(subs) - 1; i >= 0; i-- {
			deliver(subs[i], e)
		}
	} else {
		for _, s := range subs {
			deliver(s, e)
		}
	}
	for _, s := range global {
		deliver(s, e)
	}
}

func deliver[E any](s *subscription[E], e *E) {
	if !s.active {
		return
	}
	if s.owner != nil && s.owner.disposed {
		return
	}
	s.fn(e)
}

// resetOwned drops widget subscribers, keeping global ones.
func (c *Channel[E]) resetOwned() {
	for _, s := range c.subs {
		s.active = false
	}
	c.subs = nil
}

// EventBus holds the typed channels of one Gui. Pointer and key channels
// deliver front-to-back (the top-most widget first); render channels deliver
// back-to-front.
type EventBus struct {
	PointerDown Channel[PointerEvent]
	PointerUp   Channel[PointerEvent]
	PointerMove Channel[PointerEvent]
	Wheel       Channel[WheelEvent]
	KeyDown     Channel[KeyEvent]
	KeyUp       Channel[KeyEvent]
	KeyPress    Channel[CharEvent]
	PreRender   Channel[RenderEvent]
	PostRender  Channel[RenderEvent]

	owner *Node
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	b := &EventBus{}
	b.PointerDown = Channel[PointerEvent]{bus: b, frontToBack: true}
	b.PointerUp = Channel[PointerEvent]{bus: b, frontToBack: true}
	b.PointerMove = Channel[PointerEvent]{bus: b, frontToBack: true}
	b.Wheel = Channel[WheelEvent]{bus: b, frontToBack: true}
	b.KeyDown = Channel[KeyEvent]{bus: b, frontToBack: true}
	b.KeyUp = Channel[KeyEvent]{bus: b, frontToBack: true}
	b.KeyPress = Channel[CharEvent]{bus: b, frontToBack: true}
	b.PreRender = Channel[RenderEvent]{bus: b}
	b.PostRender = Channel[RenderEvent]{bus: b}
	return b
}

// Owner returns the widget currently registering, or nil outside RegisterEvents.
func (b *EventBus) Owner() Widget {
	if b.owner == nil {
		return nil
	}
	return b.owner.Widget()
}

// register calls RegisterEvents for w with w recorded as the owner of every
// subscription it makes.
func (b *EventBus) register(w Widget, r EventRegistrar) {
	b.owner = w.Base()
	defer func() { b.owner = nil }()
	r.RegisterEvents(b)
}

// resetOwned drops every widget subscription on every channel.
func (b *EventBus) resetOwned() {
	b.PointerDown.resetOwned()
	b.PointerUp.resetOwned()
	b.PointerMove.resetOwned()
	b.Wheel.resetOwned()
	b.KeyDown.resetOwned()
	b.KeyUp.resetOwned()
	b.KeyPress.resetOwned()
	b.PreRender.resetOwned()
	b.PostRender.resetOwned()
}
