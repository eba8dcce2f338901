package sprig

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// debugStats holds per-frame timing metrics.
// Only populated when Gui.debug is true.
type debugStats struct {
	layoutTime  time.Duration
	renderTime  time.Duration
	widgetCount int
	partitions  int
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-widget
// access panics, tree depth and child count warnings are printed, clip and
// transform stack imbalances panic, and per-frame timing stats are logged to
// stderr.
func (g *Gui) SetDebugMode(enabled bool) {
	g.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Gui debug flag so that widget
// operations (which may run before a widget has a Gui) can check it cheaply.
var globalDebug bool

// debugLog prints timing stats to stderr.
func (g *Gui) debugLog(stats debugStats) {
	if !g.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[sprig] layout: %v | render: %v | widgets: %d | partitions: %d\n",
		stats.layoutTime, stats.renderTime, stats.widgetCount, stats.partitions)
}

// debugCheckDisposed panics with a descriptive message when a disposed widget
// is used in a tree operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sprig debug: %s on disposed widget %q (ID %d)", op, n.name, n.id))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[sprig] warning: tree depth %d exceeds %d (widget %q)\n",
			depth, debugMaxTreeDepth, n.name)
	}
}

// debugCheckChildCount warns on stderr if a widget has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[sprig] warning: widget %q has %d children (threshold %d)\n",
			n.name, len(n.children), debugMaxChildCount)
	}
}

// debugCheckWidgetBalance panics when a widget's Render left the stacks at a
// different depth than it found them.
func debugCheckWidgetBalance(n *Node, clipBefore, tfBefore, clipAfter, tfAfter int) {
	if clipBefore != clipAfter {
		panic(fmt.Sprintf("sprig debug: widget %q left clip stack at depth %d, want %d", n.name, clipAfter, clipBefore))
	}
	if tfBefore != tfAfter {
		panic(fmt.Sprintf("sprig debug: widget %q left transform stack at depth %d, want %d", n.name, tfAfter, tfBefore))
	}
}

// checkBalance compares stack depths after a render pass with the depths
// before it. Debug mode panics; otherwise the imbalance is only logged.
func (g *Gui) checkBalance(clipBefore, tfBefore int) {
	clipAfter, tfAfter := g.clips.Depth(), g.transforms.Depth()
	if clipAfter == clipBefore && tfAfter == tfBefore {
		return
	}
	if g.debug {
		panic(fmt.Sprintf("sprig debug: unbalanced stacks after frame: clip %d→%d, transform %d→%d",
			clipBefore, clipAfter, tfBefore, tfAfter))
	}
	Logger().Warn("sprig: unbalanced stacks after frame",
		"clipBefore", clipBefore, "clipAfter", clipAfter,
		"transformBefore", tfBefore, "transformAfter", tfAfter)
}

// DumpTree writes one line per widget with its resolved bounds, indented by
// depth. Meant for debugging layouts.
func (g *Gui) DumpTree(w io.Writer) error {
	for _, r := range g.roots {
		if err := DumpTree(w, r); err != nil {
			return err
		}
	}
	return nil
}

// DumpTree writes the subtree rooted at root, one line per widget.
func DumpTree(w io.Writer, root Widget) error {
	var err error
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n))
		for _, child := range n.children {
			visit(child.Base(), depth+1)
		}
	}
	visit(root.Base(), 0)
	return err
}

// describe formats a widget's name and resolved state on one line.
func describe(n *Node) string {
	b := n.resolved.bounds
	name := n.name
	if name == "" {
		name = "?"
	}
	s := fmt.Sprintf("%s {X:%d Y:%d W:%d H:%d} scale=%d fade=%g", name, b.X, b.Y, b.Width, b.Height, n.resolved.scale, n.resolved.fade)
	if n.priority != 0 {
		s += fmt.Sprintf(" priority=%d", n.priority)
	}
	if n.hidden {
		s += " hidden"
	}
	if n.focused {
		s += " focused"
	}
	return s
}
