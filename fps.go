package sprig

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var _ Renderer = (*FPSWidget)(nil)

// FPSWidget shows the current FPS and TPS in the top-right corner of its
// parent. The text is refreshed every ~0.5 seconds and drawn with
// ebitenutil.DebugPrintAt, so it needs the host's *Canvas handle; with any
// other handle it draws nothing.
type FPSWidget struct {
	Node

	text  string
	since float64
}

// NewFPSWidget creates an FPS readout that renders above ordinary widgets.
func NewFPSWidget() *FPSWidget {
	w := &FPSWidget{}
	w.Init(w, "fps")
	w.SetFixed(4, 4, 100, 32)
	w.SetAlign(AlignRightTop)
	w.SetNoScale(true)
	w.SetPriority(1 << 20)
	return w
}

// Text returns the text shown by the last refresh.
func (w *FPSWidget) Text() string { return w.text }

// Render implements Renderer.
func (w *FPSWidget) Render(f *Frame) {
	w.since += f.Delta
	if w.text == "" || w.since >= 0.5 {
		w.since = 0
		w.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	c, ok := f.Handle.(*Canvas)
	if !ok {
		return
	}
	c.FillRect(w.Bounds(), Color{0, 0, 0, 0.5})
	if dst := c.target(); dst != nil {
		ebitenutil.DebugPrintAt(dst, w.text, w.X()+2, w.Y())
	}
}
