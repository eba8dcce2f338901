package sprig

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures Run.
type RunConfig struct {
	Config

	// Script, when non-empty, is a JSON test script (see LoadTestScript)
	// attached to the Gui before the window opens.
	Script []byte
	// ExitWhenDone terminates the game loop once the script has finished and
	// every queued event and screenshot has been processed.
	ExitWhenDone bool
}

// Run opens g if it is closed, shows it in an ebiten window and blocks until
// the window closes. The Gui is closed before Run returns.
func Run(g *Gui, cfg RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("sprig: run: %w", err)
	}
	if len(cfg.Script) > 0 {
		runner, err := LoadTestScript(cfg.Script)
		if err != nil {
			return fmt.Errorf("sprig: run: %w", err)
		}
		g.SetTestRunner(runner)
	}
	if g.State() == StateClosed {
		if err := g.Open(); err != nil {
			return err
		}
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	h := NewHost(g)
	h.ExitWhenDone = cfg.ExitWhenDone
	if err := ebiten.RunGame(h); err != nil {
		return err
	}
	if g.State() == StateActive {
		return g.Close()
	}
	return nil
}

// Host adapts a Gui to ebiten.Game. Update drains one synthetic event per
// tick, falling back to real mouse and keyboard input when the queue is
// empty; Draw runs one Gui frame with a *Canvas as the renderer handle.
type Host struct {
	ExitWhenDone bool

	gui    *Gui
	canvas Canvas
	last   time.Time

	cursorX, cursorY int
	keys             []ebiten.Key
	chars            []rune
}

// NewHost creates a host for g.
func NewHost(g *Gui) *Host {
	return &Host{gui: g, canvas: Canvas{gui: g}, cursorX: -1, cursorY: -1}
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if !h.gui.Step() {
		h.pollInput()
	}
	if h.ExitWhenDone && h.finished() {
		return ebiten.Termination
	}
	return nil
}

func (h *Host) finished() bool {
	r := h.gui.testRunner
	return r != nil && r.Done() && h.gui.Pending() == 0 && len(h.gui.screenshotQueue) == 0
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	now := time.Now()
	dt := 0.0
	if !h.last.IsZero() {
		dt = now.Sub(h.last).Seconds()
	}
	h.last = now

	h.canvas.Screen = screen
	h.gui.Frame(dt, &h.canvas)
	h.canvas.Screen = nil
	h.gui.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The Gui tracks the outside size, which may
// trigger a rebuild.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.gui.SetScreenSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

var hostButtons = [...]struct {
	eb ebiten.MouseButton
	b  MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

// pollInput dispatches this tick's real input: pointer moves, button edges,
// wheel, key edges and typed characters.
func (h *Host) pollInput() {
	g := h.gui
	mods := readModifiers()

	x, y := ebiten.CursorPosition()
	if x != h.cursorX || y != h.cursorY {
		h.cursorX, h.cursorY = x, y
		g.PointerMove(x, y, mods)
	}
	for _, hb := range hostButtons {
		if inpututil.IsMouseButtonJustPressed(hb.eb) {
			g.PointerDown(x, y, hb.b, mods)
		}
		if inpututil.IsMouseButtonJustReleased(hb.eb) {
			g.PointerUp(x, y, hb.b, mods)
		}
	}
	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		g.Wheel(x, y, dx, dy, mods)
	}

	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	for _, k := range h.keys {
		g.KeyDown(k, mods)
	}
	h.keys = inpututil.AppendJustReleasedKeys(h.keys[:0])
	for _, k := range h.keys {
		g.KeyUp(k, mods)
	}
	h.chars = ebiten.AppendInputChars(h.chars[:0])
	for _, r := range h.chars {
		g.KeyPress(r, mods)
	}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// Canvas is the renderer handle the host passes to Frame. Widgets retrieve it
// with f.Handle.(*sprig.Canvas). Every drawing call honors the clip region
// and transform currently on the Gui's stacks.
type Canvas struct {
	Screen *ebiten.Image
	gui    *Gui

	verts []ebiten.Vertex
}

var whitePixelImage *ebiten.Image

func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// target returns the screen cropped to the active clip region, or nil when
// nothing would be visible.
func (c *Canvas) target() *ebiten.Image {
	if c.Screen == nil {
		return nil
	}
	clip := c.gui.clips.Active()
	if clip.Empty() {
		return nil
	}
	return c.Screen.SubImage(image.Rect(clip.X, clip.Y, clip.Right(), clip.Bottom())).(*ebiten.Image)
}

// FillRect fills r (screen pixels, before transformation) with col.
func (c *Canvas) FillRect(r Rect, col Color) {
	dst := c.target()
	if dst == nil || r.Empty() {
		return
	}
	corners := c.gui.transforms.Top().Corners(r)
	c.verts = c.verts[:0]
	for _, p := range corners {
		c.verts = append(c.verts, ebiten.Vertex{
			DstX: float32(p[0]), DstY: float32(p[1]),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(clamp01(col.R)),
			ColorG: float32(clamp01(col.G)),
			ColorB: float32(clamp01(col.B)),
			ColorA: float32(clamp01(col.A)),
		})
	}
	dst.DrawTriangles(c.verts, quadIndices, whitePixel(), &ebiten.DrawTrianglesOptions{})
}

// StrokeRect outlines r with a border of the given width, drawn inward.
func (c *Canvas) StrokeRect(r Rect, width int, col Color) {
	if width <= 0 {
		return
	}
	width = min(width, r.Width/2+1, r.Height/2+1)
	c.FillRect(Rect{X: r.X, Y: r.Y, Width: r.Width, Height: width}, col)
	c.FillRect(Rect{X: r.X, Y: r.Bottom() - width, Width: r.Width, Height: width}, col)
	c.FillRect(Rect{X: r.X, Y: r.Y + width, Width: width, Height: r.Height - 2*width}, col)
	c.FillRect(Rect{X: r.Right() - width, Y: r.Y + width, Width: width, Height: r.Height - 2*width}, col)
}

// Clear fills the whole active clip region with col, ignoring transforms.
func (c *Canvas) Clear(col Color) {
	if dst := c.target(); dst != nil {
		dst.Fill(col.toRGBA())
	}
}
