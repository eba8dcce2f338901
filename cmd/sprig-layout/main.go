// Command sprig-layout resolves a TOML layout file for a given screen size and
// UI scale and prints the resulting widget tree with the bounds of every
// widget.
//
//	sprig-layout -width 1280 -height 720 -scale 2 layout.toml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/phanxgames/sprig"
	"github.com/phanxgames/sprig/layoutfile"
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true)
	boundsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hiddenStyle = lipgloss.NewStyle().Faint(true)
	enumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file (width, height and scale are used)")
		width      = flag.Int("width", 0, "screen width, overrides the config")
		height     = flag.Int("height", 0, "screen height, overrides the config")
		scale      = flag.Int("scale", 0, "UI scale, overrides the config")
		verbose    = flag.Bool("v", false, "log lifecycle events to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sprig-layout [flags] layout.toml\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	sprig.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := sprig.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = sprig.LoadConfig(*configPath); err != nil {
			fatal(err)
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *scale > 0 {
		cfg.Scale = *scale
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	doc, err := layoutfile.Load(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	g := sprig.New(cfg)
	layoutfile.Register(g, doc)
	if err := g.Open(); err != nil {
		fatal(err)
	}
	defer g.Close()
	g.Layout()

	fmt.Println(render(g))
}

// render builds a lipgloss tree of every root, including hidden ones.
func render(g *sprig.Gui) string {
	w, h := g.ScreenSize()
	t := tree.Root(nameStyle.Render(fmt.Sprintf("screen %dx%d @%dx", w, h, g.UIScale()))).
		EnumeratorStyle(enumStyle)
	for _, r := range g.Roots() {
		t.Child(subtree(r))
	}
	return t.String()
}

func subtree(w sprig.Widget) any {
	label := describe(w.Base())
	children := w.Base().Children()
	if len(children) == 0 {
		return label
	}
	t := tree.Root(label).EnumeratorStyle(enumStyle)
	for _, c := range children {
		t.Child(subtree(c))
	}
	return t
}

func describe(n *sprig.Node) string {
	name := n.Name()
	if name == "" {
		name = "(unnamed)"
	}
	b := n.Bounds()
	label := nameStyle.Render(name) + " " +
		boundsStyle.Render(fmt.Sprintf("[%d,%d %dx%d]", b.X, b.Y, b.Width, b.Height))

	var flags []string
	if a := n.Align(); a != sprig.AlignNone {
		flags = append(flags, a.String())
	}
	if n.Priority() != 0 {
		flags = append(flags, fmt.Sprintf("priority=%d", n.Priority()))
	}
	if n.ClipChildren() {
		flags = append(flags, "clip")
	}
	if n.Fade() != 0 {
		flags = append(flags, fmt.Sprintf("fade=%g", n.Fade()))
	}
	if len(flags) > 0 {
		label += " " + flagStyle.Render(strings.Join(flags, " "))
	}
	if !n.Visible() {
		label = hiddenStyle.Render(label + " hidden")
	}
	return label
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "sprig-layout:", err)
	os.Exit(1)
}
