// Package layoutfile builds sprig widget trees from TOML layout descriptions.
//
// A layout file lists root widgets as [[widget]] tables; children nest as
// [[widget.children]]:
//
//	[[widget]]
//	name = "sidebar"
//	mode = "percent"
//	w = 0.25
//	h = 1.0
//	clip = true
//
//	  [[widget.children]]
//	  name = "close"
//	  x = 4
//	  y = 4
//	  w = 16
//	  h = 16
//	  align = "right-top"
//
// Every widget is a *sprig.Panel carrying the directives from its table.
package layoutfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/sprig"
)

// Document is a parsed layout file.
type Document struct {
	Widgets []Spec `toml:"widget"`
}

// Spec describes one widget and its subtree.
type Spec struct {
	Name string  `toml:"name"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	W    float64 `toml:"w"`
	H    float64 `toml:"h"`

	// Mode applies to position and size unless PosMode or SizeMode override it.
	Mode     string `toml:"mode"`
	PosMode  string `toml:"pos_mode"`
	SizeMode string `toml:"size_mode"`

	Align    string  `toml:"align"`
	OutsideX bool    `toml:"outside_x"`
	OutsideY bool    `toml:"outside_y"`
	Fit      string  `toml:"fit"`
	FitDeep  bool    `toml:"fit_deep"`
	NoScale  bool    `toml:"no_scale"`
	Fade     float64 `toml:"fade"`
	Priority int     `toml:"priority"`
	Clip     bool    `toml:"clip"`
	Hidden   bool    `toml:"hidden"`

	Children []Spec `toml:"children"`
}

// Parse decodes a layout file and checks every widget's enumerated values.
// Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse layout: %s", strict.String())
		}
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(doc.Widgets) == 0 {
		return nil, fmt.Errorf("parse layout: no widgets")
	}
	for i := range doc.Widgets {
		if err := doc.Widgets[i].validate(fmt.Sprintf("widget[%d]", i)); err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
	}
	return &doc, nil
}

// Load reads and parses a layout file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (s *Spec) validate(path string) error {
	if s.Name != "" {
		path = fmt.Sprintf("%s (%s)", path, s.Name)
	}
	for _, m := range []string{s.Mode, s.PosMode, s.SizeMode} {
		if _, err := parseMode(m, sprig.Fixed); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if _, err := parseAlign(s.Align); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := parseFit(s.Fit); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i := range s.Children {
		if err := s.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func parseMode(s string, def sprig.Mode) (sprig.Mode, error) {
	switch s {
	case "":
		return def, nil
	case "fixed":
		return sprig.Fixed, nil
	case "percent":
		return sprig.Percent, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func parseAlign(s string) (sprig.Alignment, error) {
	if s == "" {
		return sprig.AlignNone, nil
	}
	a, ok := sprig.ParseAlignment(s)
	if !ok {
		return 0, fmt.Errorf("unknown align %q", s)
	}
	return a, nil
}

func parseFit(s string) (sprig.FitAxes, error) {
	switch s {
	case "", "none":
		return sprig.FitNone, nil
	case "width":
		return sprig.FitWidth, nil
	case "height":
		return sprig.FitHeight, nil
	case "both":
		return sprig.FitBoth, nil
	}
	return 0, fmt.Errorf("unknown fit %q", s)
}

// Build creates one widget tree per root entry of doc.
func Build(doc *Document) ([]sprig.Widget, error) {
	roots := make([]sprig.Widget, 0, len(doc.Widgets))
	for i := range doc.Widgets {
		p, err := BuildSpec(&doc.Widgets[i])
		if err != nil {
			return nil, err
		}
		roots = append(roots, p)
	}
	return roots, nil
}

// BuildSpec creates the panel described by s, with its children.
func BuildSpec(s *Spec) (*sprig.Panel, error) {
	mode, err := parseMode(s.Mode, sprig.Fixed)
	if err != nil {
		return nil, err
	}
	posMode, err := parseMode(s.PosMode, mode)
	if err != nil {
		return nil, err
	}
	sizeMode, err := parseMode(s.SizeMode, mode)
	if err != nil {
		return nil, err
	}
	align, err := parseAlign(s.Align)
	if err != nil {
		return nil, err
	}
	fit, err := parseFit(s.Fit)
	if err != nil {
		return nil, err
	}

	p := sprig.NewPanel(s.Name)
	p.SetPositionMode(posMode, posMode)
	p.SetSizeMode(sizeMode, sizeMode)
	p.SetPosition(s.X, s.Y)
	p.SetSize(s.W, s.H)
	p.SetAlign(align)
	p.SetAlignOutside(s.OutsideX, s.OutsideY)
	p.SetAutoFit(fit, s.FitDeep)
	p.SetNoScale(s.NoScale)
	p.SetFade(s.Fade)
	p.SetPriority(s.Priority)
	p.SetClipChildren(s.Clip)
	p.SetVisible(!s.Hidden)

	for i := range s.Children {
		child, err := BuildSpec(&s.Children[i])
		if err != nil {
			return nil, err
		}
		p.AddChild(child)
	}
	return p, nil
}

// NamedFactory pairs a root widget's name with a factory that builds it.
type NamedFactory struct {
	Name    string
	Factory sprig.Factory
}

// Factories returns one factory per root entry of doc. Each call of a factory
// builds a fresh tree, so a Gui can repopulate from the same document.
func Factories(doc *Document) []NamedFactory {
	out := make([]NamedFactory, 0, len(doc.Widgets))
	for i := range doc.Widgets {
		spec := &doc.Widgets[i]
		out = append(out, NamedFactory{
			Name: spec.Name,
			Factory: func() (sprig.Widget, error) {
				return BuildSpec(spec)
			},
		})
	}
	return out
}

// Register adds the factories of doc to g.
func Register(g *sprig.Gui, doc *Document) {
	for _, f := range Factories(doc) {
		g.Register(f.Name, f.Factory)
	}
}

// Find returns the first widget named name in the subtree rooted at root,
// in depth-first pre-order, or nil.
func Find(root sprig.Widget, name string) sprig.Widget {
	n := root.Base()
	if n.Name() == name {
		return root
	}
	for _, child := range n.Children() {
		if w := Find(child, name); w != nil {
			return w
		}
	}
	return nil
}
