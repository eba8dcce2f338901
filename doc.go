// Package sprig is a retained-mode GUI core for [Ebitengine].
//
// A Gui owns a forest of widgets. Every widget embeds [Node], which carries
// its place in the tree, its layout directives and the bounds resolved from
// them each frame. The Gui flattens the visible widgets into one
// back-to-front order by priority, renders them in that order, and delivers
// input through a typed [EventBus] front to back.
//
// # Quick start
//
//	g := sprig.New(sprig.DefaultConfig())
//	g.Register("toolbar", func() (sprig.Widget, error) {
//		bar := sprig.NewPanel("toolbar")
//		bar.SetPercent(0, 0, 1, 0.1)
//		return bar, nil
//	})
//	sprig.Run(g, sprig.RunConfig{Config: g.Config()})
//
// For full control, drive the Gui from your own [ebiten.Game]: call the
// dispatch methods ([Gui.PointerDown], [Gui.KeyDown], ...) from Update and
// [Gui.Frame] from Draw, or wrap the Gui in a [Host].
//
// # Layout
//
// Positions and sizes are either Fixed (pixels) or Percent (fractions of the
// parent). Fixed sizes are multiplied by the UI scale unless a widget or one
// of its ancestors calls [Node.SetNoScale]; fixed positions never are.
// [Node.SetAlign] anchors a widget to one of nine points of its parent, and
// [Node.SetAutoFit] derives a size from the children.
//
// # Structural changes
//
// Adding, removing, hiding or reprioritising widgets is always safe, even
// from inside an event handler. The Gui only records that its order is stale
// and rebuilds it at the next event or frame.
//
// # Clipping and transforms
//
// A widget with [Node.SetClipChildren] scissors itself and its descendants to
// its bounds. A widget with a [Matrix] from [Node.SetTransform] draws itself
// and its descendants through that matrix, and [Gui.HitTest] applies the same
// clips and transforms, so a widget is clickable exactly where it is drawn.
//
// [Ebitengine]: https://ebitengine.org
package sprig
