// Package render declares the contract the core expects from whatever
// paints the document. The core never draws; it asks for coordinates of
// tree positions, maps pointer points back to positions, and hands over
// decorations that are not part of the document tree.
package render

// Rect is a measured screen region.
type Rect struct {
	X, Y, W, H int
}

// Measurer resolves tree positions to screen coordinates. Measurement is
// only accurate after the visual representation caught up with the
// snapshot, so callers treat results as arriving asynchronously.
type Measurer interface {
	CoordsAt(pos int) (Rect, bool)
}

// Locator maps a screen point back to the tree position nearest to it.
type Locator interface {
	PosAt(x, y int) (int, bool)
}

// DecorationKind separates highlight ranges from inserted widgets.
type DecorationKind int

const (
	DecoHighlight DecorationKind = iota
	DecoWidget
)

// Decoration is a visual annotation over the document: a highlighted
// position range or a widget anchored at a single position. Decorations
// live outside the tree and disappear when the producer stops emitting
// them.
type Decoration struct {
	Kind DecorationKind
	From int
	To   int
	// Attr names the visual treatment: a syntax-highlight class for
	// ranges, a widget tag for widgets.
	Attr string
}

// Painter accepts the decoration set for the current snapshot.
type Painter interface {
	Paint(decos []Decoration)
}

// Renderer is the full collaborator surface.
type Renderer interface {
	Measurer
	Locator
	Painter
}
