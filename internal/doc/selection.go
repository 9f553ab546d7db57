package doc

// SelKind distinguishes the three selection shapes.
type SelKind int

const (
	SelCaret SelKind = iota
	SelRange
	SelNode
)

// Selection is expressed in the current snapshot's position space. Anchor
// is the fixed end, Head the moving end. For SelNode, Anchor is the open
// token of the selected node and Head the position after it.
type Selection struct {
	Kind   SelKind
	Anchor int
	Head   int
}

func Caret(pos int) Selection { return Selection{Kind: SelCaret, Anchor: pos, Head: pos} }

func Range(anchor, head int) Selection {
	if anchor == head {
		return Caret(anchor)
	}
	return Selection{Kind: SelRange, Anchor: anchor, Head: head}
}

// NodeSelection selects the whole node whose open token sits at pos.
func NodeSelection(d *Document, pos int) (Selection, bool) {
	n := d.NodeAt(pos)
	if n == nil {
		return Selection{}, false
	}
	return Selection{Kind: SelNode, Anchor: pos, Head: pos + n.Size()}, true
}

// From is the lower end of the selection.
func (s Selection) From() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// To is the upper end of the selection.
func (s Selection) To() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

func (s Selection) Empty() bool { return s.Anchor == s.Head }

// MapThrough remaps the selection across a step rewrite. A node selection
// whose node was removed degrades to a caret at the mapped anchor.
func (s Selection) MapThrough(m *StepMap, d *Document) Selection {
	switch s.Kind {
	case SelNode:
		if m.Deleted(s.Anchor + 1) {
			return Caret(m.Map(s.Anchor, -1))
		}
		anchor := m.Map(s.Anchor, -1)
		if sel, ok := NodeSelection(d, anchor); ok {
			return sel
		}
		return Caret(anchor)
	case SelRange:
		return Range(m.Map(s.Anchor, -1), m.Map(s.Head, 1))
	default:
		return Caret(m.Map(s.Anchor, -1))
	}
}

// Clamp keeps the selection inside the document's address range.
func (s Selection) Clamp(d *Document) Selection {
	max := d.ContentSize()
	clamp := func(p int) int {
		if p < 0 {
			return 0
		}
		if p > max {
			return max
		}
		return p
	}
	s.Anchor = clamp(s.Anchor)
	s.Head = clamp(s.Head)
	if s.Kind == SelRange && s.Anchor == s.Head {
		s.Kind = SelCaret
	}
	return s
}
