package commands

import (
	"github.com/kobzarvs/bedit/internal/doc"
)

// textSegment is the part of one text block covered by a position range.
type textSegment struct {
	node         *doc.Node
	contentStart int
	from, to     int // absolute positions, clipped to the block
}

// textSegments collects the text-block slices intersecting [from,to).
func textSegments(d *doc.Document, from, to int) []textSegment {
	var segs []textSegment
	d.Walk(func(n *doc.Node, pos int) bool {
		if !n.Kind.IsText() {
			return true
		}
		cs := pos + 1
		ce := cs + n.TextLen()
		if ce <= from || cs >= to {
			return true
		}
		lo, hi := cs, ce
		if from > lo {
			lo = from
		}
		if to < hi {
			hi = to
		}
		segs = append(segs, textSegment{node: n, contentStart: cs, from: lo, to: hi})
		return true
	})
	return segs
}

// rangeHasMark reports whether every rune in the segments carries a mark
// of type t. Empty segments count as covered.
func rangeHasMark(segs []textSegment, t doc.MarkType) bool {
	for _, seg := range segs {
		pos := seg.contentStart
		for _, sp := range seg.node.Spans {
			l := len([]rune(sp.Text))
			spFrom, spTo := pos, pos+l
			pos = spTo
			if spTo <= seg.from || spFrom >= seg.to {
				continue
			}
			if !doc.HasMark(sp.Marks, t) {
				return false
			}
		}
	}
	return true
}

// ToggleMark toggles a mark across the selected text range. When every
// character in the range already carries the mark it is removed, otherwise
// it is added everywhere. Code blocks never participate.
func ToggleMark(t doc.MarkType, attrs map[string]string) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		if s.Sel.Empty() || s.Sel.Kind == doc.SelNode {
			return false
		}
		segs := textSegments(s.Doc, s.Sel.From(), s.Sel.To())
		kept := segs[:0]
		for _, seg := range segs {
			if seg.node.Kind != doc.KindCodeBlock && seg.to > seg.from {
				kept = append(kept, seg)
			}
		}
		if len(kept) == 0 {
			return false
		}
		removing := rangeHasMark(kept, t)
		tr := doc.NewTransaction()
		for _, seg := range kept {
			relFrom := seg.from - seg.contentStart
			relTo := seg.to - seg.contentStart
			// sliceSpans-equivalent: rebuild the covered runs with the mark
			// toggled, leaving the rest of the block untouched.
			var marked []doc.Span
			pos := 0
			for _, sp := range seg.node.Spans {
				r := []rune(sp.Text)
				spFrom, spTo := pos, pos+len(r)
				pos = spTo
				if spTo <= relFrom || spFrom >= relTo {
					continue
				}
				lo, hi := 0, len(r)
				if relFrom > spFrom {
					lo = relFrom - spFrom
				}
				if relTo < spTo {
					hi = relTo - spFrom
				}
				marks := sp.Marks
				if removing {
					marks = doc.RemoveMark(marks, t)
				} else {
					marks = doc.AddMark(marks, doc.Mark{Type: t, Attrs: attrs})
				}
				marked = append(marked, doc.Span{Text: string(r[lo:hi]), Marks: marks})
			}
			tr.ReplaceText(seg.from, seg.to, marked...)
		}
		// Keep the range selected after restyling.
		tr.SetSelection(s.Sel)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// ActiveMarks returns the mark types covering the entire selected range,
// used for the formatting menu's active-state snapshot.
func ActiveMarks(s *doc.State) map[doc.MarkType]bool {
	active := map[doc.MarkType]bool{}
	if s.Sel.Empty() {
		return active
	}
	segs := textSegments(s.Doc, s.Sel.From(), s.Sel.To())
	if len(segs) == 0 {
		return active
	}
	for _, t := range []doc.MarkType{
		doc.MarkBold, doc.MarkItalic, doc.MarkUnderline, doc.MarkStrike,
		doc.MarkCode, doc.MarkLink, doc.MarkTextColor, doc.MarkBackgroundColor,
	} {
		if rangeHasMark(segs, t) {
			active[t] = true
		}
	}
	return active
}

// InsertBlock places a new block at the selection: an empty paragraph is
// replaced outright, any other block gets the new one as its next sibling.
func InsertBlock(n *doc.Node) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		entry, ok := currentBlock(s)
		if !ok {
			return false
		}
		from := entry.Start - 1
		tr := doc.NewTransaction()
		if entry.Node.Kind == doc.KindParagraph && entry.Node.TextLen() == 0 {
			if id := entry.Node.ID(); id != "" && n.ID() == "" {
				n = n.WithAttrs(doc.Attrs{"id": id})
			}
			tr.Replace(from, from+entry.Node.Size(), n)
			tr.SetSelection(doc.Caret(caretInto(n, from)))
		} else {
			at := from + entry.Node.Size()
			tr.Replace(at, at, n)
			tr.SetSelection(doc.Caret(caretInto(n, at)))
		}
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// MoveBlock moves the top-level block whose open token sits at from so its
// open token lands at the boundary to. Both positions are declared against
// the current document; the transaction's position chaining corrects the
// insertion offset when the block moves downward past its own span.
func MoveBlock(from, to int) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		n := s.Doc.NodeAt(from)
		if n == nil {
			return false
		}
		end := from + n.Size()
		if to >= from && to <= end {
			return false
		}
		moved := n.Clone()
		tr := doc.NewTransaction().
			DeleteRange(from, end).
			Replace(to, to, moved)
		newStart := to
		if to > end {
			newStart = to - n.Size()
		}
		tr.SetSelection(doc.Caret(caretInto(moved, newStart)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}
