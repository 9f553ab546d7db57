package plugins

import (
	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// BubbleState is the formatting popup over a text selection. Marks and
// block info are a snapshot of the selected range; Coords stays nil until
// measured and survives while the selection does not move.
type BubbleState struct {
	Visible   bool
	From, To  int
	Marks     map[doc.MarkType]bool
	BlockKind doc.Kind
	Align     string
	Coords    *render.Rect
}

// BubbleInstruction dismisses the menu until the selection changes again.
type BubbleInstruction struct {
	Action string // "close"
}

type BubbleMenu struct {
	st         BubbleState
	suppressed bool
}

func NewBubbleMenu() *BubbleMenu { return &BubbleMenu{} }

func (m *BubbleMenu) Name() string       { return "bubblemenu" }
func (m *BubbleMenu) State() BubbleState { return m.st }

func (m *BubbleMenu) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	if ins, ok := tx.Meta(m.Name()).(BubbleInstruction); ok && ins.Action == "close" {
		m.suppressed = true
		m.st = BubbleState{}
		return nil
	}
	if new.Sel != old.Sel {
		m.suppressed = false
	}
	if m.suppressed {
		return nil
	}
	prev := m.st
	m.st = m.derive(new)
	// Coordinates stay valid as long as the anchor range did not move.
	if m.st.Visible && prev.Visible && !tx.DocChanged() &&
		prev.From == m.st.From && prev.To == m.st.To {
		m.st.Coords = prev.Coords
	}
	return nil
}

// derive recomputes visibility and the formatting snapshot from scratch.
// Visibility requires a range selection covering at least one character of
// styleable text.
func (m *BubbleMenu) derive(s *doc.State) BubbleState {
	if s.Sel.Kind != doc.SelRange || s.Sel.Empty() {
		return BubbleState{}
	}
	st := BubbleState{
		Visible: true,
		From:    s.Sel.From(),
		To:      s.Sel.To(),
		Marks:   commands.ActiveMarks(s),
		Align:   "left",
	}
	if rp, err := s.Doc.Resolve(st.From); err == nil {
		if entry, _, ok := rp.Ancestor(func(n *doc.Node) bool { return n.Kind.IsText() }); ok {
			st.BlockKind = entry.Node.Kind
			if a := entry.Node.Attrs.String("align"); a != "" {
				st.Align = a
			}
		} else {
			return BubbleState{}
		}
	}
	return st
}

func (m *BubbleMenu) MeasureTarget() (int, bool) {
	if !m.st.Visible || m.st.Coords != nil {
		return 0, false
	}
	return m.st.From, true
}

func (m *BubbleMenu) SetCoords(pos int, r render.Rect) {
	if !m.st.Visible || pos != m.st.From {
		return
	}
	rc := r
	m.st.Coords = &rc
}
