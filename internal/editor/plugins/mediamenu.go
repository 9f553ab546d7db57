package plugins

import (
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// MediaState is the toolbar attached to a selected image or embed. Pos is
// the node's open token. While a settings popover is open the menu keeps
// its last valid anchor even if the selection briefly changes underneath.
type MediaState struct {
	Visible     bool
	Pos         int
	Kind        doc.Kind
	PopoverOpen bool
	Coords      *render.Rect
}

// MediaInstruction opens and closes the settings popover.
type MediaInstruction struct {
	Action string // "popover-open", "popover-close"
}

type MediaMenu struct {
	st MediaState
}

func NewMediaMenu() *MediaMenu { return &MediaMenu{} }

func (m *MediaMenu) Name() string      { return "mediamenu" }
func (m *MediaMenu) State() MediaState { return m.st }

func isMedia(k doc.Kind) bool { return k == doc.KindImage || k == doc.KindEmbed }

func (m *MediaMenu) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	if ins, ok := tx.Meta(m.Name()).(MediaInstruction); ok {
		switch ins.Action {
		case "popover-open":
			if m.st.Visible {
				m.st.PopoverOpen = true
			}
		case "popover-close":
			m.st.PopoverOpen = false
			m.refresh(tx, new)
		}
		return nil
	}
	if m.st.PopoverOpen {
		// The anchor node follows document edits; only its removal closes
		// the popover and the menu with it.
		if tx.DocChanged() {
			mp := tx.Mapping()
			if mp.Deleted(m.st.Pos+1) || !m.anchorAlive(new, mp.Map(m.st.Pos, -1)) {
				m.st = MediaState{}
				return nil
			}
			np := mp.Map(m.st.Pos, -1)
			if np != m.st.Pos {
				m.st.Pos = np
				m.st.Coords = nil
			}
		}
		return nil
	}
	m.refresh(tx, new)
	return nil
}

func (m *MediaMenu) anchorAlive(s *doc.State, pos int) bool {
	n := s.Doc.NodeAt(pos)
	return n != nil && isMedia(n.Kind)
}

func (m *MediaMenu) refresh(tx *doc.Transaction, new *doc.State) {
	prev := m.st
	m.st = MediaState{}
	if new.Sel.Kind != doc.SelNode {
		return
	}
	pos := new.Sel.From()
	n := new.Doc.NodeAt(pos)
	if n == nil || !isMedia(n.Kind) {
		return
	}
	m.st = MediaState{Visible: true, Pos: pos, Kind: n.Kind}
	if prev.Visible && prev.Pos == pos && !tx.DocChanged() {
		m.st.Coords = prev.Coords
	}
}

func (m *MediaMenu) MeasureTarget() (int, bool) {
	if !m.st.Visible || m.st.Coords != nil {
		return 0, false
	}
	return m.st.Pos, true
}

func (m *MediaMenu) SetCoords(pos int, r render.Rect) {
	if !m.st.Visible || pos != m.st.Pos {
		return
	}
	rc := r
	m.st.Coords = &rc
}
