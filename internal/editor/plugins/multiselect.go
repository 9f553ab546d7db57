package plugins

import (
	"sort"

	"github.com/kobzarvs/bedit/internal/doc"
)

// MultiState is the set of selected top-level blocks, stored as their
// open-token positions in ascending order.
type MultiState struct {
	Blocks []int
}

func (s MultiState) Contains(pos int) bool {
	for _, p := range s.Blocks {
		if p == pos {
			return true
		}
	}
	return false
}

// MultiInstruction drives block-level selection from pointer gestures.
type MultiInstruction struct {
	Action string // "select", "range", "toggle", "clear"
	Pos    int
}

type MultiSelect struct {
	st     MultiState
	anchor int
}

func NewMultiSelect() *MultiSelect { return &MultiSelect{anchor: -1} }

func (m *MultiSelect) Name() string      { return "multiselect" }
func (m *MultiSelect) State() MultiState { return m.st }

func (m *MultiSelect) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	if ins, ok := tx.Meta(m.Name()).(MultiInstruction); ok {
		m.instruct(ins, new)
		return nil
	}
	if len(m.st.Blocks) == 0 || !tx.DocChanged() {
		return nil
	}
	// Remap every selected block; blocks swallowed by the edit drop out.
	mp := tx.Mapping()
	var kept []int
	for _, p := range m.st.Blocks {
		if mp.Deleted(p + 1) {
			continue
		}
		np := mp.Map(p, -1)
		if _, ok := topBlockAt(new.Doc, np); ok {
			kept = append(kept, np)
		}
	}
	m.st.Blocks = dedupSorted(kept)
	if m.anchor >= 0 {
		m.anchor = mp.Map(m.anchor, -1)
	}
	return nil
}

func (m *MultiSelect) instruct(ins MultiInstruction, s *doc.State) {
	switch ins.Action {
	case "clear":
		m.st = MultiState{}
		m.anchor = -1
	case "select":
		if _, ok := topBlockAt(s.Doc, ins.Pos); !ok {
			return
		}
		m.st = MultiState{Blocks: []int{ins.Pos}}
		m.anchor = ins.Pos
	case "toggle":
		if _, ok := topBlockAt(s.Doc, ins.Pos); !ok {
			return
		}
		if m.st.Contains(ins.Pos) {
			var kept []int
			for _, p := range m.st.Blocks {
				if p != ins.Pos {
					kept = append(kept, p)
				}
			}
			m.st.Blocks = kept
		} else {
			m.st.Blocks = dedupSorted(append(m.st.Blocks, ins.Pos))
			m.anchor = ins.Pos
		}
	case "range":
		if m.anchor < 0 {
			m.instruct(MultiInstruction{Action: "select", Pos: ins.Pos}, s)
			return
		}
		lo, hi := m.anchor, ins.Pos
		if lo > hi {
			lo, hi = hi, lo
		}
		var sel []int
		pos := 0
		for _, c := range s.Doc.Children {
			if pos >= lo && pos <= hi {
				sel = append(sel, pos)
			}
			pos += c.Size()
		}
		m.st.Blocks = sel
	}
}

func dedupSorted(ps []int) []int {
	sort.Ints(ps)
	out := ps[:0]
	for i, p := range ps {
		if i == 0 || p != ps[i-1] {
			out = append(out, p)
		}
	}
	return out
}
