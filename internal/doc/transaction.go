package doc

import "fmt"

// State is one immutable editor snapshot: the tree plus the selection
// expressed in its address space.
type State struct {
	Doc *Document
	Sel Selection
}

// Mapping is the ordered list of step maps a transaction produced. It
// translates positions from the pre-transaction to the post-transaction
// address space.
type Mapping struct {
	maps []*StepMap
}

func (mp *Mapping) Map(pos, bias int) int {
	for _, m := range mp.maps {
		pos = m.Map(pos, bias)
	}
	return pos
}

// Deleted reports whether pos fell inside any step's replaced range.
func (mp *Mapping) Deleted(pos int) bool {
	for _, m := range mp.maps {
		if m.Deleted(pos) {
			return true
		}
		pos = m.Map(pos, -1)
	}
	return false
}

// Transaction is an ordered batch of steps plus an optional new selection
// and a metadata map keyed by state-machine name. Step positions are
// declared against the pre-transaction document; Apply chains each step
// through the maps of the steps before it.
type Transaction struct {
	Steps []Step

	sel    *Selection // post-transaction address space
	meta   map[string]any
	mapped Mapping // valid after Apply
}

func NewTransaction() *Transaction { return &Transaction{} }

func (tr *Transaction) Replace(from, to int, nodes ...*Node) *Transaction {
	tr.Steps = append(tr.Steps, &ReplaceStep{From: from, To: to, Nodes: nodes})
	return tr
}

func (tr *Transaction) ReplaceText(from, to int, spans ...Span) *Transaction {
	tr.Steps = append(tr.Steps, &ReplaceTextStep{From: from, To: to, Spans: spans})
	return tr
}

func (tr *Transaction) InsertText(at int, text string, marks ...Mark) *Transaction {
	return tr.ReplaceText(at, at, Span{Text: text, Marks: marks})
}

func (tr *Transaction) DeleteRange(from, to int) *Transaction {
	return tr.Replace(from, to)
}

func (tr *Transaction) SetAttrs(pos int, attrs Attrs) *Transaction {
	tr.Steps = append(tr.Steps, &SetAttrsStep{Pos: pos, Attrs: attrs})
	return tr
}

// SetSelection records the selection the new state should carry, in the
// post-transaction address space.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	s := sel
	tr.sel = &s
	return tr
}

func (tr *Transaction) SelectionSet() bool { return tr.sel != nil }

// SetMeta attaches an out-of-band instruction addressed to one state
// machine. The machine applies it verbatim, bypassing its inference logic.
func (tr *Transaction) SetMeta(key string, val any) *Transaction {
	if tr.meta == nil {
		tr.meta = map[string]any{}
	}
	tr.meta[key] = val
	return tr
}

func (tr *Transaction) Meta(key string) any {
	if tr.meta == nil {
		return nil
	}
	return tr.meta[key]
}

// DocChanged reports whether the transaction carries any tree edit.
func (tr *Transaction) DocChanged() bool { return len(tr.Steps) > 0 }

// Mapping is valid once the transaction has been applied.
func (tr *Transaction) Mapping() *Mapping { return &tr.mapped }

// Apply runs every step against s and returns the new snapshot. The whole
// transaction applies or none of it does: a failed step, a step whose range
// was consumed by an earlier step, or a resulting tree that violates a
// content constraint all reject the transaction with the input state left
// untouched.
func (tr *Transaction) Apply(s *State) (*State, error) {
	d := s.Doc
	maps := make([]*StepMap, 0, len(tr.Steps))
	for i, st := range tr.Steps {
		mapped := st
		for _, m := range maps {
			var alive bool
			mapped, alive = mapped.Map(m)
			if !alive {
				return nil, fmt.Errorf("transaction step %d consumed by an earlier step", i)
			}
		}
		res := mapped.Apply(d)
		if res.Failed != "" {
			return nil, fmt.Errorf("transaction step %d: %s", i, res.Failed)
		}
		maps = append(maps, mapped.PosMap())
		d = res.Doc
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	tr.mapped = Mapping{maps: maps}

	var sel Selection
	if tr.sel != nil {
		sel = tr.sel.Clamp(d)
		if sel.Kind == SelNode {
			if ns, okSel := NodeSelection(d, sel.From()); okSel {
				sel = ns
			} else {
				sel = Caret(sel.From())
			}
		}
	} else {
		sel = remapSelection(s.Sel, maps, d)
	}
	return &State{Doc: d, Sel: sel}, nil
}

func remapSelection(sel Selection, maps []*StepMap, d *Document) Selection {
	switch sel.Kind {
	case SelNode:
		anchor := sel.Anchor
		deleted := false
		for _, m := range maps {
			if m.Deleted(anchor + 1) {
				deleted = true
			}
			anchor = m.Map(anchor, -1)
		}
		if !deleted {
			if ns, ok := NodeSelection(d, anchor); ok {
				return ns
			}
		}
		return Caret(anchor).Clamp(d)
	case SelRange:
		anchor, head := sel.Anchor, sel.Head
		for _, m := range maps {
			anchor = m.Map(anchor, -1)
			head = m.Map(head, 1)
		}
		return Range(anchor, head).Clamp(d)
	default:
		pos := sel.Anchor
		for _, m := range maps {
			pos = m.Map(pos, -1)
		}
		return Caret(pos).Clamp(d)
	}
}
