package doc

import "fmt"

// StepMap translates positions across one step's rewrite. A single replaced
// range is enough for every step in this package.
type StepMap struct {
	Start   int
	OldSize int
	NewSize int
}

func identityMap() *StepMap { return &StepMap{} }

// Map translates pos from the pre-step to the post-step address space.
// bias decides which side of a replaced range a position inside it lands
// on: negative keeps it at the range start, non-negative pushes it past the
// inserted content.
func (m *StepMap) Map(pos, bias int) int {
	if m.OldSize == 0 && m.NewSize == 0 {
		return pos
	}
	if pos < m.Start {
		return pos
	}
	if pos <= m.Start+m.OldSize {
		if bias < 0 {
			return m.Start
		}
		return m.Start + m.NewSize
	}
	return pos + m.NewSize - m.OldSize
}

// Deleted reports whether pos sat strictly inside the replaced range.
func (m *StepMap) Deleted(pos int) bool {
	return pos > m.Start && pos < m.Start+m.OldSize
}

// StepResult either carries the transformed document or a failure message.
type StepResult struct {
	Doc    *Document
	Failed string
}

func ok(d *Document) StepResult    { return StepResult{Doc: d} }
func fail(msg string) StepResult   { return StepResult{Failed: msg} }
func failf(f string, a ...any) StepResult { return StepResult{Failed: fmt.Sprintf(f, a...)} }

// Step is one atomic tree edit. Positions stored in a step are valid only
// for the document it was computed against; Map adjusts them across an
// earlier step's rewrite.
type Step interface {
	Apply(d *Document) StepResult
	PosMap() *StepMap
	Map(m *StepMap) (Step, bool)
	Invert(before *Document) Step
}

// ReplaceStep replaces the node range [From,To) with Nodes. Both ends must
// sit on node boundaries of the same content list; the step rejects any
// range that would cut through a node.
type ReplaceStep struct {
	From, To int
	Nodes    []*Node
}

func (s *ReplaceStep) newSize() int {
	total := 0
	for _, n := range s.Nodes {
		total += n.Size()
	}
	return total
}

func (s *ReplaceStep) Apply(d *Document) StepResult {
	if s.From > s.To {
		return failf("replace: inverted range %d..%d", s.From, s.To)
	}
	children, err := spliceNodeRange(d.Children, 0, s.From, s.To, s.Nodes)
	if err != nil {
		return fail(err.Error())
	}
	return ok(&Document{Children: children})
}

func (s *ReplaceStep) PosMap() *StepMap {
	return &StepMap{Start: s.From, OldSize: s.To - s.From, NewSize: s.newSize()}
}

func (s *ReplaceStep) Map(m *StepMap) (Step, bool) {
	from := m.Map(s.From, 1)
	to := m.Map(s.To, -1)
	if from > to {
		return nil, false
	}
	return &ReplaceStep{From: from, To: to, Nodes: s.Nodes}, true
}

func (s *ReplaceStep) Invert(before *Document) Step {
	old := nodesInRange(before.Children, 0, s.From, s.To)
	return &ReplaceStep{From: s.From, To: s.From + s.newSize(), Nodes: old}
}

// spliceNodeRange rewrites one content list, descending when the whole
// range lies strictly inside a single child.
func spliceNodeRange(children []*Node, contentStart, from, to int, insert []*Node) ([]*Node, error) {
	pos := contentStart
	startIdx, endIdx := -1, -1
	for i, c := range children {
		sz := c.Size()
		if from > pos && from < pos+sz {
			// Range begins inside this child: the whole range must stay
			// inside it and the child must be a container.
			if to > pos+sz {
				return nil, fmt.Errorf("replace: range %d..%d cuts node boundary", from, to)
			}
			if !c.Kind.IsContainer() {
				return nil, fmt.Errorf("replace: range inside %s content", c.Kind)
			}
			inner, err := spliceNodeRange(c.Children, pos+1, from, to, insert)
			if err != nil {
				return nil, err
			}
			rc := &Node{Kind: c.Kind, Attrs: c.Attrs, Children: inner}
			out := make([]*Node, 0, len(children))
			out = append(out, children[:i]...)
			out = append(out, rc)
			out = append(out, children[i+1:]...)
			return out, nil
		}
		if from == pos && startIdx < 0 {
			startIdx = i
		}
		if to == pos && endIdx < 0 {
			endIdx = i
		}
		pos += sz
	}
	if from == pos && startIdx < 0 {
		startIdx = len(children)
	}
	if to == pos && endIdx < 0 {
		endIdx = len(children)
	}
	if startIdx < 0 || endIdx < 0 || endIdx < startIdx {
		return nil, fmt.Errorf("replace: range %d..%d not on node boundaries", from, to)
	}
	out := make([]*Node, 0, len(children)-(endIdx-startIdx)+len(insert))
	out = append(out, children[:startIdx]...)
	out = append(out, insert...)
	out = append(out, children[endIdx:]...)
	return out, nil
}

// nodesInRange collects the nodes whose ranges lie within [from,to) on one
// content list. Used to invert a ReplaceStep.
func nodesInRange(children []*Node, contentStart, from, to int) []*Node {
	pos := contentStart
	for _, c := range children {
		sz := c.Size()
		if from > pos && from < pos+sz && c.Kind.IsContainer() {
			return nodesInRange(c.Children, pos+1, from, to)
		}
		pos += sz
	}
	var out []*Node
	pos = contentStart
	for _, c := range children {
		sz := c.Size()
		if pos >= from && pos+sz <= to {
			out = append(out, c)
		}
		pos += sz
	}
	return out
}

// ReplaceTextStep replaces the inline rune range [From,To) inside a single
// text block with Spans. From==To inserts; empty Spans deletes.
type ReplaceTextStep struct {
	From, To int
	Spans    []Span
}

func (s *ReplaceTextStep) insLen() int { return totalLen(s.Spans) }

func (s *ReplaceTextStep) Apply(d *Document) StepResult {
	rp, err := d.Resolve(s.From)
	if err != nil {
		return fail(err.Error())
	}
	inner := rp.Inner()
	if inner == nil || !inner.Kind.IsText() {
		return failf("replaceText: %d not inside a text block", s.From)
	}
	entry := rp.Path[len(rp.Path)-1]
	end := entry.Start + inner.TextLen()
	if s.To < s.From || s.To > end {
		return failf("replaceText: range %d..%d leaves text block", s.From, s.To)
	}
	if inner.Kind == KindCodeBlock {
		for _, sp := range s.Spans {
			if len(sp.Marks) > 0 {
				return fail("replaceText: marks inside codeBlock")
			}
		}
	}
	spans := spliceSpans(inner.Spans, s.From-entry.Start, s.To-entry.Start, s.Spans)
	repl := &Node{Kind: inner.Kind, Attrs: inner.Attrs, Spans: spans}
	children, err := replaceNodeAt(d.Children, 0, entry.Start-1, repl)
	if err != nil {
		return fail(err.Error())
	}
	return ok(&Document{Children: children})
}

func (s *ReplaceTextStep) PosMap() *StepMap {
	return &StepMap{Start: s.From, OldSize: s.To - s.From, NewSize: s.insLen()}
}

func (s *ReplaceTextStep) Map(m *StepMap) (Step, bool) {
	from := m.Map(s.From, 1)
	to := m.Map(s.To, -1)
	if from > to {
		return nil, false
	}
	return &ReplaceTextStep{From: from, To: to, Spans: s.Spans}, true
}

func (s *ReplaceTextStep) Invert(before *Document) Step {
	rp, err := before.Resolve(s.From)
	if err != nil || rp.Inner() == nil {
		return &ReplaceTextStep{From: s.From, To: s.From + s.insLen()}
	}
	entry := rp.Path[len(rp.Path)-1]
	old := sliceSpans(rp.Inner().Spans, s.From-entry.Start, s.To-entry.Start)
	return &ReplaceTextStep{From: s.From, To: s.From + s.insLen(), Spans: old}
}

// SetAttrsStep merges Attrs into the node whose open token sits at Pos.
// With Replace set the node's attrs are overwritten wholesale (used when
// inverting).
type SetAttrsStep struct {
	Pos     int
	Attrs   Attrs
	Replace bool
}

func (s *SetAttrsStep) Apply(d *Document) StepResult {
	target := d.NodeAt(s.Pos)
	if target == nil {
		return failf("setAttrs: no node at %d", s.Pos)
	}
	var repl *Node
	if s.Replace {
		repl = target.Clone()
		repl.Attrs = s.Attrs.Clone()
	} else {
		repl = target.WithAttrs(s.Attrs)
	}
	children, err := replaceNodeAt(d.Children, 0, s.Pos, repl)
	if err != nil {
		return fail(err.Error())
	}
	return ok(&Document{Children: children})
}

func (s *SetAttrsStep) PosMap() *StepMap { return identityMap() }

func (s *SetAttrsStep) Map(m *StepMap) (Step, bool) {
	if m.Deleted(s.Pos + 1) {
		return nil, false
	}
	return &SetAttrsStep{Pos: m.Map(s.Pos, -1), Attrs: s.Attrs, Replace: s.Replace}, true
}

func (s *SetAttrsStep) Invert(before *Document) Step {
	target := before.NodeAt(s.Pos)
	if target == nil {
		return &SetAttrsStep{Pos: s.Pos, Attrs: Attrs{}}
	}
	return &SetAttrsStep{Pos: s.Pos, Attrs: target.Attrs.Clone(), Replace: true}
}

// replaceNodeAt swaps the node whose open token sits at pos for repl,
// rebuilding the spine above it.
func replaceNodeAt(children []*Node, contentStart, pos int, repl *Node) ([]*Node, error) {
	cur := contentStart
	for i, c := range children {
		sz := c.Size()
		if cur == pos {
			out := make([]*Node, 0, len(children))
			out = append(out, children[:i]...)
			out = append(out, repl)
			out = append(out, children[i+1:]...)
			return out, nil
		}
		if pos > cur && pos < cur+sz {
			if !c.Kind.IsContainer() {
				return nil, fmt.Errorf("no node boundary at %d", pos)
			}
			inner, err := replaceNodeAt(c.Children, cur+1, pos, repl)
			if err != nil {
				return nil, err
			}
			rc := &Node{Kind: c.Kind, Attrs: c.Attrs, Children: inner}
			out := make([]*Node, 0, len(children))
			out = append(out, children[:i]...)
			out = append(out, rc)
			out = append(out, children[i+1:]...)
			return out, nil
		}
		cur += sz
	}
	return nil, fmt.Errorf("no node at %d", pos)
}
