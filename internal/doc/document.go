package doc

import (
	"errors"
	"fmt"
)

var (
	ErrPosOutOfRange = errors.New("position out of range")
	ErrMalformed     = errors.New("malformed document")
)

// Document is the root of the tree. Unlike ordinary containers the root has
// no open/close tokens: position 0 sits before the first top-level node and
// ContentSize() after the last.
type Document struct {
	Children []*Node
}

func (d *Document) ContentSize() int {
	total := 0
	for _, c := range d.Children {
		total += c.Size()
	}
	return total
}

// PathEntry is one ancestor on a resolved position's path.
type PathEntry struct {
	Node  *Node
	Index int // index within the parent's child list
	Start int // absolute position of the node's content start
}

// ResolvedPos is the ancestor chain for a position plus the local offset
// inside the innermost node's content.
type ResolvedPos struct {
	Pos          int
	Path         []PathEntry // outermost first
	ParentOffset int
}

// Depth is the number of ancestors above the innermost content list.
func (rp *ResolvedPos) Depth() int { return len(rp.Path) }

// Inner returns the innermost ancestor node, or nil when the position sits
// between top-level nodes.
func (rp *ResolvedPos) Inner() *Node {
	if len(rp.Path) == 0 {
		return nil
	}
	return rp.Path[len(rp.Path)-1].Node
}

// Ancestor walks the path from innermost outward and returns the first
// entry whose node matches pred, with its path index. ok is false when no
// ancestor matches.
func (rp *ResolvedPos) Ancestor(pred func(*Node) bool) (PathEntry, int, bool) {
	for i := len(rp.Path) - 1; i >= 0; i-- {
		if pred(rp.Path[i].Node) {
			return rp.Path[i], i, true
		}
	}
	return PathEntry{}, 0, false
}

// Before is the absolute position immediately before the node at path
// index i (its open token).
func (rp *ResolvedPos) Before(i int) int { return rp.Path[i].Start - 1 }

// After is the absolute position immediately after the node at path index i.
func (rp *ResolvedPos) After(i int) int {
	return rp.Path[i].Start - 1 + rp.Path[i].Node.Size()
}

// Resolve computes the ancestor chain for pos. Positions at node boundaries
// belong to the enclosing content list, matching the half-open range each
// node occupies.
func (d *Document) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > d.ContentSize() {
		return nil, fmt.Errorf("%w: %d (size %d)", ErrPosOutOfRange, pos, d.ContentSize())
	}
	rp := &ResolvedPos{Pos: pos}
	children := d.Children
	base := 0
	for {
		cur := base
		descended := false
		for i, c := range children {
			if pos <= cur {
				break
			}
			sz := c.Size()
			if pos < cur+sz {
				rp.Path = append(rp.Path, PathEntry{Node: c, Index: i, Start: cur + 1})
				if c.Kind.IsContainer() {
					children = c.Children
					base = cur + 1
					descended = true
				} else {
					rp.ParentOffset = pos - (cur + 1)
					return rp, nil
				}
				break
			}
			cur += sz
		}
		if !descended {
			rp.ParentOffset = pos - base
			return rp, nil
		}
	}
}

// NodeAt returns the node whose open token sits exactly at pos, or nil.
func (d *Document) NodeAt(pos int) *Node {
	rp, err := d.Resolve(pos)
	if err != nil {
		return nil
	}
	var children []*Node
	var base int
	if n := rp.Inner(); n != nil {
		if !n.Kind.IsContainer() {
			return nil
		}
		children = n.Children
		base = rp.Path[len(rp.Path)-1].Start
	} else {
		children = d.Children
		base = 0
	}
	cur := base
	for _, c := range children {
		if cur == pos {
			return c
		}
		if cur > pos {
			break
		}
		cur += c.Size()
	}
	return nil
}

// childStart returns the absolute position of the open token of child i,
// given the content start of the parent.
func childStart(contentStart int, children []*Node, i int) int {
	pos := contentStart
	for j := 0; j < i; j++ {
		pos += children[j].Size()
	}
	return pos
}

// Validate checks every node's content constraints and block id uniqueness.
// A document that fails validation must never become an applied snapshot.
func (d *Document) Validate() error {
	seen := map[string]bool{}
	for _, c := range d.Children {
		if !c.Kind.topLevel() {
			return fmt.Errorf("%w: %s at top level", ErrMalformed, c.Kind)
		}
		if err := validateNode(c, seen); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, seen map[string]bool) error {
	if id := n.ID(); id != "" && n.Kind.BlockEligible() {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrMalformed, id)
		}
		seen[id] = true
	}
	switch kindTable[n.Kind].class {
	case classAtomic:
		if len(n.Children) > 0 || len(n.Spans) > 0 {
			return fmt.Errorf("%w: %s holds content", ErrMalformed, n.Kind)
		}
		return nil
	case classText:
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s holds child nodes", ErrMalformed, n.Kind)
		}
		if n.Kind == KindCodeBlock {
			for _, sp := range n.Spans {
				if len(sp.Marks) > 0 {
					return fmt.Errorf("%w: marks inside codeBlock", ErrMalformed)
				}
			}
		}
		return nil
	}
	if len(n.Spans) > 0 {
		return fmt.Errorf("%w: %s holds inline content", ErrMalformed, n.Kind)
	}
	switch n.Kind {
	case KindTable:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: empty table", ErrMalformed)
		}
	case KindTableRow:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: empty table row", ErrMalformed)
		}
	case KindBulletList, KindOrderedList, KindCheckList:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: empty list", ErrMalformed)
		}
	case KindColumnList:
		if len(n.Children) < 2 {
			return fmt.Errorf("%w: columnList needs at least two columns", ErrMalformed)
		}
	case KindListItem, KindCheckItem:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: empty list item", ErrMalformed)
		}
	case KindTableCell, KindTableHeader:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: empty table cell", ErrMalformed)
		}
	}
	for _, c := range n.Children {
		if !n.Kind.allowsChild(c.Kind) {
			return fmt.Errorf("%w: %s inside %s", ErrMalformed, c.Kind, n.Kind)
		}
		if err := validateNode(c, seen); err != nil {
			return err
		}
	}
	return nil
}

// walk visits every node depth-first with its absolute open-token position.
// Returning false from fn stops the walk.
func (d *Document) walk(fn func(n *Node, pos int) bool) {
	walkNodes(d.Children, 0, fn)
}

func walkNodes(children []*Node, contentStart int, fn func(*Node, int) bool) bool {
	pos := contentStart
	for _, c := range children {
		if !fn(c, pos) {
			return false
		}
		if c.Kind.IsContainer() {
			if !walkNodes(c.Children, pos+1, fn) {
				return false
			}
		}
		pos += c.Size()
	}
	return true
}

// Walk is the exported walk used by observers (identity scan, highlighting).
func (d *Document) Walk(fn func(n *Node, pos int) bool) { d.walk(fn) }
