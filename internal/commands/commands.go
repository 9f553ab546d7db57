// Package commands implements the structural command library. Every command
// follows the same convention: it reads the current state, returns false
// when it does not apply there (no dispatch, no error), and otherwise
// builds a transaction and hands it to dispatch when one is given. Calling
// a command with a nil dispatch is the applicability probe the UI layer
// uses for control enablement.
package commands

import (
	"github.com/kobzarvs/bedit/internal/doc"
)

// Command is the uniform command shape.
type Command func(s *doc.State, dispatch func(*doc.Transaction)) bool

// tableCtx is the shared context for every table operation: the nearest
// enclosing cell/row/table triple above the selection, with the sibling
// counts that locate the cell in its grid.
type tableCtx struct {
	table doc.PathEntry
	row   doc.PathEntry
	cell  doc.PathEntry

	rowIndex  int
	cellIndex int
}

// findTableCtx walks the selection's ancestor chain for the innermost
// cell → row → table triple. ok is false outside a table.
func findTableCtx(s *doc.State) (tableCtx, bool) {
	rp, err := s.Doc.Resolve(s.Sel.From())
	if err != nil {
		return tableCtx{}, false
	}
	for i := len(rp.Path) - 1; i >= 2; i-- {
		if !rp.Path[i].Node.Kind.IsCell() {
			continue
		}
		if rp.Path[i-1].Node.Kind != doc.KindTableRow || rp.Path[i-2].Node.Kind != doc.KindTable {
			continue
		}
		return tableCtx{
			table:     rp.Path[i-2],
			row:       rp.Path[i-1],
			cell:      rp.Path[i],
			rowIndex:  rp.Path[i-1].Index,
			cellIndex: rp.Path[i].Index,
		}, true
	}
	return tableCtx{}, false
}

// tableStart is the absolute position of the table's open token.
func (c tableCtx) tableStart() int { return c.table.Start - 1 }

// emptyCell builds a cell of the given kind holding one empty paragraph.
func emptyCell(kind doc.Kind) *doc.Node {
	return doc.NewContainer(kind, doc.Attrs{},
		&doc.Node{Kind: doc.KindParagraph, Attrs: doc.Attrs{}})
}

// emptyRowLike builds a row mirroring the cell kinds of src.
func emptyRowLike(src *doc.Node) *doc.Node {
	cells := make([]*doc.Node, len(src.Children))
	for i, c := range src.Children {
		cells[i] = emptyCell(c.Kind)
	}
	return doc.NewContainer(doc.KindTableRow, doc.Attrs{}, cells...)
}

// caretInto returns the caret position for the start of the first text
// content inside the node whose open token sits at pos.
func caretInto(n *doc.Node, pos int) int {
	cur := n
	p := pos
	for cur.Kind.IsContainer() && len(cur.Children) > 0 {
		cur = cur.Children[0]
		p++
	}
	if cur.Kind.IsText() {
		return p + 1
	}
	return p
}

// currentBlock finds the block the selection lives in: the innermost
// ancestor that is block-eligible. ok is false when the selection sits
// between top-level blocks.
func currentBlock(s *doc.State) (doc.PathEntry, bool) {
	rp, err := s.Doc.Resolve(s.Sel.From())
	if err != nil {
		return doc.PathEntry{}, false
	}
	entry, _, ok := rp.Ancestor(func(n *doc.Node) bool { return n.Kind.BlockEligible() })
	return entry, ok
}
