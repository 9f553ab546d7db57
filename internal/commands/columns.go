package commands

import (
	"github.com/kobzarvs/bedit/internal/doc"
)

// evenWidths returns n column widths dividing 100 evenly. The last column
// absorbs the rounding remainder so the sum stays exactly 100.
func evenWidths(n int) []float64 {
	w := make([]float64, n)
	each := 100.0 / float64(n)
	sum := 0.0
	for i := 0; i < n-1; i++ {
		w[i] = each
		sum += each
	}
	w[n-1] = 100.0 - sum
	return w
}

func columnNode(width float64, children ...*doc.Node) *doc.Node {
	if len(children) == 0 {
		children = []*doc.Node{{Kind: doc.KindParagraph, Attrs: doc.Attrs{}}}
	}
	return doc.NewContainer(doc.KindColumn, doc.Attrs{"width": width}, children...)
}

// columnCtx locates the column and columnList above the selection.
func columnCtx(s *doc.State) (col, list doc.PathEntry, ok bool) {
	rp, err := s.Doc.Resolve(s.Sel.From())
	if err != nil {
		return
	}
	for i := len(rp.Path) - 1; i >= 1; i-- {
		if rp.Path[i].Node.Kind == doc.KindColumn && rp.Path[i-1].Node.Kind == doc.KindColumnList {
			return rp.Path[i], rp.Path[i-1], true
		}
	}
	return
}

// InsertColumnLayout wraps the current block into an n-column layout: the
// block becomes the first column's content, the rest start empty. Widths
// divide 100 evenly. The block's id moves to the layout node.
func InsertColumnLayout(n int) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		if n < 2 {
			return false
		}
		if _, _, inCol := columnCtx(s); inCol {
			return false
		}
		entry, ok := currentBlock(s)
		if !ok {
			return false
		}
		// Only top-level blocks become layouts.
		rp, err := s.Doc.Resolve(s.Sel.From())
		if err != nil || rp.Path[0].Node != entry.Node {
			return false
		}
		widths := evenWidths(n)
		moved := entry.Node.Clone()
		cols := make([]*doc.Node, n)
		cols[0] = columnNode(widths[0], moved)
		for i := 1; i < n; i++ {
			cols[i] = columnNode(widths[i])
		}
		attrs := doc.Attrs{}
		if id := entry.Node.ID(); id != "" {
			attrs["id"] = id
			// The moved block keeps living inside the column; the id
			// transfers to the layout, so the inner copy needs a fresh one.
			moved.Attrs = moved.Attrs.Clone()
			delete(moved.Attrs, "id")
		}
		layout := &doc.Node{Kind: doc.KindColumnList, Attrs: attrs, Children: cols}
		from := entry.Start - 1
		tr := doc.NewTransaction().Replace(from, from+entry.Node.Size(), layout)
		tr.SetSelection(doc.Caret(caretInto(layout, from)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// rebuildLayout replaces the whole layout with new columns carrying the
// given widths. Explicit widths override even division; nil means even.
func rebuildLayout(list doc.PathEntry, cols []*doc.Node, widths []float64, dispatch func(*doc.Transaction)) bool {
	if widths == nil {
		widths = evenWidths(len(cols))
	}
	for i, c := range cols {
		if i < len(widths) {
			cols[i] = c.WithAttrs(doc.Attrs{"width": widths[i]})
		}
	}
	repl := &doc.Node{Kind: doc.KindColumnList, Attrs: list.Node.Attrs, Children: cols}
	from := list.Start - 1
	tr := doc.NewTransaction().Replace(from, from+list.Node.Size(), repl)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// AddColumn appends an empty column to the layout containing the
// selection and redistributes widths evenly.
func AddColumn(s *doc.State, dispatch func(*doc.Transaction)) bool {
	_, list, ok := columnCtx(s)
	if !ok {
		return false
	}
	cols := make([]*doc.Node, 0, len(list.Node.Children)+1)
	for _, c := range list.Node.Children {
		cols = append(cols, c.Clone())
	}
	cols = append(cols, columnNode(0))
	return rebuildLayout(list, cols, nil, dispatch)
}

// RemoveColumn removes the column containing the selection. With two
// columns left the whole layout collapses: the surviving column's children
// are hoisted to replace the layout node.
func RemoveColumn(s *doc.State, dispatch func(*doc.Transaction)) bool {
	col, list, ok := columnCtx(s)
	if !ok {
		return false
	}
	n := len(list.Node.Children)
	if n <= 2 {
		survivor := 0
		if col.Index == 0 {
			survivor = 1
		}
		if survivor >= n {
			return false
		}
		hoisted := make([]*doc.Node, len(list.Node.Children[survivor].Children))
		for i, c := range list.Node.Children[survivor].Children {
			hoisted[i] = c.Clone()
		}
		from := list.Start - 1
		tr := doc.NewTransaction().Replace(from, from+list.Node.Size(), hoisted...)
		tr.SetSelection(doc.Caret(from + 1))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
	cols := make([]*doc.Node, 0, n-1)
	for i, c := range list.Node.Children {
		if i == col.Index {
			continue
		}
		cols = append(cols, c.Clone())
	}
	return rebuildLayout(list, cols, nil, dispatch)
}

// RedistributeWidths rewrites the layout's column widths. With nil widths
// the division is even; explicit widths are applied as given.
func RedistributeWidths(widths []float64) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		_, list, ok := columnCtx(s)
		if !ok {
			return false
		}
		if widths != nil && len(widths) != len(list.Node.Children) {
			return false
		}
		cols := make([]*doc.Node, 0, len(list.Node.Children))
		for _, c := range list.Node.Children {
			cols = append(cols, c.Clone())
		}
		return rebuildLayout(list, cols, widths, dispatch)
	}
}
