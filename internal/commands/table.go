package commands

import (
	"github.com/kobzarvs/bedit/internal/doc"
)

// InsertTable inserts a rows×cols table after the current block, with a
// header row when header is set.
func InsertTable(rows, cols int, header bool) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		if rows < 1 || cols < 1 {
			return false
		}
		entry, ok := currentBlock(s)
		if !ok {
			return false
		}
		// Tables nest inside cells and columns but not inside themselves.
		if _, inTable := findTableCtx(s); inTable {
			return false
		}
		rowNodes := make([]*doc.Node, rows)
		for r := range rowNodes {
			kind := doc.KindTableCell
			if header && r == 0 {
				kind = doc.KindTableHeader
			}
			cells := make([]*doc.Node, cols)
			for c := range cells {
				cells[c] = emptyCell(kind)
			}
			rowNodes[r] = doc.NewContainer(doc.KindTableRow, doc.Attrs{}, cells...)
		}
		table := doc.NewContainer(doc.KindTable, doc.Attrs{}, rowNodes...)
		at := entry.Start - 1 + entry.Node.Size()
		tr := doc.NewTransaction().Replace(at, at, table)
		tr.SetSelection(doc.Caret(caretInto(table, at)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

func insertRow(s *doc.State, dispatch func(*doc.Transaction), after bool) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	newRow := emptyRowLike(ctx.row.Node)
	at := ctx.row.Start - 1
	if after {
		at += ctx.row.Node.Size()
	}
	tr := doc.NewTransaction().Replace(at, at, newRow)
	tr.SetSelection(doc.Caret(caretInto(newRow, at)))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// InsertRowBefore inserts a row above the current one, mirroring its
// column count and cell kinds.
func InsertRowBefore(s *doc.State, dispatch func(*doc.Transaction)) bool {
	return insertRow(s, dispatch, false)
}

// InsertRowAfter inserts a row below the current one.
func InsertRowAfter(s *doc.State, dispatch func(*doc.Transaction)) bool {
	return insertRow(s, dispatch, true)
}

// DeleteRow removes the current row. A table always keeps at least one
// row, so the command does not apply to a single-row table.
func DeleteRow(s *doc.State, dispatch func(*doc.Transaction)) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	if len(ctx.table.Node.Children) <= 1 {
		return false
	}
	from := ctx.row.Start - 1
	tr := doc.NewTransaction().DeleteRange(from, from+ctx.row.Node.Size())
	tr.SetSelection(doc.Caret(ctx.tableStart() + 1))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// rebuildTable replaces the whole table subtree in one edit. Cells of
// different rows are not contiguous in the address space, so per-row
// splicing of a column would compound offset drift; a single replace over
// the table avoids that entirely.
func rebuildTable(ctx tableCtx, dispatch func(*doc.Transaction), rewrite func(row *doc.Node) *doc.Node, sel func(newTable *doc.Node) int) bool {
	rows := make([]*doc.Node, len(ctx.table.Node.Children))
	for i, row := range ctx.table.Node.Children {
		rows[i] = rewrite(row)
	}
	newTable := &doc.Node{Kind: doc.KindTable, Attrs: ctx.table.Node.Attrs, Children: rows}
	from := ctx.tableStart()
	tr := doc.NewTransaction().Replace(from, from+ctx.table.Node.Size(), newTable)
	if sel != nil {
		tr.SetSelection(doc.Caret(sel(newTable)))
	}
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

func insertColumn(s *doc.State, dispatch func(*doc.Transaction), after bool) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	idx := ctx.cellIndex
	if after {
		idx++
	}
	return rebuildTable(ctx, dispatch, func(row *doc.Node) *doc.Node {
		// New cell kind inferred from the row's first cell so header rows
		// grow header cells.
		kind := doc.KindTableCell
		if len(row.Children) > 0 && row.Children[0].Kind == doc.KindTableHeader {
			kind = doc.KindTableHeader
		}
		at := idx
		if at > len(row.Children) {
			at = len(row.Children)
		}
		cells := make([]*doc.Node, 0, len(row.Children)+1)
		cells = append(cells, row.Children[:at]...)
		cells = append(cells, emptyCell(kind))
		cells = append(cells, row.Children[at:]...)
		return &doc.Node{Kind: doc.KindTableRow, Attrs: row.Attrs, Children: cells}
	}, func(nt *doc.Node) int {
		return caretInCell(nt, ctx.tableStart(), ctx.rowIndex, idx)
	})
}

// InsertColumnBefore inserts a column to the left of the current cell.
func InsertColumnBefore(s *doc.State, dispatch func(*doc.Transaction)) bool {
	return insertColumn(s, dispatch, false)
}

// InsertColumnAfter inserts a column to the right of the current cell.
func InsertColumnAfter(s *doc.State, dispatch func(*doc.Transaction)) bool {
	return insertColumn(s, dispatch, true)
}

// DeleteColumn removes the current column across every row. A table always
// keeps at least one column.
func DeleteColumn(s *doc.State, dispatch func(*doc.Transaction)) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	if len(ctx.row.Node.Children) <= 1 {
		return false
	}
	idx := ctx.cellIndex
	return rebuildTable(ctx, dispatch, func(row *doc.Node) *doc.Node {
		if idx >= len(row.Children) || len(row.Children) <= 1 {
			return row.Clone()
		}
		cells := make([]*doc.Node, 0, len(row.Children)-1)
		cells = append(cells, row.Children[:idx]...)
		cells = append(cells, row.Children[idx+1:]...)
		return &doc.Node{Kind: doc.KindTableRow, Attrs: row.Attrs, Children: cells}
	}, func(nt *doc.Node) int {
		col := idx
		if col >= len(nt.Children[ctx.rowIndex].Children) {
			col = len(nt.Children[ctx.rowIndex].Children) - 1
		}
		return caretInCell(nt, ctx.tableStart(), ctx.rowIndex, col)
	})
}

// caretInCell computes the caret position for cell (rowIdx, cellIdx) of a
// table node whose open token sits at tablePos.
func caretInCell(table *doc.Node, tablePos, rowIdx, cellIdx int) int {
	pos := tablePos + 1
	for r := 0; r < rowIdx; r++ {
		pos += table.Children[r].Size()
	}
	row := table.Children[rowIdx]
	pos++
	for c := 0; c < cellIdx; c++ {
		pos += row.Children[c].Size()
	}
	return caretInto(row.Children[cellIdx], pos)
}

// NextCell advances the selection to the next cell. At the last cell of
// the last row it appends a fresh row with the same column count and moves
// into its first cell instead of doing nothing.
func NextCell(s *doc.State, dispatch func(*doc.Transaction)) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	rows := ctx.table.Node.Children
	if ctx.cellIndex+1 < len(ctx.row.Node.Children) {
		tr := doc.NewTransaction()
		tr.SetSelection(doc.Caret(caretInCell(ctx.table.Node, ctx.tableStart(), ctx.rowIndex, ctx.cellIndex+1)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
	if ctx.rowIndex+1 < len(rows) {
		tr := doc.NewTransaction()
		tr.SetSelection(doc.Caret(caretInCell(ctx.table.Node, ctx.tableStart(), ctx.rowIndex+1, 0)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
	// Last cell of the last row: grow the table.
	newRow := emptyRowLike(ctx.row.Node)
	at := ctx.row.Start - 1 + ctx.row.Node.Size()
	tr := doc.NewTransaction().Replace(at, at, newRow)
	tr.SetSelection(doc.Caret(caretInto(newRow, at)))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// PrevCell moves the selection to the previous cell. At the first cell of
// the first row the command does not apply.
func PrevCell(s *doc.State, dispatch func(*doc.Transaction)) bool {
	ctx, ok := findTableCtx(s)
	if !ok {
		return false
	}
	rowIdx, cellIdx := ctx.rowIndex, ctx.cellIndex-1
	if cellIdx < 0 {
		rowIdx--
		if rowIdx < 0 {
			return false
		}
		cellIdx = len(ctx.table.Node.Children[rowIdx].Children) - 1
	}
	tr := doc.NewTransaction()
	tr.SetSelection(doc.Caret(caretInCell(ctx.table.Node, ctx.tableStart(), rowIdx, cellIdx)))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}
