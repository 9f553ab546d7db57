package app

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/bedit/internal/config"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// cell is one laid-out screen cell. pos is the document position of the
// rune it shows, or -1 for chrome (markers, borders, prefixes).
type cell struct {
	r     rune
	style tcell.Style
	pos   int
}

// blockSpan remembers which rows a block occupies so selections and
// boundary positions can be resolved without an exact cell hit.
type blockSpan struct {
	from, to int // position range, to exclusive
	firstRow int
	lastRow  int
}

// view lays the document tree out as rows of cells and implements the
// renderer contract over the result: position to coordinates, point to
// position, decoration painting.
type view struct {
	theme  config.Theme
	opts   config.EditorOptions
	width  int
	scroll int

	rows   [][]cell
	blocks []blockSpan
	decos  []render.Decoration
}

func newView(theme config.Theme, opts config.EditorOptions) *view {
	return &view{theme: theme, opts: opts, width: 80}
}

func (v *view) color(hex string) tcell.Color { return tcell.GetColor(hex) }

func (v *view) baseStyle() tcell.Style {
	return tcell.StyleDefault.
		Foreground(v.color(v.theme.Foreground)).
		Background(v.color(v.theme.Background))
}

func (v *view) markStyle(base tcell.Style, marks []doc.Mark) tcell.Style {
	st := base
	for _, m := range marks {
		switch m.Type {
		case doc.MarkBold:
			st = st.Bold(true)
		case doc.MarkItalic:
			st = st.Italic(true)
		case doc.MarkUnderline, doc.MarkLink:
			st = st.Underline(true)
		case doc.MarkStrike:
			st = st.StrikeThrough(true)
		case doc.MarkCode:
			st = st.Foreground(v.color(v.theme.CodeForeground)).
				Background(v.color(v.theme.CodeBackground))
		case doc.MarkTextColor:
			if c := m.Attrs["color"]; c != "" {
				st = st.Foreground(v.color(c))
			}
		case doc.MarkBackgroundColor:
			if c := m.Attrs["color"]; c != "" {
				st = st.Background(v.color(c))
			}
		}
	}
	return st
}

func (v *view) syntaxStyle(base tcell.Style, attr string) tcell.Style {
	var hex string
	switch attr {
	case "keyword":
		hex = v.theme.SyntaxKeyword
	case "string":
		hex = v.theme.SyntaxString
	case "comment":
		hex = v.theme.SyntaxComment
	case "type", "builtin":
		hex = v.theme.SyntaxType
	case "function":
		hex = v.theme.SyntaxFunction
	case "number":
		hex = v.theme.SyntaxNumber
	case "constant":
		hex = v.theme.SyntaxConstant
	case "operator":
		hex = v.theme.SyntaxOperator
	case "punctuation", "field", "variable":
		hex = v.theme.SyntaxPunctuation
	default:
		return base
	}
	return base.Foreground(v.color(hex))
}

// Layout rebuilds the row model from the document. Call after every
// applied transaction and on resize.
func (v *view) Layout(d *doc.Document) {
	v.rows = v.rows[:0]
	v.blocks = v.blocks[:0]
	pos := 0
	for _, n := range d.Children {
		v.renderBlock(n, pos, 0)
		pos += n.Size()
	}
	if len(v.rows) == 0 {
		v.rows = append(v.rows, nil)
	}
}

func (v *view) markBlock(n *doc.Node, pos, firstRow int) {
	v.blocks = append(v.blocks, blockSpan{
		from: pos, to: pos + n.Size(), firstRow: firstRow, lastRow: len(v.rows) - 1,
	})
}

func prefixCells(text string, style tcell.Style) []cell {
	var out []cell
	for _, r := range text {
		out = append(out, cell{r: r, style: style, pos: -1})
	}
	return out
}

// textCells lays out a text block's inline content starting at
// contentStart, honoring marks. Newlines split rows only for code blocks;
// other text kinds never contain them.
func (v *view) textCells(n *doc.Node, contentStart int, base tcell.Style) [][]cell {
	rows := [][]cell{nil}
	p := contentStart
	for _, sp := range n.Spans {
		style := v.markStyle(base, sp.Marks)
		for _, r := range sp.Text {
			if r == '\n' {
				// The newline itself is addressable: a caret on it sits at
				// the end of the current visual line.
				rows[len(rows)-1] = append(rows[len(rows)-1], cell{r: ' ', style: style, pos: p})
				rows = append(rows, nil)
				p++
				continue
			}
			rows[len(rows)-1] = append(rows[len(rows)-1], cell{r: r, style: style, pos: p})
			p++
		}
	}
	return rows
}

func (v *view) renderTextBlock(n *doc.Node, pos, indent int, prefix string, base tcell.Style) {
	firstRow := len(v.rows)
	indentCells := prefixCells(spaces(indent), v.baseStyle())
	pre := prefixCells(prefix, base)
	for i, line := range v.textCells(n, pos+1, base) {
		row := append([]cell{}, indentCells...)
		if i == 0 {
			row = append(row, pre...)
		} else {
			row = append(row, prefixCells(spaces(len([]rune(prefix))), base)...)
		}
		row = append(row, line...)
		v.rows = append(v.rows, row)
	}
	v.markBlock(n, pos, firstRow)
}

func spaces(n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

func (v *view) renderBlock(n *doc.Node, pos, indent int) {
	base := v.baseStyle()
	switch n.Kind {
	case doc.KindHeading:
		level := n.Attrs.Int("level")
		if level < 1 {
			level = 1
		}
		style := base.Foreground(v.color(v.theme.HeadingForeground)).Bold(true)
		prefix := ""
		for i := 0; i < level; i++ {
			prefix += "#"
		}
		v.renderTextBlock(n, pos, indent, prefix+" ", style)
	case doc.KindQuote:
		v.renderTextBlock(n, pos, indent, "│ ", base.Dim(true))
	case doc.KindCodeBlock:
		style := base.Foreground(v.color(v.theme.CodeForeground)).
			Background(v.color(v.theme.CodeBackground))
		v.renderTextBlock(n, pos, indent, "  ", style)
	case doc.KindParagraph, doc.KindUnknown:
		v.renderTextBlock(n, pos, indent, "", base)
	case doc.KindDivider:
		firstRow := len(v.rows)
		row := prefixCells(spaces(indent), base)
		row = append(row, cell{r: '─', style: base.Dim(true), pos: pos})
		for i := 0; i < 20; i++ {
			row = append(row, cell{r: '─', style: base.Dim(true), pos: -1})
		}
		v.rows = append(v.rows, row)
		v.markBlock(n, pos, firstRow)
	case doc.KindImage, doc.KindEmbed:
		firstRow := len(v.rows)
		label := fmt.Sprintf("[%s] %s", n.Kind, n.Attrs.String("src"))
		row := prefixCells(spaces(indent), base)
		cells := prefixCells(label, base.Dim(true))
		cells[0].pos = pos
		row = append(row, cells...)
		v.rows = append(v.rows, row)
		v.markBlock(n, pos, firstRow)
	case doc.KindBulletList, doc.KindOrderedList, doc.KindCheckList:
		firstRow := len(v.rows)
		v.renderList(n, pos, indent)
		v.markBlock(n, pos, firstRow)
	case doc.KindTable:
		firstRow := len(v.rows)
		v.renderTable(n, pos, indent)
		v.markBlock(n, pos, firstRow)
	case doc.KindColumnList:
		firstRow := len(v.rows)
		v.renderColumns(n, pos, indent)
		v.markBlock(n, pos, firstRow)
	default:
		// Containers that only occur nested are rendered by their parents.
	}
}

func (v *view) renderList(list *doc.Node, pos, indent int) {
	childPos := pos + 1
	for i, item := range list.Children {
		marker := "• "
		switch {
		case list.Kind == doc.KindOrderedList:
			marker = fmt.Sprintf("%d. ", i+1)
		case list.Kind == doc.KindCheckList:
			if item.Attrs.Bool("checked") {
				marker = "[x] "
			} else {
				marker = "[ ] "
			}
		}
		inner := childPos + 1
		for j, child := range item.Children {
			if j == 0 && child.Kind.IsText() {
				base := v.baseStyle()
				if list.Kind == doc.KindCheckList && item.Attrs.Bool("checked") {
					base = base.Foreground(v.color(v.theme.CheckedForeground)).StrikeThrough(true)
				}
				v.renderTextBlock(child, inner, indent, marker, base)
			} else {
				v.renderBlock(child, inner, indent+len([]rune(marker)))
			}
			inner += child.Size()
		}
		childPos += item.Size()
	}
}

func (v *view) renderTable(table *doc.Node, pos, indent int) {
	border := v.baseStyle().Foreground(v.color(v.theme.TableBorder))
	rowPos := pos + 1
	for _, tr := range table.Children {
		row := prefixCells(spaces(indent), v.baseStyle())
		row = append(row, cell{r: '│', style: border, pos: -1})
		cellPos := rowPos + 1
		for _, c := range tr.Children {
			base := v.baseStyle()
			if c.Kind == doc.KindTableHeader {
				base = base.Bold(true)
			}
			row = append(row, cell{r: ' ', style: base, pos: -1})
			inner := cellPos + 1
			for _, child := range c.Children {
				if child.Kind.IsText() {
					for _, line := range v.textCells(child, inner+1, base) {
						row = append(row, line...)
					}
				}
				inner += child.Size()
			}
			row = append(row, cell{r: ' ', style: base, pos: -1})
			row = append(row, cell{r: '│', style: border, pos: -1})
			cellPos += c.Size()
		}
		v.rows = append(v.rows, row)
		rowPos += tr.Size()
	}
}

func (v *view) renderColumns(list *doc.Node, pos, indent int) {
	base := v.baseStyle().Dim(true)
	header := fmt.Sprintf("┄ %d columns", len(list.Children))
	v.rows = append(v.rows, append(prefixCells(spaces(indent), base), prefixCells(header, base)...))
	colPos := pos + 1
	for _, col := range list.Children {
		width := col.Attrs.Float("width")
		label := fmt.Sprintf("┊ %.0f%%", width)
		v.rows = append(v.rows, append(prefixCells(spaces(indent), base), prefixCells(label, base)...))
		inner := colPos + 1
		for _, child := range col.Children {
			v.renderBlock(child, inner, indent+2)
			inner += child.Size()
		}
		colPos += col.Size()
	}
}

// Paint stores the decoration set applied during Draw.
func (v *view) Paint(decos []render.Decoration) { v.decos = decos }

func (v *view) decoStyle(pos int, style tcell.Style) tcell.Style {
	for _, d := range v.decos {
		if d.Kind == render.DecoHighlight && pos >= d.From && pos < d.To {
			style = v.syntaxStyle(style, d.Attr)
		}
	}
	return style
}

// CoordsAt maps a document position to layout coordinates. Positions with
// no cell of their own (block boundaries, container interiors) resolve to
// the start of the owning block's first row.
func (v *view) CoordsAt(pos int) (render.Rect, bool) {
	for y, row := range v.rows {
		for x, c := range row {
			if c.pos == pos {
				return render.Rect{X: x, Y: y - v.scroll, W: 1, H: 1}, true
			}
		}
	}
	for _, b := range v.blocks {
		if pos >= b.from && pos < b.to {
			return render.Rect{X: 0, Y: b.firstRow - v.scroll, W: 1, H: 1}, true
		}
	}
	if len(v.blocks) > 0 && pos == v.blocks[len(v.blocks)-1].to {
		return render.Rect{X: 0, Y: v.blocks[len(v.blocks)-1].lastRow - v.scroll, W: 1, H: 1}, true
	}
	return render.Rect{}, false
}

// PosAt maps a screen point to the nearest document position on that row.
func (v *view) PosAt(x, y int) (int, bool) {
	ry := y + v.scroll
	if ry < 0 || ry >= len(v.rows) {
		return 0, false
	}
	row := v.rows[ry]
	best := -1
	bestDist := 1 << 30
	for cx, c := range row {
		if c.pos < 0 {
			continue
		}
		dist := cx - x
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = c.pos
			if cx >= x {
				break
			}
		}
	}
	if best < 0 {
		// A row with no addressable cells belongs to whatever block spans it.
		for _, b := range v.blocks {
			if ry >= b.firstRow && ry <= b.lastRow {
				return b.from, true
			}
		}
		return 0, false
	}
	// Clicking past the last rune puts the caret after it.
	if last := row[len(row)-1]; last.pos >= 0 && x > len(row)-1 && best == last.pos {
		return best + 1, true
	}
	return best, true
}

// blockRowsAt returns the row range of the top-level block covering pos.
func (v *view) blockRowsAt(pos int) (int, int, bool) {
	for _, b := range v.blocks {
		if pos >= b.from && pos < b.to {
			return b.firstRow, b.lastRow, true
		}
	}
	return 0, 0, false
}

// Draw paints the current layout. Selections restyle the affected cells;
// the caret uses the terminal cursor.
func (v *view) Draw(scr tcell.Screen, st *doc.State, multi []int) {
	v.width, _ = scr.Size()
	_, height := scr.Size()
	scr.Fill(' ', v.baseStyle())

	selFrom, selTo := -1, -1
	if st.Sel.Kind != doc.SelCaret {
		selFrom, selTo = st.Sel.From(), st.Sel.To()
	}
	selStyle := v.baseStyle().
		Foreground(v.color(v.theme.SelectionForeground)).
		Background(v.color(v.theme.SelectionBackground))
	multiStyle := v.baseStyle().
		Foreground(v.color(v.theme.BlockSelectForeground)).
		Background(v.color(v.theme.BlockSelectBackground))

	multiRows := map[int]bool{}
	for _, p := range multi {
		if first, last, ok := v.blockRowsAt(p); ok {
			for r := first; r <= last; r++ {
				multiRows[r] = true
			}
		}
	}

	for ry, row := range v.rows {
		y := ry - v.scroll
		if y < 0 || y >= height {
			continue
		}
		for x, c := range row {
			style := c.style
			if c.pos >= 0 {
				style = v.decoStyle(c.pos, style)
			}
			if c.pos >= 0 && c.pos >= selFrom && c.pos < selTo {
				style = selStyle
			}
			if multiRows[ry] {
				style = multiStyle
			}
			scr.SetContent(x, y, c.r, nil, style)
		}
	}

	if st.Sel.Kind == doc.SelCaret {
		if r, ok := v.CoordsAt(st.Sel.Anchor); ok {
			scr.ShowCursor(r.X, r.Y)
		} else {
			scr.HideCursor()
		}
	} else {
		scr.HideCursor()
	}
}

// ScrollTo keeps pos visible within a viewport of the given height.
func (v *view) ScrollTo(pos, height int) {
	r, ok := v.CoordsAt(pos)
	if !ok {
		return
	}
	row := r.Y + v.scroll
	if row < v.scroll {
		v.scroll = row
	}
	if row >= v.scroll+height {
		v.scroll = row - height + 1
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}
