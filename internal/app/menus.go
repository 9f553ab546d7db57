package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

type slashItem struct {
	name string
	cmd  commands.Command
}

func (s *session) slashItems() []slashItem {
	e := s.cfg.Editor
	items := []slashItem{
		{"text", commands.SetBlockType(doc.KindParagraph, nil)},
		{"quote", commands.SetBlockType(doc.KindQuote, nil)},
		{"code", commands.SetBlockType(doc.KindCodeBlock, nil)},
		{"bullet list", commands.WrapInList(doc.KindBulletList)},
		{"numbered list", commands.WrapInList(doc.KindOrderedList)},
		{"check list", commands.WrapInList(doc.KindCheckList)},
		{"table", commands.InsertTable(e.TableRows, e.TableColumns, true)},
		{"columns", commands.InsertColumnLayout(2)},
		{"divider", commands.InsertBlock(&doc.Node{Kind: doc.KindDivider, Attrs: doc.Attrs{}})},
		{"image", commands.InsertBlock(&doc.Node{Kind: doc.KindImage, Attrs: doc.Attrs{}})},
	}
	for lvl := 1; lvl <= e.MaxHeadingLevel; lvl++ {
		items = append(items, slashItem{
			name: fmt.Sprintf("heading %d", lvl),
			cmd:  commands.SetBlockType(doc.KindHeading, doc.Attrs{"level": lvl}),
		})
	}
	return items
}

func (s *session) filteredSlashItems() []slashItem {
	query := strings.ToLower(s.ed.Slash.State().Query)
	all := s.slashItems()
	if query == "" {
		return all
	}
	var out []slashItem
	for _, it := range all {
		if strings.Contains(strings.ReplaceAll(it.name, " ", ""), query) ||
			strings.Contains(it.name, query) {
			out = append(out, it)
		}
	}
	return out
}

func (s *session) menuStyle(selected bool) tcell.Style {
	t := s.cfg.Theme
	if selected {
		return tcell.StyleDefault.
			Foreground(tcell.GetColor(t.MenuSelectedForeground)).
			Background(tcell.GetColor(t.MenuSelectedBackground))
	}
	return tcell.StyleDefault.
		Foreground(tcell.GetColor(t.MenuForeground)).
		Background(tcell.GetColor(t.MenuBackground))
}

func (s *session) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		s.scr.SetContent(x+i, y, r, nil, style)
	}
}

func (s *session) drawMenus() {
	s.drawSlashMenu()
	s.drawBubbleMenu()
	s.drawMediaMenu()
	s.drawDropIndicator()
}

func (s *session) drawSlashMenu() {
	st := s.ed.Slash.State()
	if !st.Active || st.Coords == nil {
		return
	}
	items := s.filteredSlashItems()
	if len(items) == 0 {
		return
	}
	if s.slashSel >= len(items) {
		s.slashSel = len(items) - 1
	}
	const maxRows = 6
	x, y := st.Coords.X, st.Coords.Y+1
	for i, it := range items {
		if i >= maxRows {
			break
		}
		label := " " + it.name + strings.Repeat(" ", 18-min(18, len(it.name)))
		s.drawText(x, y+i, label, s.menuStyle(i == s.slashSel))
	}
}

func (s *session) drawBubbleMenu() {
	st := s.ed.Bubble.State()
	if !st.Visible || st.Coords == nil {
		return
	}
	y := st.Coords.Y - 1
	if y < 0 {
		y = st.Coords.Y + 1
	}
	marks := []struct {
		label string
		t     doc.MarkType
	}{
		{"B", doc.MarkBold}, {"I", doc.MarkItalic}, {"U", doc.MarkUnderline},
		{"S", doc.MarkStrike}, {"C", doc.MarkCode}, {"L", doc.MarkLink},
	}
	x := st.Coords.X
	for _, m := range marks {
		s.drawText(x, y, " "+m.label, s.menuStyle(st.Marks[m.t]))
		x += 2
	}
	s.drawText(x, y, " "+st.BlockKind.String()+" ", s.menuStyle(false))
}

func (s *session) drawMediaMenu() {
	st := s.ed.Media.State()
	if !st.Visible || st.Coords == nil {
		return
	}
	label := " " + st.Kind.String() + ": replace · align · settings "
	if st.PopoverOpen {
		label = " " + st.Kind.String() + " settings: src · alt · width "
	}
	s.drawText(st.Coords.X, st.Coords.Y+1, label, s.menuStyle(st.PopoverOpen))
}

func (s *session) drawDropIndicator() {
	st := s.ed.Drag.State()
	if st.DropTarget < 0 {
		return
	}
	r, ok := s.coordsAtBoundary(st.DropTarget)
	if !ok {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.GetColor(s.cfg.Theme.DropIndicator))
	width, _ := s.scr.Size()
	for x := 0; x < width/2; x++ {
		s.scr.SetContent(x, r.Y, '─', nil, style)
	}
}

// coordsAtBoundary resolves a sibling boundary: the row above the block
// starting there, or below the last block for the end boundary.
func (s *session) coordsAtBoundary(pos int) (render.Rect, bool) {
	if r, ok := s.view.CoordsAt(pos); ok {
		return r, true
	}
	if first, last, ok := s.view.blockRowsAt(pos - 1); ok {
		_ = first
		return render.Rect{X: 0, Y: last + 1 - s.view.scroll, W: 1, H: 1}, true
	}
	return render.Rect{}, false
}
