package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/editor/plugins"
)

// caretText resolves pos to the text block directly containing it.
func caretText(st *doc.State, pos int) (*doc.Node, int, bool) {
	rp, err := st.Doc.Resolve(pos)
	if err != nil || len(rp.Path) == 0 {
		return nil, 0, false
	}
	last := rp.Path[len(rp.Path)-1]
	if !last.Node.Kind.IsText() {
		return nil, 0, false
	}
	return last.Node, last.Start, true
}

// marksAt returns the marks of the rune before offset, so typing extends
// the run the caret sits in.
func marksAt(n *doc.Node, off int) []doc.Mark {
	if off <= 0 || n.Kind == doc.KindCodeBlock {
		return nil
	}
	p := 0
	for _, sp := range n.Spans {
		l := len([]rune(sp.Text))
		if off <= p+l {
			return sp.Marks
		}
		p += l
	}
	return nil
}

func topBlockStart(d *doc.Document, pos int) (int, bool) {
	at := 0
	for _, c := range d.Children {
		if pos >= at && pos < at+c.Size() {
			return at, true
		}
		at += c.Size()
	}
	return 0, false
}

func (s *session) dispatch(tr *doc.Transaction) {
	if err := s.ed.Dispatch(tr); err != nil {
		// Rejected edits are normal interactive outcomes, not failures.
		s.dirty = true
	}
}

func (s *session) insertText(text string) {
	st := s.ed.State()
	if st.Sel.Kind == doc.SelNode {
		return
	}
	from, to := st.Sel.From(), st.Sel.To()
	n, cs, ok := caretText(st, from)
	if !ok {
		return
	}
	if to > cs+n.TextLen() {
		return
	}
	span := doc.Span{Text: text, Marks: marksAt(n, from-cs)}
	tr := doc.NewTransaction().ReplaceText(from, to, span)
	tr.SetSelection(doc.Caret(from + len([]rune(text))))
	s.dispatch(tr)
}

func (s *session) backspace() {
	st := s.ed.State()
	switch st.Sel.Kind {
	case doc.SelNode:
		from := st.Sel.From()
		tr := doc.NewTransaction().DeleteRange(from, st.Sel.To())
		tr.SetSelection(doc.Caret(from))
		s.dispatch(tr)
	case doc.SelRange:
		from, to := st.Sel.From(), st.Sel.To()
		if n, cs, ok := caretText(st, from); ok && to <= cs+n.TextLen() {
			tr := doc.NewTransaction().ReplaceText(from, to)
			tr.SetSelection(doc.Caret(from))
			s.dispatch(tr)
		}
	default:
		pos := st.Sel.Anchor
		_, cs, ok := caretText(st, pos)
		if !ok {
			return
		}
		if pos == cs {
			s.ed.Exec(commands.ExitEmptyItem)
			return
		}
		tr := doc.NewTransaction().ReplaceText(pos-1, pos)
		tr.SetSelection(doc.Caret(pos - 1))
		s.dispatch(tr)
	}
}

func (s *session) newBlockBelow() {
	st := s.ed.State()
	if s.ed.Exec(commands.ExitEmptyItem) {
		return
	}
	top, ok := topBlockStart(st.Doc, st.Sel.From())
	if !ok {
		return
	}
	n := st.Doc.NodeAt(top)
	after := top + n.Size()
	tr := doc.NewTransaction().Replace(after, after, doc.NewParagraph(""))
	tr.SetSelection(doc.Caret(after + 1))
	s.dispatch(tr)
}

func (s *session) moveCaret(delta int, extend bool) {
	st := s.ed.State()
	head := st.Sel.Head + delta
	if head < 0 {
		head = 0
	}
	if max := st.Doc.ContentSize(); head > max {
		head = max
	}
	var sel doc.Selection
	if extend {
		sel = doc.Range(st.Sel.Anchor, head)
	} else {
		sel = doc.Caret(head)
	}
	s.dispatch(doc.NewTransaction().SetSelection(sel))
}

func (s *session) moveCaretRow(dy int) {
	st := s.ed.State()
	r, ok := s.view.CoordsAt(st.Sel.Head)
	if !ok {
		return
	}
	if pos, found := s.view.PosAt(r.X, r.Y+dy); found {
		s.dispatch(doc.NewTransaction().SetSelection(doc.Caret(pos)))
	}
}

func (s *session) handleKey(ev *tcell.EventKey) bool {
	if s.ed.Slash.State().Active {
		if s.handleSlashKey(ev) {
			return false
		}
	}
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		s.save()
	case tcell.KeyEscape:
		s.handleEscape()
	case tcell.KeyEnter:
		s.newBlockBelow()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.backspace()
	case tcell.KeyTab:
		if !s.ed.Exec(commands.NextCell) {
			if n, _, ok := caretText(s.ed.State(), s.ed.State().Sel.From()); ok && n.Kind == doc.KindCodeBlock {
				s.insertText(spaces(s.cfg.Editor.CodeTabWidth))
			}
		}
	case tcell.KeyBacktab:
		s.ed.Exec(commands.PrevCell)
	case tcell.KeyCtrlB:
		s.ed.Exec(commands.ToggleMark(doc.MarkBold, nil))
	case tcell.KeyCtrlU:
		s.ed.Exec(commands.ToggleMark(doc.MarkUnderline, nil))
	case tcell.KeyCtrlE:
		s.ed.Exec(commands.ToggleMark(doc.MarkItalic, nil))
	case tcell.KeyLeft:
		s.moveCaret(-1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyRight:
		s.moveCaret(1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyUp:
		s.moveCaretRow(-1)
	case tcell.KeyDown:
		s.moveCaretRow(1)
	case tcell.KeyRune:
		s.insertText(string(ev.Rune()))
	}
	return false
}

// handleSlashKey consumes navigation keys while the command menu is open.
func (s *session) handleSlashKey(ev *tcell.EventKey) bool {
	items := s.filteredSlashItems()
	switch ev.Key() {
	case tcell.KeyUp:
		if s.slashSel > 0 {
			s.slashSel--
		}
		s.dirty = true
		return true
	case tcell.KeyDown:
		if s.slashSel < len(items)-1 {
			s.slashSel++
		}
		s.dirty = true
		return true
	case tcell.KeyEnter:
		if s.slashSel < len(items) {
			s.ed.ExecuteSlashItem(items[s.slashSel].cmd)
		}
		s.slashSel = 0
		return true
	case tcell.KeyEscape:
		_ = s.ed.Signal(s.ed.Slash.Name(), plugins.SlashInstruction{Action: "close"})
		s.slashSel = 0
		return true
	}
	s.slashSel = 0
	return false
}

func (s *session) handleEscape() {
	switch {
	case s.ed.Media.State().PopoverOpen:
		_ = s.ed.Signal(s.ed.Media.Name(), plugins.MediaInstruction{Action: "popover-close"})
	case len(s.ed.Multi.State().Blocks) > 0:
		_ = s.ed.Signal(s.ed.Multi.Name(), plugins.MultiInstruction{Action: "clear"})
	case s.ed.Drag.State().DraggingPos >= 0:
		_ = s.ed.Signal(s.ed.Drag.Name(), plugins.DragInstruction{Action: "cancel"})
	default:
		_ = s.ed.Signal(s.ed.Bubble.Name(), plugins.BubbleInstruction{Action: "close"})
	}
}

func (s *session) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		s.view.scroll -= 3
		if s.view.scroll < 0 {
			s.view.scroll = 0
		}
		s.dirty = true
	case ev.Buttons()&tcell.WheelDown != 0:
		s.view.scroll += 3
		s.dirty = true
	case ev.Buttons()&tcell.Button1 != 0:
		s.mouseDown(x, y, ev.Modifiers())
	default:
		s.mouseUp(x, y)
	}
}

func (s *session) mouseDown(x, y int, mods tcell.ModMask) {
	pos, ok := s.view.PosAt(x, y)
	if !ok {
		return
	}
	st := s.ed.State()
	top, hasTop := topBlockStart(st.Doc, pos)

	if mods&tcell.ModAlt != 0 && hasTop {
		action := "toggle"
		if mods&tcell.ModShift != 0 {
			action = "range"
		}
		_ = s.ed.Signal(s.ed.Multi.Name(), plugins.MultiInstruction{Action: action, Pos: top})
		return
	}

	if mods&tcell.ModCtrl != 0 && hasTop {
		_ = s.ed.Signal(s.ed.Drag.Name(), plugins.DragInstruction{Action: "start", Pos: top})
		return
	}

	if s.ed.Drag.State().DraggingPos >= 0 && hasTop {
		first, last, found := s.view.blockRowsAt(pos)
		if found {
			_ = s.ed.Signal(s.ed.Drag.Name(), plugins.DragInstruction{
				Action: "hover", Pos: top, Y: y + s.view.scroll, Top: first, Bottom: last + 1,
			})
		}
		return
	}

	if n := st.Doc.NodeAt(pos); n != nil && n.Kind.IsAtomic() {
		if sel, found := doc.NodeSelection(st.Doc, pos); found {
			s.dispatch(doc.NewTransaction().SetSelection(sel))
			return
		}
	}
	s.dispatch(doc.NewTransaction().SetSelection(doc.Caret(pos)))
}

func (s *session) mouseUp(x, y int) {
	if s.ed.Drag.State().DraggingPos >= 0 {
		_ = s.ed.Signal(s.ed.Drag.Name(), plugins.DragInstruction{Action: "drop"})
	}
	_ = x
	_ = y
}
