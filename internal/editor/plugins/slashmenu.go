package plugins

import (
	"strings"
	"unicode"

	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// SlashState describes the command popup. TriggerPos is the position of
// the trigger character itself; the query is everything typed after it in
// the same block. Coords stays nil until the measurer reports back.
type SlashState struct {
	Active     bool
	Query      string
	TriggerPos int
	Coords     *render.Rect
}

// SlashInstruction bypasses the menu's inference when delivered as
// transaction metadata under the machine's name.
type SlashInstruction struct {
	Action     string // "open" or "close"
	TriggerPos int
}

// SlashMenu tracks the trigger-character command popup. The trigger rune
// is configurable; everything else is derived from transactions.
type SlashMenu struct {
	trigger rune
	st      SlashState
}

func NewSlashMenu(trigger rune) *SlashMenu {
	if trigger == 0 {
		trigger = '/'
	}
	return &SlashMenu{trigger: trigger}
}

func (m *SlashMenu) Name() string      { return "slashmenu" }
func (m *SlashMenu) State() SlashState { return m.st }
func (m *SlashMenu) Trigger() rune     { return m.trigger }

func (m *SlashMenu) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	if ins, ok := tx.Meta(m.Name()).(SlashInstruction); ok {
		switch ins.Action {
		case "open":
			m.st = SlashState{Active: true, TriggerPos: ins.TriggerPos}
		case "close":
			m.st = SlashState{}
		}
		return nil
	}
	if !m.st.Active {
		if tx.DocChanged() {
			m.maybeActivate(new)
		}
		return nil
	}
	if !tx.DocChanged() {
		// Moving the selection without editing dismisses the menu.
		if tx.SelectionSet() {
			m.st = SlashState{}
		}
		return nil
	}
	mp := tx.Mapping()
	if mp.Deleted(m.st.TriggerPos + 1) {
		m.st = SlashState{}
		return nil
	}
	m.st.TriggerPos = mp.Map(m.st.TriggerPos, -1)
	m.st.Coords = nil
	m.reviseQuery(new)
	return nil
}

// maybeActivate opens the menu when the trigger was just typed as the
// first character of a text block.
func (m *SlashMenu) maybeActivate(new *doc.State) {
	if new.Sel.Kind != doc.SelCaret {
		return
	}
	node, start, ok := innerTextBlock(new.Doc, new.Sel.Anchor)
	if !ok || node.Kind == doc.KindCodeBlock {
		return
	}
	text := node.Text()
	if text != string(m.trigger) || new.Sel.Anchor != start+1 {
		return
	}
	m.st = SlashState{Active: true, TriggerPos: start}
}

// reviseQuery re-derives the query from the block text after every edit.
// The query is never tracked incrementally, so edits in the middle of it
// cannot drift.
func (m *SlashMenu) reviseQuery(new *doc.State) {
	node, start, ok := innerTextBlock(new.Doc, m.st.TriggerPos)
	if !ok {
		m.st = SlashState{}
		return
	}
	runes := []rune(node.Text())
	off := m.st.TriggerPos - start
	if off < 0 || off >= len(runes) || runes[off] != m.trigger {
		m.st = SlashState{}
		return
	}
	query := string(runes[off+1:])
	if strings.IndexFunc(query, unicode.IsSpace) >= 0 {
		m.st = SlashState{}
		return
	}
	m.st.Query = query
}

// Consume builds the transaction that deletes the trigger and query text
// and closes the menu, the first half of executing a menu item. The chosen
// command runs afterwards against the state this transaction produced.
func (m *SlashMenu) Consume() (*doc.Transaction, bool) {
	if !m.st.Active {
		return nil, false
	}
	from := m.st.TriggerPos
	to := from + 1 + len([]rune(m.st.Query))
	tr := doc.NewTransaction().ReplaceText(from, to).
		SetMeta(m.Name(), SlashInstruction{Action: "close"})
	tr.SetSelection(doc.Caret(from))
	return tr, true
}

func (m *SlashMenu) MeasureTarget() (int, bool) {
	if !m.st.Active || m.st.Coords != nil {
		return 0, false
	}
	return m.st.TriggerPos, true
}

// SetCoords fills in the popup anchor. Late results for a position the
// menu no longer tracks are dropped.
func (m *SlashMenu) SetCoords(pos int, r render.Rect) {
	if !m.st.Active || pos != m.st.TriggerPos {
		return
	}
	rc := r
	m.st.Coords = &rc
}
