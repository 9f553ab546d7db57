package editor

import (
	"testing"

	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/config"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/editor/plugins"
	"github.com/kobzarvs/bedit/internal/render"
)

func newTestEditor(children ...*doc.Node) *Editor {
	var d *doc.Document
	if len(children) > 0 {
		d = &doc.Document{Children: children}
	}
	return New(d, config.Default().Editor)
}

func TestNewFillsMissingIDs(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("hello"), doc.NewParagraph("world"))
	for i, c := range e.State().Doc.Children {
		if c.ID() == "" {
			t.Fatalf("block %d has no id", i)
		}
	}
	if a, b := e.State().Doc.Children[0].ID(), e.State().Doc.Children[1].ID(); a == b {
		t.Fatalf("duplicate generated id %q", a)
	}
}

func TestDispatchAssignsIDToInsertedBlock(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("a"))
	end := e.State().Doc.ContentSize()
	if err := e.Dispatch(doc.NewTransaction().Replace(end, end, doc.NewParagraph("b"))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	inserted := e.State().Doc.Children[1]
	if inserted.ID() == "" {
		t.Fatal("inserted block has no id")
	}
}

func TestDispatchEmitsEvents(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("a"))
	var changes, sels, txs int
	e.On(EventChange, func(*doc.State) { changes++ })
	e.On(EventSelectionChange, func(*doc.State) { sels++ })
	e.On(EventTransaction, func(*doc.State) { txs++ })

	if err := e.Dispatch(doc.NewTransaction().InsertText(1, "x").SetSelection(doc.Caret(2))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if changes != 1 || sels != 1 || txs != 1 {
		t.Fatalf("events = change:%d sel:%d tx:%d", changes, sels, txs)
	}

	// A pure selection move is not a change.
	if err := e.Dispatch(doc.NewTransaction().SetSelection(doc.Caret(1))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if changes != 1 || sels != 2 {
		t.Fatalf("after selection move: change:%d sel:%d", changes, sels)
	}
}

func TestObserversSeeSettledState(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("a"))
	end := e.State().Doc.ContentSize()
	e.On(EventChange, func(s *doc.State) {
		// Identity follow-ups are folded in before anyone is notified.
		for i, c := range s.Doc.Children {
			if c.ID() == "" {
				t.Fatalf("observer saw block %d without id", i)
			}
		}
	})
	if err := e.Dispatch(doc.NewTransaction().Replace(end, end, doc.NewParagraph("b"))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestRejectedTransactionLeavesState(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("hello"))
	before := e.State()
	// Cutting through a node boundary is not a valid replace range.
	if err := e.Dispatch(doc.NewTransaction().Replace(0, 2)); err == nil {
		t.Fatal("expected rejection")
	}
	if e.State() != before {
		t.Fatal("state changed by a rejected transaction")
	}
}

func TestExecReportsInapplicable(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("hello"))
	if e.Exec(commands.DeleteRow) {
		t.Fatal("table command applied outside a table")
	}
}

func TestSlashMenuEndToEnd(t *testing.T) {
	e := newTestEditor(doc.NewParagraph(""))
	id := e.State().Doc.Children[0].ID()

	if err := e.Dispatch(doc.NewTransaction().InsertText(1, "/").SetSelection(doc.Caret(2))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := e.Dispatch(doc.NewTransaction().InsertText(2, "h2").SetSelection(doc.Caret(4))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if st := e.Slash.State(); !st.Active || st.Query != "h2" {
		t.Fatalf("slash state: %+v", st)
	}

	if !e.ExecuteSlashItem(commands.SetBlockType(doc.KindHeading, doc.Attrs{"level": 2})) {
		t.Fatal("slash item did not execute")
	}
	got := e.State().Doc.Children[0]
	if got.Kind != doc.KindHeading || got.Attrs.Int("level") != 2 {
		t.Fatalf("block after execute: %v %v", got.Kind, got.Attrs)
	}
	if got.Text() != "" {
		t.Fatalf("trigger text left behind: %q", got.Text())
	}
	if got.ID() != id {
		t.Fatalf("id changed: %q != %q", got.ID(), id)
	}
	if e.Slash.State().Active {
		t.Fatal("menu still active")
	}
}

func TestSignalChecklistToggle(t *testing.T) {
	item := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": false}, doc.NewParagraph("task"))
	list := doc.NewContainer(doc.KindCheckList, doc.Attrs{}, item)
	e := newTestEditor(list)

	if err := e.Signal(e.Checklist.Name(), plugins.ChecklistInstruction{Action: "toggle", Pos: 1}); err != nil {
		t.Fatalf("signal: %v", err)
	}
	if !e.State().Doc.Children[0].Children[0].Attrs.Bool("checked") {
		t.Fatal("item not checked after signal")
	}
}

func TestFocusBlur(t *testing.T) {
	e := newTestEditor(doc.NewParagraph("a"))
	var focus, blur int
	e.On(EventFocus, func(*doc.State) { focus++ })
	e.On(EventBlur, func(*doc.State) { blur++ })
	e.Focus()
	e.Focus()
	e.Blur()
	if focus != 1 || blur != 1 || e.Focused() {
		t.Fatalf("focus:%d blur:%d focused:%v", focus, blur, e.Focused())
	}
}

type fixedMeasurer map[int]render.Rect

func (m fixedMeasurer) CoordsAt(pos int) (render.Rect, bool) {
	r, ok := m[pos]
	return r, ok
}

func TestMeasureFillsPopupAnchors(t *testing.T) {
	e := newTestEditor(doc.NewParagraph(""))
	if err := e.Dispatch(doc.NewTransaction().InsertText(1, "/").SetSelection(doc.Caret(2))); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	e.Measure(fixedMeasurer{1: {X: 4, Y: 2, W: 1, H: 1}})
	st := e.Slash.State()
	if st.Coords == nil || st.Coords.X != 4 {
		t.Fatalf("slash coords: %+v", st.Coords)
	}
	// A second pass with nothing pending leaves the cached result alone.
	e.Measure(fixedMeasurer{1: {X: 9}})
	if e.Slash.State().Coords.X != 4 {
		t.Fatal("cached coords overwritten")
	}
}
