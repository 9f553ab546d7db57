package commands

import (
	"math"
	"testing"

	"github.com/kobzarvs/bedit/internal/doc"
)

type harness struct {
	t *testing.T
	s *doc.State
}

func newHarness(t *testing.T, nodes ...*doc.Node) *harness {
	t.Helper()
	d := &doc.Document{Children: nodes}
	if err := d.Validate(); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return &harness{t: t, s: &doc.State{Doc: d, Sel: doc.Caret(1)}}
}

func (h *harness) dispatch(tr *doc.Transaction) {
	h.t.Helper()
	ns, err := tr.Apply(h.s)
	if err != nil {
		h.t.Fatalf("dispatch: %v", err)
	}
	h.s = ns
}

func (h *harness) caret(pos int) { h.s.Sel = doc.Caret(pos) }

func para(id, text string) *doc.Node {
	n := doc.NewParagraph(text)
	if id != "" {
		n.Attrs["id"] = id
	}
	return n
}

func cellWith(text string) *doc.Node {
	return doc.NewContainer(doc.KindTableCell, doc.Attrs{}, para("", text))
}

func tableNode(id string, rows ...[]string) *doc.Node {
	rowNodes := make([]*doc.Node, len(rows))
	for r, texts := range rows {
		cells := make([]*doc.Node, len(texts))
		for c, txt := range texts {
			cells[c] = cellWith(txt)
		}
		rowNodes[r] = doc.NewContainer(doc.KindTableRow, doc.Attrs{}, cells...)
	}
	return doc.NewContainer(doc.KindTable, doc.Attrs{"id": id}, rowNodes...)
}

// findNode returns the first node of the given kind with its position.
func findNode(d *doc.Document, kind doc.Kind) (*doc.Node, int) {
	var fn *doc.Node
	var fp int
	d.Walk(func(n *doc.Node, pos int) bool {
		if n.Kind == kind {
			fn, fp = n, pos
			return false
		}
		return true
	})
	return fn, fp
}

func cellText(table *doc.Node, r, c int) string {
	return table.Children[r].Children[c].Children[0].Text()
}

func TestInsertTableThenDeleteMiddleRow(t *testing.T) {
	h := newHarness(t, para("p1", ""))
	h.caret(1)
	if !InsertTable(3, 3, false)(h.s, h.dispatch) {
		t.Fatal("InsertTable did not apply")
	}
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	if tb == nil || len(tb.Children) != 3 {
		t.Fatalf("table rows = %v", tb)
	}

	// Put text into the first cell, then delete the middle row.
	h.caret(caretInCell(tb, tbPos, 0, 0))
	h.dispatch(doc.NewTransaction().InsertText(h.s.Sel.Anchor, "keep"))

	tb, tbPos = findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 1, 1))
	if !DeleteRow(h.s, h.dispatch) {
		t.Fatal("DeleteRow did not apply")
	}

	tb, _ = findNode(h.s.Doc, doc.KindTable)
	if len(tb.Children) != 2 {
		t.Fatalf("rows = %d, want 2", len(tb.Children))
	}
	for r, row := range tb.Children {
		if len(row.Children) != 3 {
			t.Fatalf("row %d cells = %d, want 3", r, len(row.Children))
		}
	}
	if got := cellText(tb, 0, 0); got != "keep" {
		t.Fatalf("cell(0,0) = %q, want %q", got, "keep")
	}
}

func TestDeleteRowFloor(t *testing.T) {
	h := newHarness(t, tableNode("t1", []string{"a", "b"}))
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 0, 0))
	if DeleteRow(h.s, h.dispatch) {
		t.Fatal("DeleteRow must refuse on a single-row table")
	}
}

func TestDeleteColumnFloor(t *testing.T) {
	h := newHarness(t, tableNode("t1", []string{"only"}, []string{"one"}))
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 0, 0))
	if DeleteColumn(h.s, h.dispatch) {
		t.Fatal("DeleteColumn must refuse on a single-column table")
	}
}

func TestInsertAndDeleteColumn(t *testing.T) {
	h := newHarness(t, tableNode("t1", []string{"a", "b"}, []string{"c", "d"}))
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 0, 0))
	if !InsertColumnAfter(h.s, h.dispatch) {
		t.Fatal("InsertColumnAfter did not apply")
	}
	tb, tbPos = findNode(h.s.Doc, doc.KindTable)
	if len(tb.Children[0].Children) != 3 || len(tb.Children[1].Children) != 3 {
		t.Fatalf("column insert: rows have %d/%d cells", len(tb.Children[0].Children), len(tb.Children[1].Children))
	}
	if got := cellText(tb, 0, 0); got != "a" {
		t.Fatalf("cell(0,0) = %q", got)
	}
	if got := cellText(tb, 0, 2); got != "b" {
		t.Fatalf("cell(0,2) = %q", got)
	}
	if tb.ID() != "t1" {
		t.Fatalf("table id = %q, want t1", tb.ID())
	}

	h.caret(caretInCell(tb, tbPos, 0, 1))
	if !DeleteColumn(h.s, h.dispatch) {
		t.Fatal("DeleteColumn did not apply")
	}
	tb, _ = findNode(h.s.Doc, doc.KindTable)
	if len(tb.Children[0].Children) != 2 {
		t.Fatalf("cells after delete = %d, want 2", len(tb.Children[0].Children))
	}
	if got := cellText(tb, 1, 1); got != "d" {
		t.Fatalf("cell(1,1) = %q, want %q", got, "d")
	}
}

func TestHeaderRowInference(t *testing.T) {
	header := doc.NewContainer(doc.KindTableRow, doc.Attrs{},
		doc.NewContainer(doc.KindTableHeader, doc.Attrs{}, para("", "h1")),
		doc.NewContainer(doc.KindTableHeader, doc.Attrs{}, para("", "h2")))
	body := doc.NewContainer(doc.KindTableRow, doc.Attrs{}, cellWith("x"), cellWith("y"))
	tb := doc.NewContainer(doc.KindTable, doc.Attrs{"id": "t1"}, header, body)
	h := newHarness(t, tb)

	tbn, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tbn, tbPos, 1, 0))
	if !InsertColumnBefore(h.s, h.dispatch) {
		t.Fatal("InsertColumnBefore did not apply")
	}
	tbn, _ = findNode(h.s.Doc, doc.KindTable)
	if got := tbn.Children[0].Children[0].Kind; got != doc.KindTableHeader {
		t.Fatalf("header row grew %v, want tableHeader", got)
	}
	if got := tbn.Children[1].Children[0].Kind; got != doc.KindTableCell {
		t.Fatalf("body row grew %v, want tableCell", got)
	}
}

func TestNextCellAppendsRowAtEnd(t *testing.T) {
	h := newHarness(t, tableNode("t1", []string{"a", "b"}, []string{"c", "d"}))
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 1, 1))
	if !NextCell(h.s, h.dispatch) {
		t.Fatal("NextCell did not apply")
	}
	tb, tbPos = findNode(h.s.Doc, doc.KindTable)
	if len(tb.Children) != 3 {
		t.Fatalf("rows = %d, want 3", len(tb.Children))
	}
	if len(tb.Children[2].Children) != 2 {
		t.Fatalf("new row cells = %d, want 2", len(tb.Children[2].Children))
	}
	if want := caretInCell(tb, tbPos, 2, 0); h.s.Sel.Anchor != want {
		t.Fatalf("caret = %d, want %d (first cell of new row)", h.s.Sel.Anchor, want)
	}
}

func TestPrevCellAtStartIsNoop(t *testing.T) {
	h := newHarness(t, tableNode("t1", []string{"a", "b"}))
	tb, tbPos := findNode(h.s.Doc, doc.KindTable)
	h.caret(caretInCell(tb, tbPos, 0, 0))
	if PrevCell(h.s, h.dispatch) {
		t.Fatal("PrevCell at first cell must not apply")
	}
}

func TestWrapParagraphInBulletList(t *testing.T) {
	h := newHarness(t, para("p1", "Item"))
	h.caret(1)
	if !WrapInList(doc.KindBulletList)(h.s, h.dispatch) {
		t.Fatal("WrapInList did not apply")
	}
	list := h.s.Doc.Children[0]
	if list.Kind != doc.KindBulletList {
		t.Fatalf("kind = %v, want bulletList", list.Kind)
	}
	// The id transfers to the list node itself.
	if list.ID() != "p1" {
		t.Fatalf("list id = %q, want p1", list.ID())
	}
	if len(list.Children) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Children))
	}
	if got := list.Children[0].Children[0].Text(); got != "Item" {
		t.Fatalf("item text = %q, want %q", got, "Item")
	}
}

func TestUnwrapListKeepsFirstParagraphOnly(t *testing.T) {
	item1 := doc.NewContainer(doc.KindListItem, doc.Attrs{}, para("", "first"), para("", "extra"))
	item2 := doc.NewContainer(doc.KindListItem, doc.Attrs{}, para("", "second"))
	list := doc.NewContainer(doc.KindBulletList, doc.Attrs{"id": "l1"}, item1, item2)
	h := newHarness(t, list)
	h.caret(3)
	if !UnwrapList(doc.KindParagraph)(h.s, h.dispatch) {
		t.Fatal("UnwrapList did not apply")
	}
	got := h.s.Doc.Children[0]
	if got.Kind != doc.KindParagraph || got.Text() != "first" {
		t.Fatalf("unwrapped = %v %q", got.Kind, got.Text())
	}
	if got.ID() != "l1" {
		t.Fatalf("id = %q, want l1", got.ID())
	}
}

func TestSetBlockTypeHeading(t *testing.T) {
	h := newHarness(t, para("p1", "Title"))
	h.caret(1)
	if !SetBlockType(doc.KindHeading, doc.Attrs{"level": 2})(h.s, h.dispatch) {
		t.Fatal("SetBlockType did not apply")
	}
	got := h.s.Doc.Children[0]
	if got.Kind != doc.KindHeading || got.Attrs.Int("level") != 2 {
		t.Fatalf("got %v level=%d", got.Kind, got.Attrs.Int("level"))
	}
	if got.ID() != "p1" || got.Text() != "Title" {
		t.Fatalf("id=%q text=%q", got.ID(), got.Text())
	}
}

func TestConvertToCodeBlockStripsMarks(t *testing.T) {
	p := doc.NewTextNode(doc.KindParagraph, doc.Attrs{"id": "p1"},
		doc.Span{Text: "bold", Marks: []doc.Mark{{Type: doc.MarkBold}}},
		doc.Span{Text: " plain"})
	h := newHarness(t, p)
	h.caret(1)
	if !SetBlockType(doc.KindCodeBlock, nil)(h.s, h.dispatch) {
		t.Fatal("SetBlockType did not apply")
	}
	got := h.s.Doc.Children[0]
	if got.Kind != doc.KindCodeBlock {
		t.Fatalf("kind = %v", got.Kind)
	}
	if len(got.Spans) != 1 || got.Spans[0].Text != "bold plain" || len(got.Spans[0].Marks) != 0 {
		t.Fatalf("spans = %+v", got.Spans)
	}
}

func TestColumnLayoutCollapse(t *testing.T) {
	h := newHarness(t, para("p1", "left"))
	h.caret(1)
	if !InsertColumnLayout(2)(h.s, h.dispatch) {
		t.Fatal("InsertColumnLayout did not apply")
	}
	layout := h.s.Doc.Children[0]
	if layout.Kind != doc.KindColumnList || layout.ID() != "p1" {
		t.Fatalf("layout = %v id=%q", layout.Kind, layout.ID())
	}
	if len(layout.Children) != 2 {
		t.Fatalf("columns = %d, want 2", len(layout.Children))
	}

	// Add text to the second column so the hoist is observable, then
	// remove the first column: the layout collapses and the second
	// column's children become top-level siblings.
	_, layoutPos := findNode(h.s.Doc, doc.KindColumnList)
	secondColStart := layoutPos + 1 + layout.Children[0].Size()
	h.caret(secondColStart + 2)
	h.dispatch(doc.NewTransaction().InsertText(h.s.Sel.Anchor, "right"))

	_, layoutPos = findNode(h.s.Doc, doc.KindColumnList)
	h.caret(layoutPos + 3) // inside first column's paragraph
	if !RemoveColumn(h.s, h.dispatch) {
		t.Fatal("RemoveColumn did not apply")
	}
	if n, _ := findNode(h.s.Doc, doc.KindColumnList); n != nil {
		t.Fatal("layout should have collapsed")
	}
	if got := h.s.Doc.Children[0].Text(); got != "right" {
		t.Fatalf("hoisted text = %q, want %q", got, "right")
	}
}

func TestColumnWidthConservation(t *testing.T) {
	h := newHarness(t, para("p1", "x"))
	h.caret(1)
	if !InsertColumnLayout(3)(h.s, h.dispatch) {
		t.Fatal("InsertColumnLayout did not apply")
	}
	sumWidths := func() float64 {
		layout, _ := findNode(h.s.Doc, doc.KindColumnList)
		sum := 0.0
		for _, c := range layout.Children {
			sum += c.Attrs.Float("width")
		}
		return sum
	}
	if got := sumWidths(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("widths after insert sum to %v", got)
	}

	_, layoutPos := findNode(h.s.Doc, doc.KindColumnList)
	h.caret(layoutPos + 3)
	if !AddColumn(h.s, h.dispatch) {
		t.Fatal("AddColumn did not apply")
	}
	if got := sumWidths(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("widths after add sum to %v", got)
	}

	_, layoutPos = findNode(h.s.Doc, doc.KindColumnList)
	h.caret(layoutPos + 3)
	if !RemoveColumn(h.s, h.dispatch) {
		t.Fatal("RemoveColumn did not apply")
	}
	if got := sumWidths(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("widths after remove sum to %v", got)
	}
}

func TestRedistributeExplicitWidths(t *testing.T) {
	h := newHarness(t, para("p1", "x"))
	h.caret(1)
	if !InsertColumnLayout(2)(h.s, h.dispatch) {
		t.Fatal("InsertColumnLayout did not apply")
	}
	_, layoutPos := findNode(h.s.Doc, doc.KindColumnList)
	h.caret(layoutPos + 3)
	if !RedistributeWidths([]float64{70, 30})(h.s, h.dispatch) {
		t.Fatal("RedistributeWidths did not apply")
	}
	layout, _ := findNode(h.s.Doc, doc.KindColumnList)
	if w := layout.Children[0].Attrs.Float("width"); w != 70 {
		t.Fatalf("width[0] = %v, want 70", w)
	}
	if w := layout.Children[1].Attrs.Float("width"); w != 30 {
		t.Fatalf("width[1] = %v, want 30", w)
	}
}

func TestToggleMarkAddThenRemove(t *testing.T) {
	h := newHarness(t, para("p1", "hello"))
	h.s.Sel = doc.Range(1, 6)
	if !ToggleMark(doc.MarkBold, nil)(h.s, h.dispatch) {
		t.Fatal("ToggleMark did not apply")
	}
	sp := h.s.Doc.Children[0].Spans
	if len(sp) != 1 || !doc.HasMark(sp[0].Marks, doc.MarkBold) {
		t.Fatalf("spans after add = %+v", sp)
	}
	if h.s.Sel.From() != 1 || h.s.Sel.To() != 6 {
		t.Fatalf("selection lost: %+v", h.s.Sel)
	}

	if !ToggleMark(doc.MarkBold, nil)(h.s, h.dispatch) {
		t.Fatal("ToggleMark (remove) did not apply")
	}
	sp = h.s.Doc.Children[0].Spans
	if len(sp) != 1 || doc.HasMark(sp[0].Marks, doc.MarkBold) {
		t.Fatalf("spans after remove = %+v", sp)
	}
}

func TestToggleMarkNotApplicableOnCaret(t *testing.T) {
	h := newHarness(t, para("p1", "hello"))
	h.caret(2)
	if ToggleMark(doc.MarkBold, nil)(h.s, nil) {
		t.Fatal("ToggleMark must not apply to an empty selection")
	}
}

func TestMoveBlockDownward(t *testing.T) {
	h := newHarness(t, para("a", "one"), para("b", "two"), para("c", "three"))
	first := h.s.Doc.Children[0]
	// Move block "a" below block "b".
	to := first.Size() + h.s.Doc.Children[1].Size()
	if !MoveBlock(0, to)(h.s, h.dispatch) {
		t.Fatal("MoveBlock did not apply")
	}
	ids := []string{h.s.Doc.Children[0].ID(), h.s.Doc.Children[1].ID(), h.s.Doc.Children[2].ID()}
	if ids[0] != "b" || ids[1] != "a" || ids[2] != "c" {
		t.Fatalf("order = %v", ids)
	}
}

func TestMoveBlockOntoItselfIsNoop(t *testing.T) {
	h := newHarness(t, para("a", "one"), para("b", "two"))
	if MoveBlock(0, 3)(h.s, nil) {
		t.Fatal("move inside own span must not apply")
	}
}

func TestExitEmptySingleItemList(t *testing.T) {
	item := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": false}, para("", ""))
	list := doc.NewContainer(doc.KindCheckList, doc.Attrs{"id": "l1"}, item)
	h := newHarness(t, list)
	h.caret(3)
	if !ExitEmptyItem(h.s, h.dispatch) {
		t.Fatal("ExitEmptyItem did not apply")
	}
	got := h.s.Doc.Children[0]
	if got.Kind != doc.KindParagraph || got.ID() != "l1" {
		t.Fatalf("got %v id=%q", got.Kind, got.ID())
	}
}

func TestExitEmptyItemInMultiItemList(t *testing.T) {
	item1 := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": true}, para("", "done"))
	item2 := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": false}, para("", ""))
	list := doc.NewContainer(doc.KindCheckList, doc.Attrs{"id": "l1"}, item1, item2)
	h := newHarness(t, list)
	// Caret inside the empty second item.
	h.caret(1 + item1.Size() + 2)
	if !ExitEmptyItem(h.s, h.dispatch) {
		t.Fatal("ExitEmptyItem did not apply")
	}
	if len(h.s.Doc.Children) != 2 {
		t.Fatalf("top-level blocks = %d, want 2", len(h.s.Doc.Children))
	}
	gotList := h.s.Doc.Children[0]
	if gotList.Kind != doc.KindCheckList || len(gotList.Children) != 1 {
		t.Fatalf("list = %v items=%d", gotList.Kind, len(gotList.Children))
	}
	if h.s.Doc.Children[1].Kind != doc.KindParagraph {
		t.Fatalf("follower = %v, want paragraph", h.s.Doc.Children[1].Kind)
	}
}

func TestToggleChecked(t *testing.T) {
	item := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": false}, para("", "task"))
	list := doc.NewContainer(doc.KindCheckList, doc.Attrs{"id": "l1"}, item)
	h := newHarness(t, list)
	h.caret(3)
	if !ToggleChecked(h.s, h.dispatch) {
		t.Fatal("ToggleChecked did not apply")
	}
	if !h.s.Doc.Children[0].Children[0].Attrs.Bool("checked") {
		t.Fatal("checked should be true")
	}
}

func TestCommandsReportApplicabilityWithoutDispatch(t *testing.T) {
	h := newHarness(t, para("p1", "text"))
	h.caret(1)
	if DeleteRow(h.s, nil) {
		t.Fatal("DeleteRow outside a table must report false")
	}
	if !SetBlockType(doc.KindHeading, doc.Attrs{"level": 1})(h.s, nil) {
		t.Fatal("SetBlockType probe should report true")
	}
	// Probing must not mutate state.
	if h.s.Doc.Children[0].Kind != doc.KindParagraph {
		t.Fatal("probe mutated the document")
	}
}
