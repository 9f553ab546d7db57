package app

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/bedit/internal/config"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

func testView() *view {
	cfg := config.Default()
	return newView(cfg.Theme, cfg.Editor)
}

func TestCoordsRoundTrip(t *testing.T) {
	v := testView()
	d := &doc.Document{Children: []*doc.Node{
		doc.NewParagraph("hello"),
		doc.NewParagraph("world"),
	}}
	v.Layout(d)

	// "world" content starts at position 8 (second block opens at 7).
	r, ok := v.CoordsAt(8)
	if !ok {
		t.Fatal("no coords for position 8")
	}
	if r.Y != 1 || r.X != 0 {
		t.Fatalf("coords = %+v, want row 1 col 0", r)
	}
	pos, ok := v.PosAt(r.X, r.Y)
	if !ok || pos != 8 {
		t.Fatalf("PosAt(%d,%d) = %d %v, want 8", r.X, r.Y, pos, ok)
	}
}

func TestCoordsAtBlockBoundaryFallsBackToBlockRow(t *testing.T) {
	v := testView()
	d := &doc.Document{Children: []*doc.Node{doc.NewParagraph("hi")}}
	v.Layout(d)
	// Position 0 is the block's open token; it has no cell of its own.
	r, ok := v.CoordsAt(0)
	if !ok || r.Y != 0 {
		t.Fatalf("boundary coords = %+v %v", r, ok)
	}
}

func TestCodeBlockLinesSplitRows(t *testing.T) {
	v := testView()
	code := &doc.Node{Kind: doc.KindCodeBlock, Attrs: doc.Attrs{},
		Spans: []doc.Span{{Text: "a\nb"}}}
	d := &doc.Document{Children: []*doc.Node{code}}
	v.Layout(d)
	if len(v.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(v.rows))
	}
	// "b" sits at position 3 on the second row.
	r, ok := v.CoordsAt(3)
	if !ok || r.Y != 1 {
		t.Fatalf("coords for second line = %+v %v", r, ok)
	}
}

func TestListMarkersAndCheckedStrike(t *testing.T) {
	v := testView()
	item := doc.NewContainer(doc.KindCheckItem, doc.Attrs{"checked": true}, doc.NewParagraph("done"))
	list := doc.NewContainer(doc.KindCheckList, doc.Attrs{}, item)
	v.Layout(&doc.Document{Children: []*doc.Node{list}})
	if len(v.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(v.rows))
	}
	var prefix []rune
	for _, c := range v.rows[0] {
		if c.pos >= 0 {
			break
		}
		prefix = append(prefix, c.r)
	}
	if string(prefix) != "[x] " {
		t.Fatalf("marker = %q, want %q", string(prefix), "[x] ")
	}
}

func TestDrawToSimulationScreen(t *testing.T) {
	scr := tcell.NewSimulationScreen("UTF-8")
	if err := scr.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer scr.Fini()
	scr.SetSize(40, 10)

	v := testView()
	d := &doc.Document{Children: []*doc.Node{doc.NewParagraph("hello")}}
	v.Layout(d)
	st := &doc.State{Doc: d, Sel: doc.Caret(1)}
	v.Draw(scr, st, nil)
	scr.Show()

	cells, w, _ := scr.GetContents()
	got := make([]rune, 5)
	for i := 0; i < 5; i++ {
		got[i] = cells[0*w+i].Runes[0]
	}
	if string(got) != "hello" {
		t.Fatalf("screen row = %q, want %q", string(got), "hello")
	}
}

func TestDecorationsRestyleCells(t *testing.T) {
	v := testView()
	code := &doc.Node{Kind: doc.KindCodeBlock, Attrs: doc.Attrs{},
		Spans: []doc.Span{{Text: "func"}}}
	v.Layout(&doc.Document{Children: []*doc.Node{code}})
	v.Paint([]render.Decoration{{Kind: render.DecoHighlight, From: 1, To: 5, Attr: "keyword"}})

	base := v.baseStyle()
	styled := v.decoStyle(1, base)
	if styled == base {
		t.Fatal("keyword decoration did not change the style")
	}
	if v.decoStyle(5, base) != base {
		t.Fatal("decoration leaked past its range")
	}
}
