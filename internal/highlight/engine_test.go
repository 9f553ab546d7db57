package highlight

import (
	"testing"
	"time"

	"github.com/kobzarvs/bedit/internal/doc"
)

func codeDoc(id, lang, text string) *doc.Document {
	n := &doc.Node{Kind: doc.KindCodeBlock, Attrs: doc.Attrs{"id": id, "language": lang}}
	if text != "" {
		n.Spans = []doc.Span{{Text: text}}
	}
	return &doc.Document{Children: []*doc.Node{n}}
}

func TestSubmitEmitsEvent(t *testing.T) {
	e := New()
	if err := e.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer e.Stop()

	e.Submit("b1", "go", "package main\nfunc main(){}\n")
	select {
	case ev := <-e.Events():
		if ev.BlockID != "b1" {
			t.Fatalf("event block = %q, want %q", ev.BlockID, "b1")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for parse event")
	}
}

func TestDecorationsStayInsideBlock(t *testing.T) {
	e := New()
	if err := e.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer e.Stop()

	src := "package main\nfunc main(){}\n"
	d := codeDoc("b1", "go", src)
	e.ParseSync("b1", "go", src)

	decos := e.Decorations(d)
	if len(decos) == 0 {
		t.Fatal("no decorations for go source")
	}
	// Block content spans [1, 1+len).
	end := 1 + len([]rune(src))
	for _, dec := range decos {
		if dec.From < 1 || dec.To > end || dec.From >= dec.To {
			t.Fatalf("decoration out of range: %+v (content end %d)", dec, end)
		}
	}
}

func TestStaleResultDroppedUntilReparse(t *testing.T) {
	e := New()
	if err := e.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer e.Stop()

	e.ParseSync("b1", "go", "package main\n")
	edited := codeDoc("b1", "go", "package main\nvar x = 1\n")
	if decos := e.Decorations(edited); len(decos) != 0 {
		t.Fatalf("stale result produced %d decorations", len(decos))
	}

	// Refresh notices the mismatch and queues a reparse.
	e.Refresh(edited)
	select {
	case <-e.Events():
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for reparse")
	}
	if decos := e.Decorations(edited); len(decos) == 0 {
		t.Fatal("no decorations after reparse")
	}
}
