// Package plugins holds the interaction state machines layered over the
// document core. Each machine owns a small value-type state, observes
// every applied transaction, and may answer with a follow-up transaction.
// Machines never mutate the document directly; edits always travel as
// transactions through the editor dispatch loop.
package plugins

import (
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// Machine is the shared observation surface. Apply runs after the
// transaction produced the new snapshot; the returned transaction, if any,
// is dispatched before observers see the state.
type Machine interface {
	Name() string
	Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction
}

// Measurable is implemented by machines that anchor a popup to a tree
// position. The editor asks for the target after each dispatch and feeds
// coordinates back once layout settled.
type Measurable interface {
	MeasureTarget() (pos int, ok bool)
	SetCoords(pos int, r render.Rect)
}

// topBlockAt returns the top-level block whose open token sits at pos.
func topBlockAt(d *doc.Document, pos int) (*doc.Node, bool) {
	at := 0
	for _, c := range d.Children {
		if at == pos {
			return c, true
		}
		at += c.Size()
	}
	return nil, false
}

// innerTextBlock resolves pos to the text block directly containing it.
func innerTextBlock(d *doc.Document, pos int) (node *doc.Node, contentStart int, ok bool) {
	rp, err := d.Resolve(pos)
	if err != nil || len(rp.Path) == 0 {
		return nil, 0, false
	}
	last := rp.Path[len(rp.Path)-1]
	if !last.Node.Kind.IsText() {
		return nil, 0, false
	}
	return last.Node, last.Start, true
}
