package editor

import (
	"github.com/kobzarvs/bedit/internal/blocks"
	"github.com/kobzarvs/bedit/internal/doc"
)

// missingIDs scans for block-eligible nodes without an id and returns a
// transaction assigning fresh ones, or nil when every id is in place.
// SetAttrs steps leave positions untouched, so all of them can address the
// same snapshot.
func missingIDs(d *doc.Document) *doc.Transaction {
	var tr *doc.Transaction
	d.Walk(func(n *doc.Node, pos int) bool {
		if !n.Kind.BlockEligible() || n.ID() != "" {
			return true
		}
		if tr == nil {
			tr = doc.NewTransaction()
		}
		tr.SetAttrs(pos, doc.Attrs{"id": blocks.NewID()})
		return true
	})
	return tr
}
