package plugins

import (
	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/doc"
)

// ChecklistInstruction carries check-item interactions that do not go
// through the caret: a checkbox click names the item by position, the
// Enter-in-empty-item escape uses the current selection.
type ChecklistInstruction struct {
	Action string // "toggle", "exit"
	Pos    int    // toggle: the check item's open token
}

// Checklist turns check-item gestures into document edits. It holds no
// state of its own; both interactions are pure transaction producers.
type Checklist struct{}

func NewChecklist() *Checklist { return &Checklist{} }

func (m *Checklist) Name() string { return "checklist" }

func (m *Checklist) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	ins, ok := tx.Meta(m.Name()).(ChecklistInstruction)
	if !ok {
		return nil
	}
	switch ins.Action {
	case "toggle":
		n := new.Doc.NodeAt(ins.Pos)
		if n == nil || n.Kind != doc.KindCheckItem {
			return nil
		}
		return doc.NewTransaction().SetAttrs(ins.Pos, doc.Attrs{
			"checked": !n.Attrs.Bool("checked"),
		})
	case "exit":
		var fu *doc.Transaction
		commands.ExitEmptyItem(new, func(t *doc.Transaction) { fu = t })
		return fu
	}
	return nil
}
