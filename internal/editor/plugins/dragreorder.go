package plugins

import (
	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/doc"
)

// DragState tracks a block drag in flight. Positions are open tokens of
// top-level blocks; -1 means idle or no drop indicator.
type DragState struct {
	DraggingPos int
	DropTarget  int
}

// DragInstruction drives the machine from the pointer layer. Hover carries
// the hovered block's measured vertical extent so the midpoint test can
// pick the nearest sibling boundary.
type DragInstruction struct {
	Action      string // "start", "hover", "drop", "cancel"
	Pos         int
	Y           int
	Top, Bottom int
}

type DragReorder struct {
	st DragState
}

func NewDragReorder() *DragReorder { return &DragReorder{st: DragState{DraggingPos: -1, DropTarget: -1}} }

func (m *DragReorder) Name() string     { return "dragreorder" }
func (m *DragReorder) State() DragState { return m.st }

func (m *DragReorder) Apply(tx *doc.Transaction, old, new *doc.State) *doc.Transaction {
	if ins, ok := tx.Meta(m.Name()).(DragInstruction); ok {
		return m.instruct(ins, new)
	}
	if m.st.DraggingPos < 0 || !tx.DocChanged() {
		return nil
	}
	// A concurrent edit moves the grip with the block, or cancels the drag
	// when the block itself went away.
	mp := tx.Mapping()
	if mp.Deleted(m.st.DraggingPos + 1) {
		m.reset()
		return nil
	}
	m.st.DraggingPos = mp.Map(m.st.DraggingPos, -1)
	if m.st.DropTarget >= 0 {
		m.st.DropTarget = mp.Map(m.st.DropTarget, -1)
	}
	return nil
}

func (m *DragReorder) instruct(ins DragInstruction, s *doc.State) *doc.Transaction {
	switch ins.Action {
	case "start":
		if _, ok := topBlockAt(s.Doc, ins.Pos); !ok {
			return nil
		}
		m.st = DragState{DraggingPos: ins.Pos, DropTarget: -1}
	case "hover":
		if m.st.DraggingPos < 0 {
			return nil
		}
		m.st.DropTarget = m.boundaryFor(ins, s)
	case "drop":
		defer m.reset()
		if m.st.DraggingPos < 0 || m.st.DropTarget < 0 {
			return nil
		}
		var fu *doc.Transaction
		commands.MoveBlock(m.st.DraggingPos, m.st.DropTarget)(s, func(t *doc.Transaction) { fu = t })
		return fu
	case "cancel":
		m.reset()
	}
	return nil
}

// boundaryFor picks the sibling boundary nearest the pointer: above the
// hovered block's vertical midpoint targets the boundary before it, below
// targets the one after. A boundary touching the dragged block's own span
// is a no-op move and yields no indicator.
func (m *DragReorder) boundaryFor(ins DragInstruction, s *doc.State) int {
	n, ok := topBlockAt(s.Doc, ins.Pos)
	if !ok {
		return -1
	}
	boundary := ins.Pos
	if ins.Y >= (ins.Top+ins.Bottom)/2 {
		boundary = ins.Pos + n.Size()
	}
	dragged, ok := topBlockAt(s.Doc, m.st.DraggingPos)
	if ok && boundary >= m.st.DraggingPos && boundary <= m.st.DraggingPos+dragged.Size() {
		return -1
	}
	return boundary
}

func (m *DragReorder) reset() { m.st = DragState{DraggingPos: -1, DropTarget: -1} }
