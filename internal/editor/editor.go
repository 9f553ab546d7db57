// Package editor is the dispatch core: it owns the current snapshot,
// routes every transaction through the interaction state machines and the
// identity maintainer, and notifies observers once the dust settles.
package editor

import (
	"fmt"

	"github.com/kobzarvs/bedit/internal/commands"
	"github.com/kobzarvs/bedit/internal/config"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/editor/plugins"
	"github.com/kobzarvs/bedit/internal/logger"
	"github.com/kobzarvs/bedit/internal/render"
)

// Event names the observer channels.
type Event string

const (
	EventChange          Event = "change"
	EventSelectionChange Event = "selectionChange"
	EventTransaction     Event = "transaction"
	EventFocus           Event = "focus"
	EventBlur            Event = "blur"
)

// Handler receives the snapshot current at notification time. For
// EventTransaction that is the snapshot the transaction produced, after
// any follow-up transactions were folded in.
type Handler func(s *doc.State)

// maxFollowUps bounds the follow-up chain per dispatch. Machines that keep
// answering each other's transactions indicate a bug, not real work.
const maxFollowUps = 16

// Editor holds one document, its interaction machines and the observer
// registry. It is not safe for concurrent use; the host serializes all
// calls, the same way the screen event loop serializes input.
type Editor struct {
	state *doc.State

	Slash     *plugins.SlashMenu
	Bubble    *plugins.BubbleMenu
	Drag      *plugins.DragReorder
	Multi     *plugins.MultiSelect
	Checklist *plugins.Checklist
	Media     *plugins.MediaMenu

	machines []plugins.Machine
	handlers map[Event][]Handler
	focused  bool

	dispatching bool
}

// New builds an editor over d. A nil document starts with one empty
// paragraph so there is always a caret target. Missing block ids are
// filled in immediately, before any observer can see the document.
func New(d *doc.Document, opts config.EditorOptions) *Editor {
	if d == nil || len(d.Children) == 0 {
		d = &doc.Document{Children: []*doc.Node{doc.NewParagraph("")}}
	}
	e := &Editor{
		state:     &doc.State{Doc: d, Sel: doc.Caret(1).Clamp(d)},
		Slash:     plugins.NewSlashMenu(opts.SlashRune()),
		Bubble:    plugins.NewBubbleMenu(),
		Drag:      plugins.NewDragReorder(),
		Multi:     plugins.NewMultiSelect(),
		Checklist: plugins.NewChecklist(),
		Media:     plugins.NewMediaMenu(),
		handlers:  map[Event][]Handler{},
	}
	e.machines = []plugins.Machine{e.Slash, e.Bubble, e.Drag, e.Multi, e.Checklist, e.Media}
	if tr := missingIDs(d); tr != nil {
		if err := e.Dispatch(tr); err != nil {
			logger.Error("initial id fill rejected", "err", err)
		}
	}
	return e
}

// State is the current snapshot.
func (e *Editor) State() *doc.State { return e.state }

// On registers an observer.
func (e *Editor) On(ev Event, h Handler) {
	e.handlers[ev] = append(e.handlers[ev], h)
}

func (e *Editor) emit(ev Event) {
	for _, h := range e.handlers[ev] {
		h(e.state)
	}
}

// Dispatch applies tr and every follow-up transaction the machines and the
// identity maintainer produce, then fires observers once against the final
// snapshot. A rejected initial transaction leaves the state untouched and
// returns the reason; rejected follow-ups are logged and skipped, the
// initial edit stands.
func (e *Editor) Dispatch(tr *doc.Transaction) error {
	if e.dispatching {
		return fmt.Errorf("dispatch re-entered from an observer")
	}
	e.dispatching = true
	defer func() { e.dispatching = false }()

	before := e.state
	pending := []*doc.Transaction{tr}
	docChanged := false
	for i := 0; len(pending) > 0; i++ {
		if i >= maxFollowUps {
			logger.Error("follow-up transaction chain truncated", "len", i)
			break
		}
		t := pending[0]
		pending = pending[1:]
		next, err := t.Apply(e.state)
		if err != nil {
			if i == 0 {
				return err
			}
			logger.Warn("follow-up transaction rejected", "err", err)
			continue
		}
		old := e.state
		e.state = next
		docChanged = docChanged || t.DocChanged()
		for _, m := range e.machines {
			if fu := m.Apply(t, old, next); fu != nil {
				pending = append(pending, fu)
			}
		}
		if t.DocChanged() {
			if fu := missingIDs(next.Doc); fu != nil {
				pending = append(pending, fu)
			}
		}
	}

	e.emit(EventTransaction)
	if docChanged {
		e.emit(EventChange)
	}
	if e.state.Sel != before.Sel {
		e.emit(EventSelectionChange)
	}
	return nil
}

// Exec runs a command against the current snapshot, dispatching whatever
// it produces. Returns false when the command does not apply here.
func (e *Editor) Exec(cmd commands.Command) bool {
	return cmd(e.state, func(t *doc.Transaction) {
		if err := e.Dispatch(t); err != nil {
			logger.Warn("command transaction rejected", "err", err)
		}
	})
}

// ExecuteSlashItem consumes the trigger and query text, then runs the
// chosen command against the resulting state.
func (e *Editor) ExecuteSlashItem(cmd commands.Command) bool {
	consume, ok := e.Slash.Consume()
	if !ok {
		return false
	}
	if err := e.Dispatch(consume); err != nil {
		logger.Warn("slash consume rejected", "err", err)
		return false
	}
	return e.Exec(cmd)
}

// Signal delivers an out-of-band instruction to one machine without
// editing the document.
func (e *Editor) Signal(machine string, ins any) error {
	return e.Dispatch(doc.NewTransaction().SetMeta(machine, ins))
}

// Focus and Blur track whether the editor owns keyboard input.
func (e *Editor) Focus() {
	if !e.focused {
		e.focused = true
		e.emit(EventFocus)
	}
}

func (e *Editor) Blur() {
	if e.focused {
		e.focused = false
		e.emit(EventBlur)
	}
}

func (e *Editor) Focused() bool { return e.focused }

// Measure collects the popup anchors the machines are waiting on and
// resolves them against m. Called after every render; calls with nothing
// pending are cheap no-ops, late results for stale anchors are dropped by
// the machines themselves.
func (e *Editor) Measure(m render.Measurer) {
	for _, mc := range e.machines {
		target, ok := mc.(plugins.Measurable)
		if !ok {
			continue
		}
		pos, want := target.MeasureTarget()
		if !want {
			continue
		}
		if r, found := m.CoordsAt(pos); found {
			target.SetCoords(pos, r)
		}
	}
}
