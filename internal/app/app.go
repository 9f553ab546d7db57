// Package app is the terminal runtime: it owns the tcell screen, feeds
// input into the editor core, and keeps the view, the highlight engine
// and the popup measurements in step with each snapshot.
package app

import (
	"os"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/bedit/internal/blocks"
	"github.com/kobzarvs/bedit/internal/config"
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/editor"
	"github.com/kobzarvs/bedit/internal/highlight"
	"github.com/kobzarvs/bedit/internal/logger"
)

// App is the top-level runtime for bedit.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	if err := logger.Init(os.Getenv("BEDIT_DEBUG") != ""); err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, using defaults", "err", err)
	}

	var d *doc.Document
	var openPath string
	if len(a.args) > 0 {
		openPath = a.args[0]
		f, err := os.Open(openPath)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		if err == nil {
			bs, err := blocks.ParseJSON(f)
			f.Close()
			if err != nil {
				return err
			}
			d = blocks.ToDocument(bs)
		}
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	scr.EnableMouse()
	defer scr.Fini()

	hl := highlight.New()
	if err := hl.Start(); err != nil {
		return err
	}
	defer func() { _ = hl.Stop() }()

	ed := editor.New(d, cfg.Editor)
	v := newView(cfg.Theme, cfg.Editor)

	s := &session{
		scr:      scr,
		cfg:      cfg,
		ed:       ed,
		view:     v,
		hl:       hl,
		openPath: openPath,
	}
	ed.On(editor.EventChange, func(st *doc.State) {
		v.Layout(st.Doc)
		hl.Refresh(st.Doc)
		s.dirty = true
	})
	ed.On(editor.EventSelectionChange, func(st *doc.State) { s.dirty = true })
	ed.Focus()

	v.Layout(ed.State().Doc)
	hl.Refresh(ed.State().Doc)

	// Highlight results and popup measurements land between input events;
	// a coarse tick wakes the loop so they get painted without input.
	stopTick := make(chan struct{})
	defer close(stopTick)
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTick:
				return
			case <-ticker.C:
				_ = scr.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	s.render()
	for {
		ev := scr.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if s.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			s.handleMouse(ev)
		case *tcell.EventResize:
			scr.Sync()
			v.Layout(ed.State().Doc)
			s.dirty = true
		case *tcell.EventInterrupt:
			s.drainHighlights()
		}
		s.render()
	}
}

// session bundles the mutable pieces of one running editor window.
type session struct {
	scr      tcell.Screen
	cfg      config.Config
	ed       *editor.Editor
	view     *view
	hl       *highlight.Engine
	openPath string

	slashSel int
	dirty    bool
}

func (s *session) drainHighlights() {
	for {
		select {
		case <-s.hl.Events():
			s.dirty = true
		default:
			return
		}
	}
}

func (s *session) render() {
	st := s.ed.State()
	_, height := s.scr.Size()
	s.view.ScrollTo(st.Sel.From(), height)
	s.view.Paint(s.hl.Decorations(st.Doc))
	s.view.Draw(s.scr, st, s.ed.Multi.State().Blocks)
	s.drawMenus()
	s.scr.Show()
	// Popup anchors can only be measured against the rows just drawn.
	s.ed.Measure(s.view)
	s.dirty = false
}

func (s *session) save() {
	if s.openPath == "" {
		return
	}
	f, err := os.Create(s.openPath)
	if err != nil {
		logger.Error("save failed", "path", s.openPath, "err", err)
		return
	}
	defer f.Close()
	if err := blocks.WriteJSON(f, blocks.FromDocument(s.ed.State().Doc)); err != nil {
		logger.Error("serialize failed", "err", err)
	}
}
