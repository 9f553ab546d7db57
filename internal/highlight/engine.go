// Package highlight produces syntax decorations for code blocks. Parsing
// runs on a background goroutine; results are cached per block id and
// re-projected into document positions on demand, so a parse that arrives
// after further edits simply misses the cache and is re-requested.
package highlight

import (
	"context"
	"math"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/render"
)

// Event signals that a block's highlight result changed and the view
// should repaint.
type Event struct {
	BlockID string
}

// span is one highlighted byte-column range on one line of a block's text.
type span struct {
	row      int
	startCol int
	endCol   int
	kind     string
}

type result struct {
	text  string
	spans []span
}

type request struct {
	blockID  string
	language string
	text     string
}

// Engine parses code-block contents with tree-sitter grammars and keeps
// the latest result per block. Safe for one submitter and one reader.
type Engine struct {
	parsers map[string]*sitter.Parser
	queries map[string]*sitter.Query
	reqCh   chan request
	events  chan Event
	stopCh  chan struct{}

	mu      sync.RWMutex
	results map[string]result
}

func New() *Engine {
	return &Engine{
		parsers: make(map[string]*sitter.Parser),
		queries: make(map[string]*sitter.Query),
		reqCh:   make(chan request, 8),
		events:  make(chan Event, 16),
		stopCh:  make(chan struct{}),
		results: make(map[string]result),
	}
}

func (e *Engine) Start() error {
	languages := []struct {
		name  string
		lang  *sitter.Language
		query string
	}{
		{"go", golang.GetLanguage(), goHighlightQuery},
		{"markdown", tree_sitter_markdown.GetLanguage(), markdownHighlightQuery},
		{"yaml", yaml.GetLanguage(), yamlHighlightQuery},
		{"toml", toml.GetLanguage(), tomlHighlightQuery},
		{"bash", bash.GetLanguage(), bashHighlightQuery},
	}
	for _, l := range languages {
		p := sitter.NewParser()
		p.SetLanguage(l.lang)
		e.parsers[l.name] = p

		query, err := sitter.NewQuery([]byte(l.query), l.lang)
		if err != nil {
			continue
		}
		e.queries[l.name] = query
	}
	go e.loop()
	return nil
}

func (e *Engine) Stop() error {
	select {
	case <-e.stopCh:
		return nil
	default:
		close(e.stopCh)
		return nil
	}
}

func (e *Engine) Events() <-chan Event { return e.events }

// Submit queues a block for parsing. A full request channel drops the
// request; the next Refresh re-submits anything still stale.
func (e *Engine) Submit(blockID, language, text string) {
	select {
	case e.reqCh <- request{blockID: blockID, language: normalizeLang(language), text: text}:
	default:
	}
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.stopCh:
			return
		case req := <-e.reqCh:
			e.parse(req)
		}
	}
}

func (e *Engine) parse(req request) {
	parser, ok := e.parsers[req.language]
	query := e.queries[req.language]
	if !ok || query == nil {
		return
	}
	tree, _ := parser.ParseCtx(context.Background(), nil, []byte(req.text))
	if tree == nil {
		return
	}
	spans := querySpans(query, tree, []byte(req.text))
	e.mu.Lock()
	e.results[req.blockID] = result{text: req.text, spans: spans}
	e.mu.Unlock()
	select {
	case e.events <- Event{BlockID: req.blockID}:
	default:
	}
}

// ParseSync parses one block inline, bypassing the queue.
func (e *Engine) ParseSync(blockID, language, text string) {
	e.parse(request{blockID: blockID, language: normalizeLang(language), text: text})
}

func querySpans(query *sitter.Query, tree *sitter.Tree, source []byte) []span {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var out []span
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			for row := int(start.Row); row <= int(end.Row); row++ {
				startCol := 0
				endCol := int(math.MaxInt32)
				if row == int(start.Row) {
					startCol = int(start.Column)
				}
				if row == int(end.Row) {
					endCol = int(end.Column)
				}
				out = append(out, span{row: row, startCol: startCol, endCol: endCol, kind: kind})
			}
		}
	}
	return out
}

// Refresh walks the document's code blocks: blocks whose cached result
// matches current text are skipped, the rest are queued. Results for
// blocks that no longer exist are evicted.
func (e *Engine) Refresh(d *doc.Document) {
	alive := map[string]bool{}
	e.mu.RLock()
	var stale []request
	d.Walk(func(n *doc.Node, pos int) bool {
		if n.Kind != doc.KindCodeBlock || n.ID() == "" {
			return true
		}
		alive[n.ID()] = true
		text := n.Text()
		if res, ok := e.results[n.ID()]; !ok || res.text != text {
			stale = append(stale, request{blockID: n.ID(), language: normalizeLang(n.Attrs.String("language")), text: text})
		}
		return true
	})
	e.mu.RUnlock()

	e.mu.Lock()
	for id := range e.results {
		if !alive[id] {
			delete(e.results, id)
		}
	}
	e.mu.Unlock()

	for _, req := range stale {
		select {
		case e.reqCh <- req:
		default:
		}
	}
}

// Decorations projects the cached results into document positions. Only
// blocks whose cached text still matches contribute; a stale cache entry
// means the parse has not caught up yet and the block stays unhighlighted
// for a frame.
func (e *Engine) Decorations(d *doc.Document) []render.Decoration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []render.Decoration
	d.Walk(func(n *doc.Node, pos int) bool {
		if n.Kind != doc.KindCodeBlock || n.ID() == "" {
			return true
		}
		res, okRes := e.results[n.ID()]
		if !okRes || res.text != n.Text() {
			return true
		}
		out = append(out, projectSpans(res, pos+1)...)
		return true
	})
	return out
}

// projectSpans converts row/byte-column spans into absolute position
// ranges inside the block's inline content.
func projectSpans(res result, contentStart int) []render.Decoration {
	lines := strings.Split(res.text, "\n")
	// Rune offset of each line's first character within the block content.
	lineStart := make([]int, len(lines))
	off := 0
	for i, line := range lines {
		lineStart[i] = off
		off += len([]rune(line)) + 1
	}
	var out []render.Decoration
	for _, sp := range res.spans {
		if sp.row >= len(lines) {
			continue
		}
		line := lines[sp.row]
		from := lineStart[sp.row] + byteToRuneCol(line, sp.startCol)
		to := lineStart[sp.row] + byteToRuneCol(line, sp.endCol)
		if to <= from {
			continue
		}
		out = append(out, render.Decoration{
			Kind: render.DecoHighlight,
			From: contentStart + from,
			To:   contentStart + to,
			Attr: sp.kind,
		})
	}
	return out
}

func byteToRuneCol(line string, byteCol int) int {
	if byteCol >= len(line) {
		return len([]rune(line))
	}
	return len([]rune(line[:byteCol]))
}

func normalizeLang(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	switch s {
	case "golang":
		return "go"
	case "yml":
		return "yaml"
	case "shell", "sh", "zsh":
		return "bash"
	case "md":
		return "markdown"
	default:
		return s
	}
}
