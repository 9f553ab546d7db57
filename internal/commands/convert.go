package commands

import (
	"strings"

	"github.com/kobzarvs/bedit/internal/doc"
)

// codeBlockFromSpans builds a code block from inline content, stripping
// every mark: marks are not representable inside code nodes.
func codeBlockFromSpans(attrs doc.Attrs, spans []doc.Span) *doc.Node {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(sp.Text)
	}
	n := &doc.Node{Kind: doc.KindCodeBlock, Attrs: attrs}
	if sb.Len() > 0 {
		n.Spans = []doc.Span{{Text: sb.String()}}
	}
	return n
}

// SetBlockType converts the block containing the selection to the given
// kind, preserving its id. The list rules apply in both directions: a text
// block converting to a list wraps, a list converting to a text kind
// unwraps (lossily, first item's first paragraph only), and list-to-list
// conversion re-tags the items in place.
func SetBlockType(target doc.Kind, attrs doc.Attrs) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		rp, err := s.Doc.Resolve(s.Sel.From())
		if err != nil {
			return false
		}
		// A list ancestor wins over the text block inside it, so that
		// converting "inside a list" retargets the list.
		if entry, _, ok := rp.Ancestor(func(n *doc.Node) bool { return n.Kind.IsList() }); ok {
			return convertList(entry, target, attrs, dispatch)
		}
		entry, ok := currentBlock(s)
		if !ok {
			return false
		}
		cur := entry.Node
		if cur.Kind == target {
			// Same kind: still applicable when attrs change (heading level).
			if len(attrs) == 0 {
				return false
			}
			tr := doc.NewTransaction().SetAttrs(entry.Start-1, attrs)
			if dispatch != nil {
				dispatch(tr)
			}
			return true
		}
		if target.IsList() {
			return WrapInList(target)(s, dispatch)
		}
		if !cur.Kind.IsText() || !target.IsText() {
			return false
		}
		newAttrs := doc.Attrs{}
		if id := cur.ID(); id != "" {
			newAttrs["id"] = id
		}
		for k, v := range attrs {
			newAttrs[k] = v
		}
		var repl *doc.Node
		if target == doc.KindCodeBlock {
			repl = codeBlockFromSpans(newAttrs, cur.Spans)
		} else {
			repl = &doc.Node{Kind: target, Attrs: newAttrs, Spans: cur.Spans}
		}
		from := entry.Start - 1
		tr := doc.NewTransaction().Replace(from, from+cur.Size(), repl)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

func convertList(entry doc.PathEntry, target doc.Kind, attrs doc.Attrs, dispatch func(*doc.Transaction)) bool {
	list := entry.Node
	from := entry.Start - 1
	if target.IsList() {
		if list.Kind == target {
			return false
		}
		items := make([]*doc.Node, len(list.Children))
		for i, item := range list.Children {
			ni := item.Clone()
			ni.Kind = target.ItemKind()
			if ni.Attrs == nil {
				ni.Attrs = doc.Attrs{}
			}
			if target == doc.KindCheckList && !ni.Attrs.Has("checked") {
				ni.Attrs["checked"] = false
			}
			items[i] = ni
		}
		repl := &doc.Node{Kind: target, Attrs: list.Attrs, Children: items}
		tr := doc.NewTransaction().Replace(from, from+list.Size(), repl)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
	if !target.IsText() {
		return false
	}
	repl := unwrapListNode(list, target, attrs)
	tr := doc.NewTransaction().Replace(from, from+list.Size(), repl)
	tr.SetSelection(doc.Caret(from + 1))
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}
