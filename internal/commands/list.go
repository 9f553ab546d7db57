package commands

import (
	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/logger"
)

// WrapInList converts the current text block into a one-item list of the
// given kind. The block's id transfers to the list node itself, not the
// item, so block-level references survive the type change.
func WrapInList(kind doc.Kind) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		if !kind.IsList() {
			return false
		}
		entry, ok := currentBlock(s)
		if !ok || !entry.Node.Kind.IsText() {
			return false
		}
		rp, err := s.Doc.Resolve(s.Sel.From())
		if err != nil {
			return false
		}
		// Blocks already inside a list item stay where they are.
		if _, _, inItem := rp.Ancestor(func(n *doc.Node) bool { return n.Kind.IsListItem() }); inItem {
			return false
		}
		wrapper := &doc.Node{Kind: doc.KindParagraph, Attrs: doc.Attrs{}, Spans: entry.Node.Spans}
		itemAttrs := doc.Attrs{}
		if kind == doc.KindCheckList {
			itemAttrs["checked"] = false
		}
		item := doc.NewContainer(kind.ItemKind(), itemAttrs, wrapper)
		listAttrs := doc.Attrs{}
		if id := entry.Node.ID(); id != "" {
			listAttrs["id"] = id
		}
		list := doc.NewContainer(kind, listAttrs, item)
		from := entry.Start - 1
		tr := doc.NewTransaction().Replace(from, from+entry.Node.Size(), list)
		tr.SetSelection(doc.Caret(caretInto(list, from)))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// unwrapListNode extracts the block a list collapses into: the first
// item's first paragraph. Everything else is discarded; that lossy policy
// is deliberate for a single-block conversion target, so it is logged
// rather than prevented.
func unwrapListNode(list *doc.Node, target doc.Kind, attrs doc.Attrs) *doc.Node {
	newAttrs := doc.Attrs{}
	if id := list.ID(); id != "" {
		newAttrs["id"] = id
	}
	for k, v := range attrs {
		newAttrs[k] = v
	}
	var spans []doc.Span
	if len(list.Children) > 0 {
		item := list.Children[0]
		if len(item.Children) > 0 && item.Children[0].Kind.IsText() {
			spans = item.Children[0].Spans
		}
		if len(list.Children) > 1 || len(item.Children) > 1 {
			logger.Warn("list unwrap discards content beyond the first item's first paragraph",
				"id", list.ID(), "items", len(list.Children))
		}
	}
	if target == doc.KindCodeBlock {
		return codeBlockFromSpans(newAttrs, spans)
	}
	return &doc.Node{Kind: target, Attrs: newAttrs, Spans: spans}
}

// UnwrapList converts the list containing the selection back into a block
// of the given non-list kind.
func UnwrapList(target doc.Kind) Command {
	return func(s *doc.State, dispatch func(*doc.Transaction)) bool {
		if target.IsList() || !target.IsText() {
			return false
		}
		rp, err := s.Doc.Resolve(s.Sel.From())
		if err != nil {
			return false
		}
		entry, _, ok := rp.Ancestor(func(n *doc.Node) bool { return n.Kind.IsList() })
		if !ok {
			return false
		}
		repl := unwrapListNode(entry.Node, target, nil)
		from := entry.Start - 1
		tr := doc.NewTransaction().Replace(from, from+entry.Node.Size(), repl)
		tr.SetSelection(doc.Caret(from + 1))
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// listItemCtx locates the innermost item and its list above the selection.
func listItemCtx(s *doc.State) (item, list doc.PathEntry, ok bool) {
	rp, err := s.Doc.Resolve(s.Sel.From())
	if err != nil {
		return
	}
	for i := len(rp.Path) - 1; i >= 1; i-- {
		if rp.Path[i].Node.Kind.IsListItem() && rp.Path[i-1].Node.Kind.IsList() {
			return rp.Path[i], rp.Path[i-1], true
		}
	}
	return
}

// ExitEmptyItem handles Enter inside an empty list item: a single-item
// list is replaced wholesale by an empty paragraph; otherwise the item is
// deleted and a paragraph inserted right after the list.
func ExitEmptyItem(s *doc.State, dispatch func(*doc.Transaction)) bool {
	item, list, ok := listItemCtx(s)
	if !ok {
		return false
	}
	if len(item.Node.Children) != 1 || !item.Node.Children[0].Kind.IsText() || item.Node.Children[0].TextLen() != 0 {
		return false
	}
	para := &doc.Node{Kind: doc.KindParagraph, Attrs: doc.Attrs{}}
	tr := doc.NewTransaction()
	if len(list.Node.Children) == 1 {
		from := list.Start - 1
		if id := list.Node.ID(); id != "" {
			para.Attrs["id"] = id
		}
		tr.Replace(from, from+list.Node.Size(), para)
		tr.SetSelection(doc.Caret(from + 1))
	} else {
		itemFrom := item.Start - 1
		tr.DeleteRange(itemFrom, itemFrom+item.Node.Size())
		after := list.Start - 1 + list.Node.Size()
		tr.Replace(after, after, para)
		// Post-transaction: the list shrank by the item's size.
		caret := after - item.Node.Size() + 1
		tr.SetSelection(doc.Caret(caret))
	}
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// ToggleChecked flips the checked attr of the check item containing the
// selection.
func ToggleChecked(s *doc.State, dispatch func(*doc.Transaction)) bool {
	item, _, ok := listItemCtx(s)
	if !ok || item.Node.Kind != doc.KindCheckItem {
		return false
	}
	tr := doc.NewTransaction().SetAttrs(item.Start-1, doc.Attrs{
		"checked": !item.Node.Attrs.Bool("checked"),
	})
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}
