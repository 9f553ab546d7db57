package blocks

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/kobzarvs/bedit/internal/doc"
	"github.com/kobzarvs/bedit/internal/logger"
)

// NodeToBlock projects one node. Container nodes recurse into Children,
// text nodes flatten their spans into Content, atomic nodes carry props
// only. List items are the special case: their first child is the synthetic
// wrapper holding the item's own text, so that wrapper's spans become the
// item's Content and any further children stay Children.
func NodeToBlock(n *doc.Node) Block {
	b := Block{
		ID:    n.ID(),
		Type:  n.Kind.String(),
		Props: propsFromAttrs(n.Attrs),
	}
	switch {
	case n.Kind.IsAtomic():
		// neither content nor children
	case n.Kind.IsText():
		b.Content = SpansToInline(n.Spans)
	case n.Kind.IsListItem():
		children := n.Children
		if len(children) > 0 && children[0].Kind.IsText() {
			b.Content = SpansToInline(children[0].Spans)
			children = children[1:]
		}
		for _, c := range children {
			b.Children = append(b.Children, NodeToBlock(c))
		}
	default:
		// Table cells included: every child is a full block, even a single
		// paragraph.
		for _, c := range n.Children {
			b.Children = append(b.Children, NodeToBlock(c))
		}
	}
	return b
}

// BlockToNode builds a node from a block, depth-first. A block with an
// unrecognized type degrades to a paragraph and a diagnostic is logged;
// the surrounding conversion continues. Blocks without an id get one.
func BlockToNode(b Block) *doc.Node {
	kind := doc.KindFromName(b.Type)
	if b.Type == "" || (kind == doc.KindUnknown && b.Type != doc.KindUnknown.String()) {
		logger.Warn("unknown block type, degrading to paragraph", "type", b.Type, "id", b.ID)
		kind = doc.KindParagraph
		if len(b.Children) > 0 {
			logger.Warn("dropping children of unknown block type", "type", b.Type, "count", len(b.Children))
		}
		return &doc.Node{Kind: kind, Attrs: attrsFromProps(b.ID, nil), Spans: InlineToSpans(b.Content)}
	}
	attrs := attrsFromProps(b.ID, b.Props)

	switch {
	case kind.IsAtomic():
		return &doc.Node{Kind: kind, Attrs: attrs}
	case kind == doc.KindCodeBlock:
		// Marks are not representable inside code nodes: concatenate the
		// text content into one plain run.
		var sb strings.Builder
		for _, in := range b.Content {
			sb.WriteString(in.Text)
		}
		n := &doc.Node{Kind: kind, Attrs: attrs}
		if sb.Len() > 0 {
			n.Spans = []doc.Span{{Text: sb.String()}}
		}
		return n
	case kind.IsText():
		return &doc.Node{Kind: kind, Attrs: attrs, Spans: InlineToSpans(b.Content)}
	case kind.IsListItem():
		wrapper := &doc.Node{Kind: doc.KindParagraph, Attrs: doc.Attrs{}, Spans: InlineToSpans(b.Content)}
		children := []*doc.Node{wrapper}
		for _, c := range b.Children {
			children = append(children, BlockToNode(c))
		}
		return &doc.Node{Kind: kind, Attrs: attrs, Children: children}
	default:
		n := &doc.Node{Kind: kind, Attrs: attrs}
		for _, c := range b.Children {
			n.Children = append(n.Children, BlockToNode(c))
		}
		// Containers whose content rule forbids emptiness get a filler so
		// the node stays well-formed.
		if len(n.Children) == 0 {
			switch kind {
			case doc.KindTableCell, doc.KindTableHeader:
				n.Children = []*doc.Node{{Kind: doc.KindParagraph, Attrs: doc.Attrs{}}}
			case doc.KindTable:
				n.Children = []*doc.Node{{Kind: doc.KindTableRow, Attrs: doc.Attrs{}, Children: []*doc.Node{
					{Kind: doc.KindTableCell, Attrs: doc.Attrs{}, Children: []*doc.Node{{Kind: doc.KindParagraph, Attrs: doc.Attrs{}}}},
				}}}
			}
		}
		return n
	}
}

// FromDocument projects the whole tree.
func FromDocument(d *doc.Document) []Block {
	out := make([]Block, 0, len(d.Children))
	for _, c := range d.Children {
		out = append(out, NodeToBlock(c))
	}
	return out
}

// ToDocument builds a document from top-level blocks. A block whose type
// cannot appear at the root degrades to a paragraph holding its text.
func ToDocument(bs []Block) *doc.Document {
	d := &doc.Document{}
	for _, b := range bs {
		n := BlockToNode(b)
		if n.Kind.IsListItem() || n.Kind.IsCell() || n.Kind == doc.KindTableRow || n.Kind == doc.KindColumn {
			logger.Warn("block type not allowed at top level, degrading", "type", b.Type, "id", b.ID)
			n = &doc.Node{Kind: doc.KindParagraph, Attrs: attrsFromProps(b.ID, nil), Spans: InlineToSpans(b.Content)}
		}
		d.Children = append(d.Children, n)
	}
	return d
}

// ParseJSON reads a block array.
func ParseJSON(r io.Reader) ([]Block, error) {
	var bs []Block
	dec := json.NewDecoder(r)
	if err := dec.Decode(&bs); err != nil {
		return nil, err
	}
	return bs, nil
}

// WriteJSON writes a block array, indented for interchange files.
func WriteJSON(w io.Writer, bs []Block) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bs)
}

func propsFromAttrs(attrs doc.Attrs) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	props := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == "id" {
			continue
		}
		props[k] = v
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

func attrsFromProps(id string, props map[string]any) doc.Attrs {
	attrs := make(doc.Attrs, len(props)+1)
	for k, v := range props {
		attrs[k] = v
	}
	if id == "" {
		id = NewID()
	}
	attrs["id"] = id
	return attrs
}
