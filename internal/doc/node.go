package doc

import (
	"strings"
	"unicode/utf8"
)

// MarkType identifies a formatting annotation. At most one mark of a given
// type may be present on a span.
type MarkType int

const (
	MarkBold MarkType = iota
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkCode
	MarkLink
	MarkTextColor
	MarkBackgroundColor
)

var markNames = [...]string{
	MarkBold:            "bold",
	MarkItalic:          "italic",
	MarkUnderline:       "underline",
	MarkStrike:          "strike",
	MarkCode:            "code",
	MarkLink:            "link",
	MarkTextColor:       "textColor",
	MarkBackgroundColor: "backgroundColor",
}

func (m MarkType) String() string {
	if m < 0 || int(m) >= len(markNames) {
		return "invalid"
	}
	return markNames[m]
}

// MarkFromName maps a mark tag to its type. Unknown tags are not
// representable; ok is false and the caller drops the mark.
func MarkFromName(name string) (MarkType, bool) {
	for i, n := range markNames {
		if n == name {
			return MarkType(i), true
		}
	}
	return 0, false
}

// Mark is a formatting annotation with optional scalar parameters
// (link href/title/target, color values).
type Mark struct {
	Type  MarkType
	Attrs map[string]string
}

func (m Mark) Eq(o Mark) bool {
	if m.Type != o.Type || len(m.Attrs) != len(o.Attrs) {
		return false
	}
	for k, v := range m.Attrs {
		if o.Attrs[k] != v {
			return false
		}
	}
	return true
}

// SameMarks reports whether two mark sets are equal regardless of order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		found := false
		for _, o := range b {
			if m.Eq(o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AddMark returns marks with m added, replacing any existing mark of the
// same type.
func AddMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	for _, o := range marks {
		if o.Type != m.Type {
			out = append(out, o)
		}
	}
	return append(out, m)
}

// RemoveMark returns marks without any mark of type t.
func RemoveMark(marks []Mark, t MarkType) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, o := range marks {
		if o.Type != t {
			out = append(out, o)
		}
	}
	return out
}

func HasMark(marks []Mark, t MarkType) bool {
	for _, o := range marks {
		if o.Type == t {
			return true
		}
	}
	return false
}

// Span is a run of text sharing one mark set.
type Span struct {
	Text  string
	Marks []Mark
}

func (s Span) len() int { return utf8.RuneCountInString(s.Text) }

// Node is a tree element. Exactly one of Children/Spans is populated
// depending on the kind's class; atomic kinds populate neither. Nodes are
// immutable once part of an applied snapshot: edits build replacements.
type Node struct {
	Kind     Kind
	Attrs    Attrs
	Children []*Node
	Spans    []Span
}

// Size is the width of the node's position range. Containers and text
// blocks spend one unit at open and close; atomic nodes occupy a single
// position.
func (n *Node) Size() int {
	switch kindTable[n.Kind].class {
	case classAtomic:
		return 1
	case classText:
		return 2 + n.TextLen()
	default:
		s := 2
		for _, c := range n.Children {
			s += c.Size()
		}
		return s
	}
}

// TextLen is the rune length of the node's inline content.
func (n *Node) TextLen() int {
	total := 0
	for _, sp := range n.Spans {
		total += sp.len()
	}
	return total
}

// Text concatenates the node's inline content without marks.
func (n *Node) Text() string {
	var b strings.Builder
	for _, sp := range n.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// ID returns the node's block id attr, or "".
func (n *Node) ID() string { return n.Attrs.String("id") }

// Clone returns a deep copy. Attrs and marks are copied so the clone can be
// mutated while it is being assembled into a replacement.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Attrs: n.Attrs.Clone()}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	if len(n.Spans) > 0 {
		c.Spans = make([]Span, len(n.Spans))
		for i, sp := range n.Spans {
			cp := Span{Text: sp.Text}
			if len(sp.Marks) > 0 {
				cp.Marks = make([]Mark, len(sp.Marks))
				for j, m := range sp.Marks {
					cm := Mark{Type: m.Type}
					if len(m.Attrs) > 0 {
						cm.Attrs = make(map[string]string, len(m.Attrs))
						for k, v := range m.Attrs {
							cm.Attrs[k] = v
						}
					}
					cp.Marks[j] = cm
				}
			}
			c.Spans[i] = sp
			c.Spans[i].Marks = cp.Marks
		}
	}
	return c
}

// WithAttrs returns a copy of the node with the given attrs merged in.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	c := n.Clone()
	if c.Attrs == nil {
		c.Attrs = Attrs{}
	}
	for k, v := range attrs {
		c.Attrs[k] = v
	}
	return c
}

// NewTextNode builds a text-block node of the given kind.
func NewTextNode(kind Kind, attrs Attrs, spans ...Span) *Node {
	return &Node{Kind: kind, Attrs: attrs, Spans: spans}
}

// NewContainer builds a container node of the given kind.
func NewContainer(kind Kind, attrs Attrs, children ...*Node) *Node {
	return &Node{Kind: kind, Attrs: attrs, Children: children}
}

// NewParagraph builds a plain paragraph holding the given text.
func NewParagraph(text string) *Node {
	n := &Node{Kind: KindParagraph, Attrs: Attrs{}}
	if text != "" {
		n.Spans = []Span{{Text: text}}
	}
	return n
}

// normalizeSpans merges adjacent spans with equal mark sets and drops empty
// runs, so that one span always corresponds to one distinct mark-set run.
func normalizeSpans(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		if len(out) > 0 && SameMarks(out[len(out)-1].Marks, sp.Marks) {
			out[len(out)-1].Text += sp.Text
			continue
		}
		out = append(out, sp)
	}
	return out
}

// sliceSpans returns the [from,to) rune range of the given spans.
func sliceSpans(spans []Span, from, to int) []Span {
	var out []Span
	pos := 0
	for _, sp := range spans {
		l := sp.len()
		start, end := pos, pos+l
		pos = end
		if end <= from || start >= to {
			continue
		}
		lo, hi := 0, l
		if from > start {
			lo = from - start
		}
		if to < end {
			hi = to - start
		}
		r := []rune(sp.Text)
		out = append(out, Span{Text: string(r[lo:hi]), Marks: sp.Marks})
	}
	return normalizeSpans(out)
}

// spliceSpans replaces the [from,to) rune range with the insert spans.
func spliceSpans(spans []Span, from, to int, insert []Span) []Span {
	head := sliceSpans(spans, 0, from)
	tail := sliceSpans(spans, to, totalLen(spans))
	out := make([]Span, 0, len(head)+len(insert)+len(tail))
	out = append(out, head...)
	out = append(out, insert...)
	out = append(out, tail...)
	return normalizeSpans(out)
}

func totalLen(spans []Span) int {
	total := 0
	for _, sp := range spans {
		total += sp.len()
	}
	return total
}
