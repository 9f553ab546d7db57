package blocks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/bedit/internal/doc"
)

func textBlock(id, typ, text string) Block {
	return Block{ID: id, Type: typ, Content: []Inline{{Text: text}}}
}

func TestRoundTripParagraph(t *testing.T) {
	b := Block{
		ID:   "p1",
		Type: "paragraph",
		Content: []Inline{
			{Text: "plain "},
			{Text: "bold", Styles: Styles{Bold: true}},
			{Text: " and ", Styles: Styles{Italic: true, TextColor: "#ff0000"}},
			{Text: "linked", Link: &Link{Href: "https://example.com", Title: "ex"}},
		},
	}
	got := NodeToBlock(BlockToNode(b))
	assert.Equal(t, b, got)
}

func TestRoundTripHeadingProps(t *testing.T) {
	b := Block{
		ID:      "h1",
		Type:    "heading",
		Props:   map[string]any{"level": 2},
		Content: []Inline{{Text: "Title"}},
	}
	assert.Equal(t, b, NodeToBlock(BlockToNode(b)))
}

func TestRoundTripTable(t *testing.T) {
	b := Block{
		ID:   "t1",
		Type: "table",
		Children: []Block{
			{ID: "r1", Type: "tableRow", Children: []Block{
				{ID: "c1", Type: "tableHeader", Children: []Block{textBlock("p1", "paragraph", "Name")}},
				{ID: "c2", Type: "tableHeader", Children: []Block{textBlock("p2", "paragraph", "Age")}},
			}},
			{ID: "r2", Type: "tableRow", Children: []Block{
				{ID: "c3", Type: "tableCell", Children: []Block{textBlock("p3", "paragraph", "Ada")}},
				{ID: "c4", Type: "tableCell", Children: []Block{textBlock("p4", "paragraph", "36")}},
			}},
		},
	}
	assert.Equal(t, b, NodeToBlock(BlockToNode(b)))
}

func TestRoundTripListItemWithNestedList(t *testing.T) {
	b := Block{
		ID:   "l1",
		Type: "bulletList",
		Children: []Block{
			{
				ID:      "i1",
				Type:    "listItem",
				Content: []Inline{{Text: "outer"}},
				Children: []Block{
					{ID: "l2", Type: "bulletList", Children: []Block{
						{ID: "i2", Type: "listItem", Content: []Inline{{Text: "inner"}}},
					}},
				},
			},
		},
	}
	got := NodeToBlock(BlockToNode(b))
	assert.Equal(t, b, got)

	// The wrapper paragraph is synthetic: the item node's first child holds
	// the item text but never appears as a block itself.
	n := BlockToNode(b)
	item := n.Children[0]
	require.True(t, item.Children[0].Kind.IsText())
	assert.Equal(t, "outer", item.Children[0].Text())
}

func TestRoundTripAtomic(t *testing.T) {
	b := Block{
		ID:    "img1",
		Type:  "image",
		Props: map[string]any{"src": "pic.png", "alt": "a picture"},
	}
	assert.Equal(t, b, NodeToBlock(BlockToNode(b)))
}

func TestBlockWithoutIDGetsOne(t *testing.T) {
	b := textBlock("", "paragraph", "hi")
	n := BlockToNode(b)
	require.NotEmpty(t, n.ID())

	got := NodeToBlock(n)
	b.ID = n.ID()
	assert.Equal(t, b, got)
}

func TestUnknownTypeDegradesToParagraph(t *testing.T) {
	b := Block{ID: "x1", Type: "kanbanBoard", Content: []Inline{{Text: "keep me"}}}
	n := BlockToNode(b)
	assert.Equal(t, doc.KindParagraph, n.Kind)
	assert.Equal(t, "keep me", n.Text())
	assert.Equal(t, "x1", n.ID())
}

func TestCodeBlockStripsStyles(t *testing.T) {
	b := Block{
		ID:    "cb1",
		Type:  "codeBlock",
		Props: map[string]any{"language": "go"},
		Content: []Inline{
			{Text: "func ", Styles: Styles{Bold: true}},
			{Text: "main()"},
		},
	}
	n := BlockToNode(b)
	require.Len(t, n.Spans, 1)
	assert.Equal(t, "func main()", n.Spans[0].Text)
	assert.Empty(t, n.Spans[0].Marks)
}

func TestStylesMarksInverse(t *testing.T) {
	st := Styles{Bold: true, Strikethrough: true, BackgroundColor: "#00ff00"}
	link := &Link{Href: "https://go.dev"}
	marks := StylesToMarks(st, link)
	gotSt, gotLink := MarksToStyles(marks)
	assert.Equal(t, st, gotSt)
	assert.Equal(t, link, gotLink)
}

func TestToDocumentDegradesStrayItem(t *testing.T) {
	d := ToDocument([]Block{
		{ID: "i1", Type: "listItem", Content: []Inline{{Text: "orphan"}}},
	})
	require.Len(t, d.Children, 1)
	assert.Equal(t, doc.KindParagraph, d.Children[0].Kind)
	assert.Equal(t, "orphan", d.Children[0].Text())
	require.NoError(t, d.Validate())
}

func TestJSONRoundTrip(t *testing.T) {
	bs := []Block{
		textBlock("p1", "paragraph", "hello"),
		{ID: "img1", Type: "image", Props: map[string]any{"src": "x.png"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, bs))
	got, err := ParseJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "hello", got[0].Content[0].Text)
	assert.Equal(t, "x.png", got[1].Props["src"])
}
