package blocks

import "github.com/kobzarvs/bedit/internal/doc"

// MarksToStyles projects a span's mark set onto the style flags. Link marks
// are returned separately. The mapping is closed; there is no unknown mark
// type on this side of the boundary.
func MarksToStyles(marks []doc.Mark) (Styles, *Link) {
	var st Styles
	var link *Link
	for _, m := range marks {
		switch m.Type {
		case doc.MarkBold:
			st.Bold = true
		case doc.MarkItalic:
			st.Italic = true
		case doc.MarkUnderline:
			st.Underline = true
		case doc.MarkStrike:
			st.Strikethrough = true
		case doc.MarkCode:
			st.Code = true
		case doc.MarkTextColor:
			st.TextColor = m.Attrs["color"]
		case doc.MarkBackgroundColor:
			st.BackgroundColor = m.Attrs["color"]
		case doc.MarkLink:
			link = &Link{
				Href:   m.Attrs["href"],
				Title:  m.Attrs["title"],
				Target: m.Attrs["target"],
			}
		}
	}
	return st, link
}

// StylesToMarks is the inverse of MarksToStyles. Mark order is fixed so the
// projection is deterministic.
func StylesToMarks(st Styles, link *Link) []doc.Mark {
	var marks []doc.Mark
	if st.Bold {
		marks = append(marks, doc.Mark{Type: doc.MarkBold})
	}
	if st.Italic {
		marks = append(marks, doc.Mark{Type: doc.MarkItalic})
	}
	if st.Underline {
		marks = append(marks, doc.Mark{Type: doc.MarkUnderline})
	}
	if st.Strikethrough {
		marks = append(marks, doc.Mark{Type: doc.MarkStrike})
	}
	if st.Code {
		marks = append(marks, doc.Mark{Type: doc.MarkCode})
	}
	if st.TextColor != "" {
		marks = append(marks, doc.Mark{Type: doc.MarkTextColor, Attrs: map[string]string{"color": st.TextColor}})
	}
	if st.BackgroundColor != "" {
		marks = append(marks, doc.Mark{Type: doc.MarkBackgroundColor, Attrs: map[string]string{"color": st.BackgroundColor}})
	}
	if link != nil {
		attrs := map[string]string{"href": link.Href}
		if link.Title != "" {
			attrs["title"] = link.Title
		}
		if link.Target != "" {
			attrs["target"] = link.Target
		}
		marks = append(marks, doc.Mark{Type: doc.MarkLink, Attrs: attrs})
	}
	return marks
}

// SpansToInline flattens inline spans into content entries, one per
// distinct mark-set run.
func SpansToInline(spans []doc.Span) []Inline {
	if len(spans) == 0 {
		return nil
	}
	out := make([]Inline, 0, len(spans))
	for _, sp := range spans {
		st, link := MarksToStyles(sp.Marks)
		out = append(out, Inline{Text: sp.Text, Styles: st, Link: link})
	}
	return out
}

// InlineToSpans is the inverse of SpansToInline.
func InlineToSpans(content []Inline) []doc.Span {
	if len(content) == 0 {
		return nil
	}
	out := make([]doc.Span, 0, len(content))
	for _, in := range content {
		if in.Text == "" {
			continue
		}
		out = append(out, doc.Span{Text: in.Text, Marks: StylesToMarks(in.Styles, in.Link)})
	}
	return out
}
