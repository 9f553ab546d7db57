// Package blocks implements the external JSON projection of the document
// tree: every block-eligible node maps to a Block and back without loss for
// the supported feature set. Unknown types degrade instead of failing.
package blocks

import (
	"github.com/gofrs/uuid"
)

// Block is the interchange shape. Exactly one of Content/Children is
// meaningful per type: container types carry Children, text-bearing types
// carry Content, atomic types carry neither.
type Block struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Content  []Inline       `json:"content,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// Inline is one styled text run.
type Inline struct {
	Text   string  `json:"text"`
	Styles Styles  `json:"styles,omitzero"`
	Link   *Link   `json:"link,omitempty"`
}

// Styles is the closed set of boolean style flags plus the two color
// carriers. It mirrors the mark vocabulary one-to-one.
type Styles struct {
	Bold            bool   `json:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty"`
	Underline       bool   `json:"underline,omitempty"`
	Strikethrough   bool   `json:"strikethrough,omitempty"`
	Code            bool   `json:"code,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

func (s Styles) IsZero() bool { return s == Styles{} }

// Link carries the parameters of a link mark.
type Link struct {
	Href   string `json:"href"`
	Title  string `json:"title,omitempty"`
	Target string `json:"target,omitempty"`
}

// NewID generates a block id. Ids are assigned once and survive every
// structural rewrite of the node they belong to.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}
