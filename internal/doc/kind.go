// Package doc implements the document tree and position model: typed nodes,
// integer position addressing, and transactions that rewrite the tree while
// keeping positions and selections consistent.
package doc

// Kind identifies a node type. The set is closed; content read from the
// outside that does not match any known kind maps to KindUnknown instead of
// failing.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindQuote
	KindCodeBlock
	KindBulletList
	KindOrderedList
	KindCheckList
	KindListItem
	KindCheckItem
	KindTable
	KindTableRow
	KindTableCell
	KindTableHeader
	KindColumnList
	KindColumn
	KindImage
	KindEmbed
	KindDivider
	KindUnknown
)

type kindClass int

const (
	classText      kindClass = iota // holds inline spans
	classContainer                  // holds child nodes
	classAtomic                     // holds nothing, occupies one position
)

type kindInfo struct {
	name    string
	class   kindClass
	blockID bool // block-eligible: must carry a stable id attr
}

var kindTable = [...]kindInfo{
	KindParagraph:   {"paragraph", classText, true},
	KindHeading:     {"heading", classText, true},
	KindQuote:       {"quote", classText, true},
	KindCodeBlock:   {"codeBlock", classText, true},
	KindBulletList:  {"bulletList", classContainer, true},
	KindOrderedList: {"orderedList", classContainer, true},
	KindCheckList:   {"checkList", classContainer, true},
	KindListItem:    {"listItem", classContainer, false},
	KindCheckItem:   {"checkItem", classContainer, false},
	KindTable:       {"table", classContainer, true},
	KindTableRow:    {"tableRow", classContainer, false},
	KindTableCell:   {"tableCell", classContainer, false},
	KindTableHeader: {"tableHeader", classContainer, false},
	KindColumnList:  {"columnList", classContainer, true},
	KindColumn:      {"column", classContainer, true},
	KindImage:       {"image", classAtomic, true},
	KindEmbed:       {"embed", classAtomic, true},
	KindDivider:     {"divider", classAtomic, true},
	KindUnknown:     {"unknown", classText, true},
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTable) {
		return "invalid"
	}
	return kindTable[k].name
}

// KindFromName maps a type tag to its Kind. Unrecognized tags map to
// KindUnknown; the caller decides whether that warrants a diagnostic.
func KindFromName(name string) Kind {
	for k, info := range kindTable {
		if info.name == name {
			return Kind(k)
		}
	}
	return KindUnknown
}

func (k Kind) IsText() bool      { return kindTable[k].class == classText }
func (k Kind) IsContainer() bool { return kindTable[k].class == classContainer }
func (k Kind) IsAtomic() bool    { return kindTable[k].class == classAtomic }

// BlockEligible reports whether nodes of this kind must carry an id attr.
// Layout columns count even though they are not ordinary blocks.
func (k Kind) BlockEligible() bool { return kindTable[k].blockID }

func (k Kind) IsList() bool {
	return k == KindBulletList || k == KindOrderedList || k == KindCheckList
}

func (k Kind) IsListItem() bool {
	return k == KindListItem || k == KindCheckItem
}

func (k Kind) IsCell() bool {
	return k == KindTableCell || k == KindTableHeader
}

// ItemKind returns the list-item kind used inside a list of kind k.
func (k Kind) ItemKind() Kind {
	if k == KindCheckList {
		return KindCheckItem
	}
	return KindListItem
}

// allowsChild reports whether a container kind accepts a child of the given
// kind. Text and atomic kinds accept no children at all.
func (k Kind) allowsChild(child Kind) bool {
	switch k {
	case KindBulletList, KindOrderedList:
		return child == KindListItem
	case KindCheckList:
		return child == KindCheckItem
	case KindTable:
		return child == KindTableRow
	case KindTableRow:
		return child.IsCell()
	case KindTableCell, KindTableHeader:
		return !child.IsListItem() && child != KindTableRow && child != KindColumn
	case KindColumnList:
		return child == KindColumn
	case KindColumn:
		return child != KindColumn && child != KindColumnList && !child.IsListItem() && child != KindTableRow && !child.IsCell()
	case KindListItem, KindCheckItem:
		// First child is the item's own text wrapper, the rest are nested
		// blocks (typically nested lists).
		return child != KindColumn && child != KindTableRow && !child.IsCell() && !child.IsListItem()
	default:
		return false
	}
}

// topLevel reports whether a node of this kind may appear directly in the
// document root.
func (k Kind) topLevel() bool {
	switch k {
	case KindListItem, KindCheckItem, KindTableRow, KindTableCell, KindTableHeader, KindColumn:
		return false
	}
	return true
}
