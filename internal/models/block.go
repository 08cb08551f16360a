package models

// Annotations are the inline formatting flags of a Span.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Code          bool
}

// Span is a run of text with uniform formatting and an optional link.
type Span struct {
	Text        string
	Annotations Annotations
	Link        string
}

// RichText is an ordered sequence of spans.
type RichText []Span

// Plain concatenates the span texts without formatting.
func (r RichText) Plain() string {
	var n int
	for _, s := range r {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range r {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// PlainText returns a single unformatted span.
func PlainText(s string) RichText { return RichText{{Text: s}} }

// BlockKind identifies the concrete type of a Block.
type BlockKind int

// Block kinds.
const (
	KindParagraph BlockKind = iota + 1
	KindHeading
	KindBulletedListItem
	KindNumberedListItem
	KindQuote
	KindCode
	KindTable
	KindDivider
	KindToDo
)

// IsListItem reports whether blocks of this kind render as list entries.
func (k BlockKind) IsListItem() bool {
	return k == KindBulletedListItem || k == KindNumberedListItem || k == KindToDo
}

// Block is one node of a document's content tree. The set of
// implementations is closed to this package.
type Block interface {
	Kind() BlockKind
	// Children returns nested blocks in order; nil for leaf-only kinds.
	Children() []Block
	block()
}

// Paragraph is a plain text block.
type Paragraph struct {
	Text  RichText
	Nodes []Block
}

// Heading is a section title of level 1 to 3.
type Heading struct {
	Level int
	Text  RichText
	Nodes []Block
}

// BulletedListItem is an unordered list entry.
type BulletedListItem struct {
	Text  RichText
	Nodes []Block
}

// NumberedListItem is an ordered list entry. Ordinal is whatever the
// source reported and is ignored when rendering.
type NumberedListItem struct {
	Ordinal int
	Text    RichText
	Nodes   []Block
}

// Quote is a block quotation.
type Quote struct {
	Text  RichText
	Nodes []Block
}

// Code is a fenced code block.
type Code struct {
	Language string
	Content  string
}

// Table is a grid of rich-text cells; the first row is the header.
type Table struct {
	Rows [][]RichText
}

// Divider is a horizontal rule.
type Divider struct{}

// ToDo is a checklist entry.
type ToDo struct {
	Checked bool
	Text    RichText
	Nodes   []Block
}

func (*Paragraph) Kind() BlockKind        { return KindParagraph }
func (*Heading) Kind() BlockKind          { return KindHeading }
func (*BulletedListItem) Kind() BlockKind { return KindBulletedListItem }
func (*NumberedListItem) Kind() BlockKind { return KindNumberedListItem }
func (*Quote) Kind() BlockKind            { return KindQuote }
func (*Code) Kind() BlockKind             { return KindCode }
func (*Table) Kind() BlockKind            { return KindTable }
func (*Divider) Kind() BlockKind          { return KindDivider }
func (*ToDo) Kind() BlockKind             { return KindToDo }

func (b *Paragraph) Children() []Block        { return b.Nodes }
func (b *Heading) Children() []Block          { return b.Nodes }
func (b *BulletedListItem) Children() []Block { return b.Nodes }
func (b *NumberedListItem) Children() []Block { return b.Nodes }
func (b *Quote) Children() []Block            { return b.Nodes }
func (*Code) Children() []Block               { return nil }
func (*Table) Children() []Block              { return nil }
func (*Divider) Children() []Block            { return nil }
func (b *ToDo) Children() []Block             { return b.Nodes }

func (*Paragraph) block()        {}
func (*Heading) block()          {}
func (*BulletedListItem) block() {}
func (*NumberedListItem) block() {}
func (*Quote) block()            {}
func (*Code) block()             {}
func (*Table) block()            {}
func (*Divider) block()          {}
func (*ToDo) block()             {}
