package notion

import (
	"log/slog"

	"github.com/starford/notionmd/internal/models"
)

// node is a fetched block with its fetched descendants.
type node struct {
	raw      rawBlock
	children []*node
}

// descends reports whether the children of a block of type t belong to the
// current page. Sub-pages and inline databases are separate documents.
func descends(t string) bool {
	switch t {
	case "child_page", "child_database":
		return false
	}
	_, known := blockTypes[t]
	return known
}

var blockTypes = map[string]struct{}{
	"paragraph": {}, "heading_1": {}, "heading_2": {}, "heading_3": {},
	"bulleted_list_item": {}, "numbered_list_item": {}, "quote": {}, "to_do": {},
	"toggle": {}, "callout": {}, "code": {}, "divider": {}, "table": {}, "table_row": {},
	"child_page": {}, "child_database": {},
	"bookmark": {}, "embed": {}, "link_preview": {},
	"image": {}, "video": {}, "file": {}, "pdf": {},
}

// convertBlocks maps fetched nodes onto the block vocabulary. Unknown block
// types are dropped.
func convertBlocks(nodes []*node, logger *slog.Logger) []models.Block {
	out := make([]models.Block, 0, len(nodes))
	for _, n := range nodes {
		if b := convertBlock(n, logger); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func convertBlock(n *node, logger *slog.Logger) models.Block {
	p := n.raw.Payload
	text := richText(p.RichText)
	kids := func() []models.Block { return convertBlocks(n.children, logger) }

	switch n.raw.Type {
	case "paragraph", "toggle":
		return &models.Paragraph{Text: text, Nodes: kids()}
	case "heading_1":
		return &models.Heading{Level: 1, Text: text, Nodes: kids()}
	case "heading_2":
		return &models.Heading{Level: 2, Text: text, Nodes: kids()}
	case "heading_3":
		return &models.Heading{Level: 3, Text: text, Nodes: kids()}
	case "bulleted_list_item":
		return &models.BulletedListItem{Text: text, Nodes: kids()}
	case "numbered_list_item":
		return &models.NumberedListItem{Text: text, Nodes: kids()}
	case "to_do":
		return &models.ToDo{Checked: p.Checked, Text: text, Nodes: kids()}
	case "quote", "callout":
		return &models.Quote{Text: text, Nodes: kids()}
	case "code":
		return &models.Code{Language: p.Language, Content: text.Plain()}
	case "divider":
		return &models.Divider{}
	case "table":
		return tableBlock(n)
	case "child_page", "child_database":
		if p.Title == "" {
			return nil
		}
		return &models.Paragraph{Text: models.PlainText(p.Title)}
	case "bookmark", "embed", "link_preview":
		return linkParagraph(p.URL, p.Caption, "")
	case "image", "video", "file", "pdf":
		var url string
		switch {
		case p.External != nil:
			url = p.External.URL
		case p.File != nil:
			url = p.File.URL
		}
		return linkParagraph(url, p.Caption, p.Name)
	default:
		logger.Debug("skipping unsupported block",
			slog.String("block_id", n.raw.ID),
			slog.String("type", n.raw.Type))
		return nil
	}
}

func tableBlock(n *node) models.Block {
	t := &models.Table{}
	for _, row := range n.children {
		if row.raw.Type != "table_row" {
			continue
		}
		cells := make([]models.RichText, 0, len(row.raw.Payload.Cells))
		for _, cell := range row.raw.Payload.Cells {
			cells = append(cells, richText(cell))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// linkParagraph renders an embedded resource as a single link. The label
// is the caption, then the name, then the URL itself.
func linkParagraph(url string, caption []rawRichText, name string) models.Block {
	if url == "" {
		return nil
	}
	label := plainText(caption)
	if label == "" {
		label = name
	}
	if label == "" {
		label = url
	}
	return &models.Paragraph{Text: models.RichText{{Text: label, Link: url}}}
}
