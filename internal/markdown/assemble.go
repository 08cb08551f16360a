package markdown

import (
	"strings"

	"github.com/starford/notionmd/internal/models"
)

// Version identifies the rendering rules. Bump it whenever the output for
// an unchanged block tree changes, so that cached bodies are re-rendered.
const Version = "2"

// Fragment is the rendered Markdown of one top-level block.
type Fragment struct {
	Kind models.BlockKind
	Text string
}

// Render converts a sequence of top-level blocks into a Markdown body.
func Render(blocks []models.Block) string {
	return Assemble(RenderBlocks(blocks))
}

// RenderBlocks renders each top-level block into a fragment, numbering
// numbered items per contiguous run. A block that renders to nothing yields
// an empty fragment: it emits no text but still ends a run.
func RenderBlocks(blocks []models.Block) []Fragment {
	out := make([]Fragment, 0, len(blocks))
	var prev models.BlockKind
	ordinal := 0
	for _, b := range blocks {
		if b == nil {
			continue
		}
		kind := b.Kind()
		n := nextOrdinal(prev, kind, ordinal)
		text := renderTree(b, "", n)
		if strings.TrimSpace(text) == "" {
			if prev != 0 {
				prev, ordinal = kind, n
				out = append(out, Fragment{Kind: kind})
			}
			continue
		}
		prev, ordinal = kind, n
		out = append(out, Fragment{Kind: kind, Text: text})
	}
	return out
}

// Assemble joins fragments with a blank line between them, except between
// consecutive list items of the same kind which stay on adjacent lines.
// Empty fragments emit nothing but separate the lists around them. The
// result ends with exactly one newline, or is empty.
func Assemble(fragments []Fragment) string {
	var b strings.Builder
	var prev models.BlockKind
	for _, f := range fragments {
		text := strings.Trim(trimLines(f.Text), "\n")
		if strings.TrimSpace(text) == "" {
			if b.Len() > 0 {
				prev = f.Kind
			}
			continue
		}
		if b.Len() > 0 {
			if continuesList(prev, f.Kind) {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(text)
		prev = f.Kind
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("\n")
	return b.String()
}
