package markdown

import (
	"bytes"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/starford/notionmd/internal/models"
	"github.com/starford/notionmd/internal/testutil"
)

// assertMarkdown fails with a unified diff when got differs from want.
func assertMarkdown(t *testing.T, got, want string) {
	t.Helper()
	testutil.AssertText(t, got, want)
}

var gfm = goldmark.New(goldmark.WithExtensions(extension.GFM))

// parseMarkdown parses src with GitHub-flavoured extensions.
func parseMarkdown(t *testing.T, src string) ast.Node {
	t.Helper()
	return gfm.Parser().Parse(text.NewReader([]byte(src)))
}

// toHTML renders src with GitHub-flavoured extensions.
func toHTML(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := gfm.Convert([]byte(src), &buf); err != nil {
		t.Fatalf("goldmark convert: %v", err)
	}
	return buf.String()
}

// collect returns every node of the given kind in document order.
func collect(doc ast.Node, kind ast.NodeKind) []ast.Node {
	var out []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == kind {
			out = append(out, n)
		}
		return ast.WalkContinue, nil
	})
	return out
}

func plain(s string) models.RichText { return models.PlainText(s) }

func para(s string, kids ...models.Block) *models.Paragraph {
	return &models.Paragraph{Text: plain(s), Nodes: kids}
}

func bullet(s string, kids ...models.Block) *models.BulletedListItem {
	return &models.BulletedListItem{Text: plain(s), Nodes: kids}
}

func numbered(ordinal int, s string, kids ...models.Block) *models.NumberedListItem {
	return &models.NumberedListItem{Ordinal: ordinal, Text: plain(s), Nodes: kids}
}
