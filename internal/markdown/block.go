package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/notionmd/internal/models"
)

// indentUnit is the indentation added per nesting level.
const indentUnit = "  "

// RenderBlock renders b and its descendants at the given nesting depth.
// A numbered item rendered on its own is numbered 1.
func RenderBlock(b models.Block, depth int) string {
	if b == nil {
		return ""
	}
	if depth < 0 {
		depth = 0
	}
	return renderTree(b, strings.Repeat(indentUnit, depth), 1)
}

// frame is one pending sibling sequence on the traversal stack.
type frame struct {
	blocks  []models.Block
	next    int
	prefix  string
	prev    models.BlockKind
	ordinal int
}

// renderTree walks root depth-first, pre-order, with an explicit stack so
// that deeply nested input does not grow the call stack.
func renderTree(root models.Block, prefix string, ordinal int) string {
	lines := ownLines(root, prefix, ordinal)

	var stack []*frame
	if kids := root.Children(); len(kids) > 0 {
		stack = append(stack, &frame{blocks: kids, prefix: childPrefix(root, prefix, ordinal)})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next >= len(f.blocks) {
			stack = stack[:len(stack)-1]
			continue
		}
		b := f.blocks[f.next]
		f.next++
		if b == nil {
			continue
		}

		kind := b.Kind()
		n := nextOrdinal(f.prev, kind, f.ordinal)
		own := ownLines(b, f.prefix, n)
		kids := b.Children()
		if len(own) == 0 && len(kids) == 0 {
			// An empty block still ends the current list run.
			if f.prev != 0 {
				f.prev, f.ordinal = kind, n
			}
			continue
		}

		switch {
		case f.prev == 0 && !kind.IsListItem():
			lines = append(lines, blankLine(f.prefix))
		case f.prev != 0 && !continuesList(f.prev, kind):
			lines = append(lines, blankLine(f.prefix))
		}
		f.prev, f.ordinal = kind, n

		lines = append(lines, own...)
		if len(kids) > 0 {
			stack = append(stack, &frame{blocks: kids, prefix: childPrefix(b, f.prefix, n)})
		}
	}

	return strings.Trim(trimLines(strings.Join(lines, "\n")), "\n")
}

// nextOrdinal numbers a numbered item within its run of numbered siblings.
func nextOrdinal(prev, kind models.BlockKind, ordinal int) int {
	if kind != models.KindNumberedListItem {
		return 0
	}
	if prev == models.KindNumberedListItem {
		return ordinal + 1
	}
	return 1
}

// continuesList reports whether b directly continues a list started by a.
func continuesList(a, b models.BlockKind) bool {
	return a == b && a.IsListItem()
}

// childPrefix is the line prefix for the children of b. Children of a
// numbered item align with the item's content column so that they nest
// under it.
func childPrefix(b models.Block, prefix string, ordinal int) string {
	switch b.Kind() {
	case models.KindQuote:
		return prefix + "> "
	case models.KindNumberedListItem:
		return prefix + strings.Repeat(" ", len(numberMarker(ordinal)))
	}
	return prefix + indentUnit
}

func numberMarker(ordinal int) string {
	return strconv.Itoa(max(ordinal, 1)) + ". "
}

func blankLine(prefix string) string {
	return strings.TrimRight(prefix, " ")
}

// ownLines renders b without its children.
func ownLines(b models.Block, prefix string, ordinal int) []string {
	switch v := b.(type) {
	case *models.Paragraph:
		text := RenderRichText(v.Text)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return prefixed(prefix, "", textLines(text))

	case *models.Heading:
		text := strings.ReplaceAll(RenderRichText(v.Text), "\n", " ")
		return []string{prefix + strings.Repeat("#", clampLevel(v.Level)) + " " + text}

	case *models.BulletedListItem:
		return listLines(prefix, "- ", indentUnit, v.Text)

	case *models.NumberedListItem:
		marker := numberMarker(ordinal)
		return listLines(prefix, marker, strings.Repeat(" ", len(marker)), v.Text)

	case *models.ToDo:
		marker := "- [ ] "
		if v.Checked {
			marker = "- [x] "
		}
		return listLines(prefix, marker, indentUnit, v.Text)

	case *models.Quote:
		text := RenderRichText(v.Text)
		if strings.TrimSpace(text) == "" {
			if len(v.Nodes) == 0 {
				return nil
			}
			return []string{prefix + ">"}
		}
		return prefixed(prefix, "> ", textLines(text))

	case *models.Code:
		return codeLines(prefix, v)

	case *models.Table:
		return tableLines(prefix, v)

	case *models.Divider:
		return []string{prefix + "---"}
	}
	return nil
}

func listLines(prefix, marker, indent string, rt models.RichText) []string {
	lines := textLines(RenderRichText(rt))
	out := make([]string, 0, len(lines))
	out = append(out, prefix+marker+lines[0])
	for _, l := range lines[1:] {
		out = append(out, prefix+indent+l)
	}
	return out
}

func codeLines(prefix string, c *models.Code) []string {
	fence := strings.Repeat("`", max(3, longestRun(c.Content, '`')+1))
	content := strings.TrimSuffix(c.Content, "\n")

	out := []string{prefix + fence + codeLanguage(c.Language)}
	if content != "" {
		out = append(out, prefixed(prefix, "", strings.Split(content, "\n"))...)
	}
	return append(out, prefix+fence)
}

func codeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "plain text" {
		return ""
	}
	return strings.Join(strings.Fields(lang), "-")
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func tableLines(prefix string, t *models.Table) []string {
	width := 0
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	out := make([]string, 0, len(t.Rows)+1)
	cells := make([]string, width)
	for i, row := range t.Rows {
		for j := range cells {
			cells[j] = ""
			if j < len(row) {
				cells[j] = cellEscaper.Replace(RenderRichText(row[j]))
			}
		}
		out = append(out, prefix+"| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			out = append(out, prefix+"| "+strings.Join(sep, " | ")+" |")
		}
	}
	return out
}

func clampLevel(level int) int {
	return min(max(level, 1), 3)
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// orderedStart matches text that would open an ordered list item.
var orderedStart = regexp.MustCompile(`^(\d{1,9})([.)])(\s|$)`)

// textLines splits rendered text into lines, escaping any line start that
// Markdown would read as block structure.
func textLines(s string) []string {
	lines := splitLines(s)
	for i, l := range lines {
		lines[i] = escapeLineStart(l)
	}
	return lines
}

func escapeLineStart(l string) string {
	text := strings.TrimLeft(l, " \t")
	lead := l[:len(l)-len(text)]
	if text == "" {
		return l
	}
	switch text[0] {
	case '#', '>', '-', '+', '=', '~', '|':
		return lead + `\` + text
	}
	if m := orderedStart.FindStringSubmatchIndex(text); m != nil {
		return lead + text[:m[3]] + `\` + text[m[3]:]
	}
	return l
}

func prefixed(prefix, marker string, lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = prefix + marker + l
	}
	return out
}

// trimLines removes trailing whitespace from every line.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
