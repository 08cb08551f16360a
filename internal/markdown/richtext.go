// Package markdown renders the store's block tree into Markdown text.
//
// All functions are pure: they allocate fresh output, keep no state between
// calls and are safe for concurrent use.
package markdown

import (
	"strings"
	"unicode"

	"github.com/starford/notionmd/internal/models"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// RenderRichText converts spans into inline Markdown.
func RenderRichText(rt models.RichText) string {
	var b strings.Builder
	for _, s := range mergeSpans(rt) {
		b.WriteString(renderSpan(s))
	}
	return b.String()
}

// mergeSpans joins adjacent unlinked spans that share annotations so that
// markers are not closed and immediately reopened.
func mergeSpans(rt models.RichText) models.RichText {
	if len(rt) < 2 {
		return rt
	}
	out := make(models.RichText, 0, len(rt))
	for _, s := range rt {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Link == "" && s.Link == "" && last.Annotations == s.Annotations {
				last.Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func renderSpan(s models.Span) string {
	a := s.Annotations

	var out string
	if a.Code {
		out = codeSpan(s.Text)
	} else {
		out = escaper.Replace(s.Text)
	}

	switch {
	case a.Bold && a.Italic:
		out = wrap(out, "***")
	case a.Bold:
		out = wrap(out, "**")
	case a.Italic:
		out = wrap(out, "*")
	}
	if a.Strikethrough {
		out = wrap(out, "~~")
	}
	if s.Link != "" {
		out = "[" + out + "](" + linkDestination(s.Link) + ")"
	}
	return out
}

// wrap surrounds s with marker, keeping leading and trailing whitespace
// outside so the emphasis stays left- and right-flanking.
func wrap(s, marker string) string {
	core := strings.TrimLeftFunc(s, unicode.IsSpace)
	lead := s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail := core[len(trimmed):]
	if trimmed == "" {
		return s
	}
	return lead + marker + trimmed + marker + trail
}

// codeSpan fences s with one more backtick than its longest backtick run.
func codeSpan(s string) string {
	if s == "" {
		return ""
	}
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

var destinationEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")

func linkDestination(url string) string {
	return destinationEscaper.Replace(strings.TrimSpace(url))
}
