package markdown

import (
	"strings"
	"testing"

	"github.com/starford/notionmd/internal/models"
)

func TestRenderRichText_EscapesOutsideCode(t *testing.T) {
	got := RenderRichText(plain(`a*b_c [x] \ ` + "`tick`"))
	want := `a\*b\_c \[x\] \\ ` + "\\`tick\\`"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if html := toHTML(t, "*emphasis*\n"); !strings.Contains(html, "<em>") {
		t.Fatalf("control: unescaped text should render emphasis: %s", html)
	}
	html := toHTML(t, RenderRichText(plain("*not emphasis*"))+"\n")
	if strings.Contains(html, "<em>") {
		t.Errorf("escaped text rendered as emphasis: %s", html)
	}
}

func TestRenderRichText_CodeIsVerbatim(t *testing.T) {
	rt := models.RichText{{Text: "a*b_c", Annotations: models.Annotations{Code: true}}}
	if got := RenderRichText(rt); got != "`a*b_c`" {
		t.Errorf("got %q", got)
	}
}

func TestRenderRichText_CodeFenceWidens(t *testing.T) {
	cases := map[string]string{
		"a`b":    "``a`b``",
		"x``y":   "```x``y```",
		"`start": "`` `start ``",
	}
	for in, want := range cases {
		rt := models.RichText{{Text: in, Annotations: models.Annotations{Code: true}}}
		if got := RenderRichText(rt); got != want {
			t.Errorf("code %q = %q, want %q", in, got, want)
		}
	}
}

func TestRenderRichText_AnnotationOrder(t *testing.T) {
	all := models.Annotations{Bold: true, Italic: true, Strikethrough: true, Code: true}
	rt := models.RichText{{Text: "x", Annotations: all, Link: "https://example.com"}}
	want := "[~~***`x`***~~](https://example.com)"
	if got := RenderRichText(rt); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	cases := []struct {
		a    models.Annotations
		want string
	}{
		{models.Annotations{Bold: true}, "**x**"},
		{models.Annotations{Italic: true}, "*x*"},
		{models.Annotations{Bold: true, Italic: true}, "***x***"},
		{models.Annotations{Strikethrough: true}, "~~x~~"},
		{models.Annotations{Bold: true, Strikethrough: true}, "~~**x**~~"},
	}
	for _, tc := range cases {
		got := RenderRichText(models.RichText{{Text: "x", Annotations: tc.a}})
		if got != tc.want {
			t.Errorf("%+v = %q, want %q", tc.a, got, tc.want)
		}
	}
}

func TestRenderRichText_WhitespaceOutsideMarkers(t *testing.T) {
	rt := models.RichText{
		{Text: "Hello "},
		{Text: "bold ", Annotations: models.Annotations{Bold: true}},
		{Text: "world"},
	}
	if got := RenderRichText(rt); got != "Hello **bold** world" {
		t.Errorf("got %q", got)
	}

	spaces := models.RichText{{Text: "   ", Annotations: models.Annotations{Italic: true}}}
	if got := RenderRichText(spaces); got != "   " {
		t.Errorf("whitespace-only span = %q", got)
	}
}

func TestRenderRichText_Links(t *testing.T) {
	empty := models.RichText{{Text: "", Link: "https://example.com"}}
	if got := RenderRichText(empty); got != "[](https://example.com)" {
		t.Errorf("empty link = %q", got)
	}

	spaced := models.RichText{{Text: "doc", Link: "https://example.com/a b(1)"}}
	if got := RenderRichText(spaced); got != "[doc](https://example.com/a%20b%281%29)" {
		t.Errorf("link = %q", got)
	}
}

func TestRenderRichText_MergesAdjacentSpans(t *testing.T) {
	bold := models.Annotations{Bold: true}
	rt := models.RichText{
		{Text: "a", Annotations: bold},
		{Text: "b", Annotations: bold},
		{Text: "c", Annotations: bold, Link: "https://x.test"},
	}
	if got := RenderRichText(rt); got != "**ab**[**c**](https://x.test)" {
		t.Errorf("got %q", got)
	}
	if rt[0].Text != "a" {
		t.Error("merge mutated the input")
	}
}
