package api

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/starford/notionmd/internal/apperr"
)

const markdownType = "text/markdown"

// wantsMarkdown reports whether the client asked for Markdown. A Markdown
// Content-Type wins; otherwise the first recognised Accept entry decides.
func wantsMarkdown(r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt == markdownType {
			return true
		}
	}
	for _, accept := range r.Header.Values("Accept") {
		for _, part := range strings.Split(accept, ",") {
			mt := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
			switch mt {
			case markdownType, "text/*":
				return true
			case "application/json", "application/*", "*/*":
				return false
			}
		}
	}
	return false
}

// frontmatterParam parses the frontmatter query parameter. Absent means
// false.
func frontmatterParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("frontmatter")
	switch {
	case v == "":
		return false, nil
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	}
	return false, fmt.Errorf("%w: frontmatter must be true or false, got %q", apperr.ErrValidation, v)
}
