package property

import (
	"fmt"
	"strings"

	"github.com/starford/notionmd/internal/models"
)

const delimiter = "---"

// Compose renders props as a frontmatter header followed by a blank line.
// An empty map produces no header.
func Compose(props *models.PropertyMap) (string, error) {
	if props.Len() == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(delimiter + "\n")
	for name, v := range props.All() {
		value, err := FrontmatterScalar(v)
		if err != nil {
			return "", fmt.Errorf("property %q: %w", name, err)
		}
		b.WriteString(quoteScalar(name))
		if v.Kind() == models.KindStringList && value != "[]" {
			b.WriteString(":\n")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(value)
		b.WriteString("\n")
	}
	b.WriteString(delimiter + "\n\n")
	return b.String(), nil
}
