// Package property turns typed page properties into JSON values and
// frontmatter text. The variant tag decides the output shape; nothing is
// inferred from string content.
package property

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
)

// TimeLayout is the serialised form of a timestamp.
const TimeLayout = "2006-01-02T15:04:05Z"

const dateLayout = "2006-01-02"

// ToJSON returns the JSON-safe value for v.
func ToJSON(v models.PropertyValue) (any, error) {
	switch v.Kind() {
	case models.KindText:
		s, _ := v.AsText()
		return s, nil
	case models.KindNumber:
		n, _ := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("number %v: %w", n, apperr.ErrUnsupportedProperty)
		}
		return n, nil
	case models.KindBoolean:
		b, _ := v.AsBoolean()
		return b, nil
	case models.KindStringList:
		items, _ := v.AsStringList()
		if items == nil {
			items = []string{}
		}
		return items, nil
	case models.KindTimestamp:
		t, _ := v.AsTimestamp()
		return t.UTC().Format(TimeLayout), nil
	default:
		return nil, fmt.Errorf("kind %s: %w", v.Kind(), apperr.ErrUnsupportedProperty)
	}
}

// MarshalProperties encodes props as a JSON object preserving key order.
func MarshalProperties(props *models.PropertyMap) (json.RawMessage, error) {
	om := orderedmap.New[string, any]()
	for name, v := range props.All() {
		out, err := ToJSON(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		om.Set(name, out)
	}
	data, err := json.Marshal(om)
	if err != nil {
		return nil, fmt.Errorf("marshal properties: %w", err)
	}
	return data, nil
}

// FrontmatterScalar renders v as a frontmatter value. Lists render as a
// block sequence of "  - item" lines, or "[]" when empty.
func FrontmatterScalar(v models.PropertyValue) (string, error) {
	switch v.Kind() {
	case models.KindText:
		s, _ := v.AsText()
		return quoteScalar(s), nil
	case models.KindNumber:
		n, _ := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("number %v: %w", n, apperr.ErrUnsupportedProperty)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case models.KindBoolean:
		b, _ := v.AsBoolean()
		return strconv.FormatBool(b), nil
	case models.KindStringList:
		items, _ := v.AsStringList()
		if len(items) == 0 {
			return "[]", nil
		}
		lines := make([]string, len(items))
		for i, item := range items {
			lines[i] = "  - " + quoteScalar(item)
		}
		return strings.Join(lines, "\n"), nil
	case models.KindTimestamp:
		t, _ := v.AsTimestamp()
		return formatTimestamp(t), nil
	default:
		return "", fmt.Errorf("kind %s: %w", v.Kind(), apperr.ErrUnsupportedProperty)
	}
}

func formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(TimeLayout)
}

// indicators are characters that change the meaning of a plain scalar when
// they lead it.
const indicators = "-:[]{}#&*!|>'\"%@`?,"

// quoteScalar returns s unchanged when it reads back as the same string,
// otherwise double-quoted.
func quoteScalar(s string) string {
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	switch {
	case s == "":
		return true
	case strings.ContainsRune(indicators, rune(s[0])):
		return true
	case strings.TrimSpace(s) != s:
		return true
	case strings.Contains(s, ": "), strings.Contains(s, " #"), strings.HasSuffix(s, ":"):
		return true
	case strings.ContainsAny(s, "\n\r\t"):
		return true
	}
	return !readsAsString(s)
}

// readsAsString reports whether YAML parsers resolve the plain scalar s to
// the string s itself, rather than a bool, number, null or date. Both YAML
// 1.2 and YAML 1.1 resolution are checked, since 1.1 readers also treat
// yes/no/on/off/y/n as booleans.
func readsAsString(s string) bool {
	var v any
	if err := yamlv2.Unmarshal([]byte(s), &v); err != nil {
		return false
	}
	if str, ok := v.(string); !ok || str != s {
		return false
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return false
	}
	n := doc.Content[0]
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" && n.Value == s
}
