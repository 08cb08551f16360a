package notion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
	"github.com/starford/notionmd/internal/property"
)

const dateOnly = "2006-01-02"

// decodeProperties converts a page's properties object, keeping the order
// Notion sent. Empty values are omitted.
func decodeProperties(raw *orderedmap.OrderedMap[string, json.RawMessage]) (*models.PropertyMap, error) {
	props := models.NewPropertyMap()
	if raw == nil {
		return props, nil
	}
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		var p rawProperty
		if err := json.Unmarshal(pair.Value, &p); err != nil {
			return nil, fmt.Errorf("decode property %q: %w", pair.Key, err)
		}
		v, ok, err := propertyValue(p)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", pair.Key, err)
		}
		if ok {
			props.Set(pair.Key, v)
		}
	}
	return props, nil
}

// propertyValue maps one Notion property. ok is false when the property
// holds no value.
func propertyValue(p rawProperty) (models.PropertyValue, bool, error) {
	switch p.Type {
	case "title":
		return nonEmptyText(plainText(p.Title))
	case "rich_text":
		return nonEmptyText(plainText(p.RichText))
	case "select":
		if p.Select == nil {
			return models.PropertyValue{}, false, nil
		}
		return nonEmptyText(p.Select.Name)
	case "status":
		if p.Status == nil {
			return models.PropertyValue{}, false, nil
		}
		return nonEmptyText(p.Status.Name)
	case "multi_select":
		names := make([]string, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			names = append(names, o.Name)
		}
		return nonEmptyList(names)
	case "checkbox":
		return models.Boolean(p.Checkbox), true, nil
	case "number":
		if p.Number == nil {
			return models.PropertyValue{}, false, nil
		}
		return models.Number(*p.Number), true, nil
	case "url":
		return optionalText(p.URL)
	case "email":
		return optionalText(p.Email)
	case "phone_number":
		return optionalText(p.PhoneNumber)
	case "date":
		return dateValue(p.Date)
	case "created_time":
		return timestampValue(p.CreatedTime)
	case "last_edited_time":
		return timestampValue(p.LastEditedTime)
	case "people":
		names := make([]string, 0, len(p.People))
		for _, u := range p.People {
			names = append(names, u.displayName())
		}
		return nonEmptyList(names)
	case "created_by":
		return userValue(p.CreatedBy)
	case "last_edited_by":
		return userValue(p.LastEditedBy)
	case "unique_id":
		return uniqueIDValue(p.UniqueID)
	case "relation":
		ids := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			ids = append(ids, r.ID)
		}
		return nonEmptyList(ids)
	case "files":
		names := make([]string, 0, len(p.Files))
		for _, f := range p.Files {
			name := f.Name
			if name == "" {
				name = f.url()
			}
			names = append(names, name)
		}
		return nonEmptyList(names)
	case "formula":
		return formulaValue(p.Formula)
	case "rollup":
		return rollupValue(p.Rollup)
	default:
		return models.PropertyValue{}, false, fmt.Errorf("type %q: %w", p.Type, apperr.ErrUnsupportedProperty)
	}
}

func nonEmptyText(s string) (models.PropertyValue, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.PropertyValue{}, false, nil
	}
	return models.Text(s), true, nil
}

func optionalText(s *string) (models.PropertyValue, bool, error) {
	if s == nil {
		return models.PropertyValue{}, false, nil
	}
	return nonEmptyText(*s)
}

func nonEmptyList(items []string) (models.PropertyValue, bool, error) {
	if len(items) == 0 {
		return models.PropertyValue{}, false, nil
	}
	return models.StringList(items...), true, nil
}

func (u rawUser) displayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

func userValue(u *rawUser) (models.PropertyValue, bool, error) {
	if u == nil {
		return models.PropertyValue{}, false, nil
	}
	return nonEmptyText(u.displayName())
}

func uniqueIDValue(id *rawUniqueID) (models.PropertyValue, bool, error) {
	if id == nil || id.Number == nil {
		return models.PropertyValue{}, false, nil
	}
	n := strconv.FormatFloat(*id.Number, 'f', -1, 64)
	if id.Prefix != nil && *id.Prefix != "" {
		n = *id.Prefix + "-" + n
	}
	return models.Text(n), true, nil
}

func dateValue(d *rawDate) (models.PropertyValue, bool, error) {
	if d == nil || d.Start == "" {
		return models.PropertyValue{}, false, nil
	}
	return timestampValue(d.Start)
}

// timestampValue parses an ISO 8601 date or date-time. A bare date is
// midnight UTC.
func timestampValue(s string) (models.PropertyValue, bool, error) {
	if s == "" {
		return models.PropertyValue{}, false, nil
	}
	layout := time.RFC3339
	if len(s) == len(dateOnly) {
		layout = dateOnly
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return models.PropertyValue{}, false, fmt.Errorf("parse time %q: %w", s, err)
	}
	return models.Timestamp(t), true, nil
}

func formulaValue(f *rawFormula) (models.PropertyValue, bool, error) {
	if f == nil {
		return models.PropertyValue{}, false, nil
	}
	switch f.Type {
	case "string":
		return optionalText(f.String)
	case "number":
		if f.Number == nil {
			return models.PropertyValue{}, false, nil
		}
		return models.Number(*f.Number), true, nil
	case "boolean":
		if f.Boolean == nil {
			return models.PropertyValue{}, false, nil
		}
		return models.Boolean(*f.Boolean), true, nil
	case "date":
		return dateValue(f.Date)
	default:
		return models.PropertyValue{}, false, fmt.Errorf("formula type %q: %w", f.Type, apperr.ErrUnsupportedProperty)
	}
}

func rollupValue(r *rawRollup) (models.PropertyValue, bool, error) {
	if r == nil {
		return models.PropertyValue{}, false, nil
	}
	switch r.Type {
	case "number":
		if r.Number == nil {
			return models.PropertyValue{}, false, nil
		}
		return models.Number(*r.Number), true, nil
	case "date":
		return dateValue(r.Date)
	case "array":
		var items []string
		for _, elem := range r.Array {
			v, ok, err := propertyValue(elem)
			if err != nil {
				return models.PropertyValue{}, false, fmt.Errorf("rollup item: %w", err)
			}
			if !ok {
				continue
			}
			items = append(items, textItems(v)...)
		}
		return nonEmptyList(items)
	default:
		return models.PropertyValue{}, false, fmt.Errorf("rollup type %q: %w", r.Type, apperr.ErrUnsupportedProperty)
	}
}

// textItems flattens a value into list entries.
func textItems(v models.PropertyValue) []string {
	if list, ok := v.AsStringList(); ok {
		return list
	}
	out, err := property.ToJSON(v)
	if err != nil {
		return nil
	}
	switch x := out.(type) {
	case string:
		return []string{x}
	case float64:
		return []string{strconv.FormatFloat(x, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(x)}
	}
	return nil
}
