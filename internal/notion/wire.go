package notion

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/notionmd/internal/models"
)

// rawPage is the page object returned by GET /v1/pages/{id}.
type rawPage struct {
	ID             string                                         `json:"id"`
	LastEditedTime time.Time                                      `json:"last_edited_time"`
	Properties     *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
}

// listResponse is the envelope of every paginated list endpoint.
type listResponse[T any] struct {
	Results    []T    `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type rawRef struct {
	ID string `json:"id"`
}

type rawRichText struct {
	PlainText   string  `json:"plain_text"`
	Href        *string `json:"href"`
	Annotations struct {
		Bold          bool `json:"bold"`
		Italic        bool `json:"italic"`
		Strikethrough bool `json:"strikethrough"`
		Code          bool `json:"code"`
	} `json:"annotations"`
}

func richText(in []rawRichText) models.RichText {
	out := make(models.RichText, 0, len(in))
	for _, r := range in {
		span := models.Span{
			Text: r.PlainText,
			Annotations: models.Annotations{
				Bold:          r.Annotations.Bold,
				Italic:        r.Annotations.Italic,
				Strikethrough: r.Annotations.Strikethrough,
				Code:          r.Annotations.Code,
			},
		}
		if r.Href != nil {
			span.Link = *r.Href
		}
		out = append(out, span)
	}
	return out
}

func plainText(in []rawRichText) string {
	return richText(in).Plain()
}

type rawUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rawOption struct {
	Name string `json:"name"`
}

type rawDate struct {
	Start string `json:"start"`
}

type rawUniqueID struct {
	Prefix *string  `json:"prefix"`
	Number *float64 `json:"number"`
}

type rawFileRef struct {
	URL string `json:"url"`
}

type rawFile struct {
	Name     string      `json:"name"`
	External *rawFileRef `json:"external"`
	File     *rawFileRef `json:"file"`
}

func (f rawFile) url() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

type rawFormula struct {
	Type    string   `json:"type"`
	String  *string  `json:"string"`
	Number  *float64 `json:"number"`
	Boolean *bool    `json:"boolean"`
	Date    *rawDate `json:"date"`
}

type rawRollup struct {
	Type   string        `json:"type"`
	Number *float64      `json:"number"`
	Date   *rawDate      `json:"date"`
	Array  []rawProperty `json:"array"`
}

// rawProperty is one entry of a page's properties object. Only the field
// named by Type is populated.
type rawProperty struct {
	Type           string        `json:"type"`
	Title          []rawRichText `json:"title"`
	RichText       []rawRichText `json:"rich_text"`
	Select         *rawOption    `json:"select"`
	Status         *rawOption    `json:"status"`
	MultiSelect    []rawOption   `json:"multi_select"`
	Checkbox       bool          `json:"checkbox"`
	Number         *float64      `json:"number"`
	URL            *string       `json:"url"`
	Email          *string       `json:"email"`
	PhoneNumber    *string       `json:"phone_number"`
	Date           *rawDate      `json:"date"`
	CreatedTime    string        `json:"created_time"`
	LastEditedTime string        `json:"last_edited_time"`
	People         []rawUser     `json:"people"`
	CreatedBy      *rawUser      `json:"created_by"`
	LastEditedBy   *rawUser      `json:"last_edited_by"`
	UniqueID       *rawUniqueID  `json:"unique_id"`
	Relation       []rawRef      `json:"relation"`
	Files          []rawFile     `json:"files"`
	Formula        *rawFormula   `json:"formula"`
	Rollup         *rawRollup    `json:"rollup"`
}

// blockPayload is the union of the type-specific block fields used here.
type blockPayload struct {
	RichText []rawRichText   `json:"rich_text"`
	Checked  bool            `json:"checked"`
	Language string          `json:"language"`
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	Caption  []rawRichText   `json:"caption"`
	Name     string          `json:"name"`
	External *rawFileRef     `json:"external"`
	File     *rawFileRef     `json:"file"`
	Cells    [][]rawRichText `json:"cells"`
}

// rawBlock is a block object. Its type-specific payload lives under a key
// named after the type.
type rawBlock struct {
	ID          string
	Type        string
	HasChildren bool
	Payload     blockPayload
}

func (b *rawBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	b.ID, b.Type, b.HasChildren = head.ID, head.Type, head.HasChildren

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields[head.Type]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &b.Payload); err != nil {
			return err
		}
	}
	return nil
}
