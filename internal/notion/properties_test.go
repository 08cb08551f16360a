package notion

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
)

func decodeOne(t *testing.T, raw string) (models.PropertyValue, bool, error) {
	t.Helper()
	var p rawProperty
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return propertyValue(p)
}

func TestPropertyValue(t *testing.T) {
	midnight := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		raw  string
		want models.PropertyValue
	}{
		{"title", `{"type":"title","title":[{"plain_text":"  Hello "},{"plain_text":"World  "}]}`, models.Text("Hello World")},
		{"rich text", `{"type":"rich_text","rich_text":[{"plain_text":"note"}]}`, models.Text("note")},
		{"select", `{"type":"select","select":{"name":"High"}}`, models.Text("High")},
		{"status", `{"type":"status","status":{"name":"Done"}}`, models.Text("Done")},
		{"multi select", `{"type":"multi_select","multi_select":[{"name":"a"},{"name":"b"}]}`, models.StringList("a", "b")},
		{"checkbox false", `{"type":"checkbox","checkbox":false}`, models.Boolean(false)},
		{"number", `{"type":"number","number":2.5}`, models.Number(2.5)},
		{"url", `{"type":"url","url":"https://example.com"}`, models.Text("https://example.com")},
		{"email", `{"type":"email","email":"a@example.com"}`, models.Text("a@example.com")},
		{"phone", `{"type":"phone_number","phone_number":"+1 555"}`, models.Text("+1 555")},
		{"date only", `{"type":"date","date":{"start":"2024-01-01","end":null}}`, models.Timestamp(midnight)},
		{"date time", `{"type":"date","date":{"start":"2024-01-01T10:30:00.000+02:00"}}`, models.Timestamp(time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC))},
		{"created time", `{"type":"created_time","created_time":"2024-01-01T00:00:00.000Z"}`, models.Timestamp(midnight)},
		{"last edited time", `{"type":"last_edited_time","last_edited_time":"2024-01-01T00:00:00.000Z"}`, models.Timestamp(midnight)},
		{"people", `{"type":"people","people":[{"id":"u1","name":"Ada"},{"id":"u2"}]}`, models.StringList("Ada", "u2")},
		{"created by", `{"type":"created_by","created_by":{"id":"u1","name":"Ada"}}`, models.Text("Ada")},
		{"last edited by", `{"type":"last_edited_by","last_edited_by":{"id":"u2"}}`, models.Text("u2")},
		{"unique id", `{"type":"unique_id","unique_id":{"prefix":"TASK","number":42}}`, models.Text("TASK-42")},
		{"unique id without prefix", `{"type":"unique_id","unique_id":{"prefix":null,"number":7}}`, models.Text("7")},
		{"relation", `{"type":"relation","relation":[{"id":"r1"},{"id":"r2"}],"has_more":false}`, models.StringList("r1", "r2")},
		{"files", `{"type":"files","files":[{"name":"a.pdf","type":"file","file":{"url":"https://f/a"}},{"name":"","type":"external","external":{"url":"https://x/b"}}]}`, models.StringList("a.pdf", "https://x/b")},
		{"formula string", `{"type":"formula","formula":{"type":"string","string":"calc"}}`, models.Text("calc")},
		{"formula number", `{"type":"formula","formula":{"type":"number","number":3}}`, models.Number(3)},
		{"formula boolean", `{"type":"formula","formula":{"type":"boolean","boolean":true}}`, models.Boolean(true)},
		{"formula date", `{"type":"formula","formula":{"type":"date","date":{"start":"2024-01-01"}}}`, models.Timestamp(midnight)},
		{"rollup number", `{"type":"rollup","rollup":{"type":"number","number":10,"function":"sum"}}`, models.Number(10)},
		{"rollup array", `{"type":"rollup","rollup":{"type":"array","array":[{"type":"title","title":[{"plain_text":"A"}]},{"type":"number","number":2},{"type":"multi_select","multi_select":[{"name":"x"},{"name":"y"}]}]}}`, models.StringList("A", "2", "x", "y")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := decodeOne(t, tc.raw)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if !ok {
				t.Fatal("value omitted")
			}
			if !sameValue(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestPropertyValue_Omitted(t *testing.T) {
	for _, raw := range []string{
		`{"type":"title","title":[]}`,
		`{"type":"rich_text","rich_text":[{"plain_text":"   "}]}`,
		`{"type":"select","select":null}`,
		`{"type":"multi_select","multi_select":[]}`,
		`{"type":"number","number":null}`,
		`{"type":"url","url":null}`,
		`{"type":"date","date":null}`,
		`{"type":"people","people":[]}`,
		`{"type":"formula","formula":{"type":"string","string":null}}`,
	} {
		_, ok, err := decodeOne(t, raw)
		if err != nil || ok {
			t.Errorf("%s: ok=%v err=%v, want omitted", raw, ok, err)
		}
	}
}

func TestPropertyValue_Unsupported(t *testing.T) {
	for _, raw := range []string{
		`{"type":"button","button":{}}`,
		`{"type":"formula","formula":{"type":"mystery"}}`,
		`{"type":"rollup","rollup":{"type":"incomplete"}}`,
	} {
		if _, _, err := decodeOne(t, raw); !errors.Is(err, apperr.ErrUnsupportedProperty) {
			t.Errorf("%s: err = %v, want ErrUnsupportedProperty", raw, err)
		}
	}
}

func TestDecodeProperties_KeepsPayloadOrder(t *testing.T) {
	raw := orderedmap.New[string, json.RawMessage]()
	payload := `{"Zeta":{"type":"checkbox","checkbox":true},"Alpha":{"type":"number","number":1},"Mid":{"type":"url","url":null}}`
	if err := json.Unmarshal([]byte(payload), raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	props, err := decodeProperties(raw)
	if err != nil {
		t.Fatalf("decodeProperties: %v", err)
	}
	if got := props.Keys(); !reflect.DeepEqual(got, []string{"Zeta", "Alpha"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestDecodeProperties_NamesBadProperty(t *testing.T) {
	raw := orderedmap.New[string, json.RawMessage]()
	raw.Set("Action", json.RawMessage(`{"type":"button","button":{}}`))

	_, err := decodeProperties(raw)
	if !errors.Is(err, apperr.ErrUnsupportedProperty) {
		t.Fatalf("err = %v", err)
	}
	if want := `property "Action"`; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name the property", err)
	}
}

func sameValue(a, b models.PropertyValue) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	if ta, ok := a.AsTimestamp(); ok {
		tb, _ := b.AsTimestamp()
		return ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
