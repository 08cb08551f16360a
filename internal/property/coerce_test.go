package property

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
)

func TestToJSON(t *testing.T) {
	cases := []struct {
		name string
		in   models.PropertyValue
		want any
	}{
		{"text", models.Text("hello"), "hello"},
		{"numeric text stays text", models.Text("42"), "42"},
		{"number", models.Number(3.5), 3.5},
		{"boolean", models.Boolean(true), true},
		{"list", models.StringList("a", "b"), []string{"a", "b"}},
		{"empty list", models.StringList(), []string{}},
		{"timestamp", models.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "2024-01-01T00:00:00Z"},
		{"timestamp converted to utc", models.Timestamp(time.Date(2024, 1, 1, 2, 30, 0, 0, time.FixedZone("x", 3600))), "2024-01-01T01:30:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToJSON(tc.in)
			if err != nil {
				t.Fatalf("ToJSON: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestToJSON_Rejects(t *testing.T) {
	for name, v := range map[string]models.PropertyValue{
		"zero value": {},
		"nan":        models.Number(math.NaN()),
		"inf":        models.Number(math.Inf(1)),
	} {
		if _, err := ToJSON(v); !errors.Is(err, apperr.ErrUnsupportedProperty) {
			t.Errorf("%s: err = %v, want ErrUnsupportedProperty", name, err)
		}
		if _, err := FrontmatterScalar(v); !errors.Is(err, apperr.ErrUnsupportedProperty) {
			t.Errorf("%s: frontmatter err = %v, want ErrUnsupportedProperty", name, err)
		}
	}
}

func TestFrontmatterScalar(t *testing.T) {
	cases := []struct {
		name string
		in   models.PropertyValue
		want string
	}{
		{"plain text", models.Text("Sample Page"), "Sample Page"},
		{"empty text", models.Text(""), `""`},
		{"leading dash", models.Text("- item"), `"- item"`},
		{"leading hash", models.Text("#tag"), `"#tag"`},
		{"colon space", models.Text("a: b"), `"a: b"`},
		{"comment", models.Text("a #b"), `"a #b"`},
		{"padded", models.Text(" x "), `" x "`},
		{"newline", models.Text("a\nb"), `"a\nb"`},
		{"quote inside", models.Text(`say "hi"`), `say "hi"`},
		{"bool-like", models.Text("true"), `"true"`},
		{"int-like", models.Text("42"), `"42"`},
		{"null-like", models.Text("null"), `"null"`},
		{"yaml 1.1 yes", models.Text("Yes"), `"Yes"`},
		{"yaml 1.1 off", models.Text("off"), `"off"`},
		{"yaml 1.1 y", models.Text("y"), `"y"`},
		{"tilde null", models.Text("~"), `"~"`},
		{"date-like", models.Text("2024-01-01"), `"2024-01-01"`},
		{"number", models.Number(42), "42"},
		{"fraction", models.Number(0.25), "0.25"},
		{"negative", models.Number(-7.5), "-7.5"},
		{"boolean", models.Boolean(false), "false"},
		{"midnight", models.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "2024-01-01"},
		{"not midnight", models.Timestamp(time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)), "2024-01-01T09:15:00Z"},
		{"list", models.StringList("a", "true"), "  - a\n  - \"true\""},
		{"empty list", models.StringList(), "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FrontmatterScalar(tc.in)
			if err != nil {
				t.Fatalf("FrontmatterScalar: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMarshalProperties_KeepsOrder(t *testing.T) {
	props := models.NewPropertyMap()
	props.Set("Zeta", models.Text("z"))
	props.Set("Alpha", models.Number(1))
	props.Set("Tags", models.StringList())
	props.Set("Done", models.Boolean(true))

	raw, err := MarshalProperties(props)
	if err != nil {
		t.Fatalf("MarshalProperties: %v", err)
	}
	want := `{"Zeta":"z","Alpha":1,"Tags":[],"Done":true}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
}

func TestMarshalProperties_Empty(t *testing.T) {
	raw, err := MarshalProperties(models.NewPropertyMap())
	if err != nil {
		t.Fatalf("MarshalProperties: %v", err)
	}
	if string(raw) != "{}" {
		t.Errorf("got %s, want {}", raw)
	}
}

func TestMarshalProperties_NamesFailingKey(t *testing.T) {
	props := models.NewPropertyMap()
	props.Set("Broken", models.PropertyValue{})

	_, err := MarshalProperties(props)
	if !errors.Is(err, apperr.ErrUnsupportedProperty) {
		t.Fatalf("err = %v, want ErrUnsupportedProperty", err)
	}
}
