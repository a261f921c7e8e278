package entries

import (
	"reflect"
	"testing"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/mapping"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

func csvContext() *ParseContext {
	return &ParseContext{
		ProjectSlug: "ec5-demo",
		Format:      FORMAT_CSV,
		MediaURLs:   testMediaURLs,
	}
}

func TestLocationHandler(t *testing.T) {
	handler := handlerForInputType(projectTypes.INPUT_TYPE_LOCATION)
	input := projectTypes.Input{Ref: "input-loc", Type: projectTypes.INPUT_TYPE_LOCATION}
	rule := mapping.InputRule{Show: true, MapTo: "site"}

	t.Run("csv column expansion", func(t *testing.T) {
		want := []string{"lat_site", "long_site", "accuracy_site", "UTM_Northing_site", "UTM_Easting_site", "UTM_Zone_site"}
		if got := handler.ColumnNames(input, "site", FORMAT_CSV); !reflect.DeepEqual(got, want) {
			t.Errorf("unexpected columns: %v", got)
		}
	})

	t.Run("json single column", func(t *testing.T) {
		if got := handler.ColumnNames(input, "site", FORMAT_JSON); !reflect.DeepEqual(got, []string{"site"}) {
			t.Errorf("unexpected columns: %v", got)
		}
	})

	t.Run("valid coordinates", func(t *testing.T) {
		answer := map[string]interface{}{"latitude": 51.5, "longitude": 0.0, "accuracy": 4.0}
		cols := handler.ParseAnswer(input, rule, answer, csvContext())
		if len(cols) != 6 {
			t.Fatalf("expected 6 values, got %d", len(cols))
		}
		if cols[0].Value != 51.5 || cols[1].Value != 0.0 {
			t.Errorf("unexpected coordinates: %v, %v", cols[0].Value, cols[1].Value)
		}
		if cols[5].Value != "31U" {
			t.Errorf("unexpected UTM zone: %v", cols[5].Value)
		}
	})

	t.Run("missing answer yields empty values", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, nil, csvContext())
		if len(cols) != 6 {
			t.Fatalf("expected 6 values, got %d", len(cols))
		}
		for _, col := range cols {
			if col.Value != "" {
				t.Errorf("column %s not empty: %v", col.Name, col.Value)
			}
		}
	})

	t.Run("non numeric coordinates yield empty values", func(t *testing.T) {
		answer := map[string]interface{}{"latitude": "abc", "longitude": 0.0}
		cols := handler.ParseAnswer(input, rule, answer, csvContext())
		for _, col := range cols {
			if col.Value != "" {
				t.Errorf("column %s not empty: %v", col.Name, col.Value)
			}
		}
	})

	t.Run("json nested object", func(t *testing.T) {
		pc := csvContext()
		pc.Format = FORMAT_JSON
		answer := map[string]interface{}{"latitude": 51.5, "longitude": 0.0}
		cols := handler.ParseAnswer(input, rule, answer, pc)
		if len(cols) != 1 {
			t.Fatalf("expected 1 value, got %d", len(cols))
		}
		obj, ok := cols[0].Value.(map[string]interface{})
		if !ok {
			t.Fatalf("expected nested object, got %T", cols[0].Value)
		}
		if obj[LOC_KEY_LATITUDE] != 51.5 || obj[LOC_KEY_UTM_ZONE] != "31U" {
			t.Errorf("unexpected nested values: %v", obj)
		}
	})
}

func TestMultipleChoiceHandler(t *testing.T) {
	handler := handlerForInputType(projectTypes.INPUT_TYPE_CHECKBOX)
	input := projectTypes.Input{Ref: "input-tags", Type: projectTypes.INPUT_TYPE_CHECKBOX}
	rule := mapping.InputRule{Show: true, MapTo: "tags", PossibleAnswers: map[string]string{
		"pa1": "Red",
		"pa2": "Blue",
		"pa3": "Green, Teal",
	}}

	t.Run("csv joined labels", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, []interface{}{"pa1", "pa2"}, csvContext())
		if cols[0].Value != "Red, Blue" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("label containing comma is quoted", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, []interface{}{"pa1", "pa3"}, csvContext())
		if cols[0].Value != `Red, "Green, Teal"` {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("unmapped refs are dropped", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, []interface{}{"pa1", "unknown"}, csvContext())
		if cols[0].Value != "Red" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("json label list", func(t *testing.T) {
		pc := csvContext()
		pc.Format = FORMAT_JSON
		cols := handler.ParseAnswer(input, rule, []interface{}{"pa2", "pa1"}, pc)
		if !reflect.DeepEqual(cols[0].Value, []string{"Blue", "Red"}) {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("non list answer yields empty cell", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, "pa1", csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})
}

func TestSingleChoiceHandler(t *testing.T) {
	handler := handlerForInputType(projectTypes.INPUT_TYPE_RADIO)
	input := projectTypes.Input{Ref: "input-color", Type: projectTypes.INPUT_TYPE_RADIO}
	rule := mapping.InputRule{Show: true, MapTo: "color", PossibleAnswers: map[string]string{"pa1": "Red"}}

	t.Run("mapped answer", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, "pa1", csvContext())
		if cols[0].Value != "Red" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("unmapped answer", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, "unknown", csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})
}

func TestNumericHandlers(t *testing.T) {
	intInput := projectTypes.Input{Ref: "input-count", Type: projectTypes.INPUT_TYPE_INTEGER}
	decInput := projectTypes.Input{Ref: "input-weight", Type: projectTypes.INPUT_TYPE_DECIMAL}
	rule := mapping.InputRule{Show: true, MapTo: "value"}

	intHandler := handlerForInputType(projectTypes.INPUT_TYPE_INTEGER)
	decHandler := handlerForInputType(projectTypes.INPUT_TYPE_DECIMAL)

	t.Run("integer keeps empty answer", func(t *testing.T) {
		cols := intHandler.ParseAnswer(intInput, rule, "", csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("integer keeps missing answer empty", func(t *testing.T) {
		cols := intHandler.ParseAnswer(intInput, rule, nil, csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("integer coerces numeric string", func(t *testing.T) {
		cols := intHandler.ParseAnswer(intInput, rule, "12", csvContext())
		if cols[0].Value != 12 {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("integer collapses garbage to zero", func(t *testing.T) {
		cols := intHandler.ParseAnswer(intInput, rule, "abc", csvContext())
		if cols[0].Value != 0 {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("decimal keeps empty answer", func(t *testing.T) {
		cols := decHandler.ParseAnswer(decInput, rule, "", csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("decimal keeps missing answer empty", func(t *testing.T) {
		cols := decHandler.ParseAnswer(decInput, rule, nil, csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("decimal coerces numeric string", func(t *testing.T) {
		cols := decHandler.ParseAnswer(decInput, rule, "2.5", csvContext())
		if cols[0].Value != 2.5 {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})
}

func TestMediaHandler(t *testing.T) {
	handler := handlerForInputType(projectTypes.INPUT_TYPE_PHOTO)
	input := projectTypes.Input{Ref: "input-photo", Type: projectTypes.INPUT_TYPE_PHOTO}
	rule := mapping.InputRule{Show: true, MapTo: "photo"}

	t.Run("public project gets download url", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, "abc.jpg", csvContext())
		want := "https://five.epicollect.net/api/media/ec5-demo?type=photo&format=entry_original&name=abc.jpg"
		if cols[0].Value != want {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("private project keeps filename", func(t *testing.T) {
		pc := csvContext()
		pc.IsPrivate = true
		cols := handler.ParseAnswer(input, rule, "abc.jpg", pc)
		if cols[0].Value != "abc.jpg" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})

	t.Run("empty answer stays empty", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, nil, csvContext())
		if cols[0].Value != "" {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})
}

func TestBranchCountHandler(t *testing.T) {
	handler := handlerForInputType(projectTypes.INPUT_TYPE_BRANCH)
	input := projectTypes.Input{Ref: "input-branch", Type: projectTypes.INPUT_TYPE_BRANCH}
	rule := mapping.InputRule{Show: true, MapTo: "sightings"}

	pc := csvContext()
	pc.BranchCounts = map[string]int{"input-branch": 3}

	cols := handler.ParseAnswer(input, rule, nil, pc)
	if cols[0].Value != 3 {
		t.Errorf("unexpected value: %v", cols[0].Value)
	}

	t.Run("missing count defaults to zero", func(t *testing.T) {
		cols := handler.ParseAnswer(input, rule, nil, csvContext())
		if cols[0].Value != 0 {
			t.Errorf("unexpected value: %v", cols[0].Value)
		}
	})
}

func TestHandlerFallback(t *testing.T) {
	for _, inputType := range []string{
		projectTypes.INPUT_TYPE_TEXT,
		projectTypes.INPUT_TYPE_TEXTAREA,
		projectTypes.INPUT_TYPE_PHONE,
		projectTypes.INPUT_TYPE_BARCODE,
		"some-future-type",
	} {
		if handlerForInputType(inputType) != defaultHandler {
			t.Errorf("type %s should fall back to pass-through", inputType)
		}
	}
}
