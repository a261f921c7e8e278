package entries

import (
	"log/slog"
	"strings"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/mapping"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/geo"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

// ParseContext carries the per-entry collaborator state the handlers need.
type ParseContext struct {
	ProjectSlug  string
	IsPrivate    bool
	Format       string
	MediaURLs    MediaURLBuilder
	BranchCounts map[string]int
}

// InputTypeHandler serializes answers of one input type. ColumnNames and
// ParseAnswer must return the same number of items for any answer value, so
// header and rows can never drift apart.
type InputTypeHandler interface {
	ColumnNames(input projectTypes.Input, mapTo string, format string) []string
	ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn
}

var inputTypeHandlers = map[string]InputTypeHandler{
	projectTypes.INPUT_TYPE_RADIO:         &singleChoiceHandler{},
	projectTypes.INPUT_TYPE_DROPDOWN:      &singleChoiceHandler{},
	projectTypes.INPUT_TYPE_CHECKBOX:      &multipleChoiceHandler{},
	projectTypes.INPUT_TYPE_SEARCH_SINGLE: &multipleChoiceHandler{},
	projectTypes.INPUT_TYPE_SEARCH_MULTI:  &multipleChoiceHandler{},
	projectTypes.INPUT_TYPE_LOCATION:      &locationHandler{},
	projectTypes.INPUT_TYPE_BRANCH:        &branchCountHandler{},
	projectTypes.INPUT_TYPE_DATE:          &datetimeHandler{},
	projectTypes.INPUT_TYPE_TIME:          &datetimeHandler{},
	projectTypes.INPUT_TYPE_PHOTO:         &mediaHandler{},
	projectTypes.INPUT_TYPE_AUDIO:         &mediaHandler{},
	projectTypes.INPUT_TYPE_VIDEO:         &mediaHandler{},
	projectTypes.INPUT_TYPE_INTEGER:       &integerHandler{},
	projectTypes.INPUT_TYPE_DECIMAL:       &decimalHandler{},
}

// handlerForInputType falls back to pass-through for text, textarea, phone,
// barcode and any unknown type. Group and readme inputs never reach the
// handlers; the parser skips them during iteration.
func handlerForInputType(inputType string) InputTypeHandler {
	if h, ok := inputTypeHandlers[inputType]; ok {
		return h
	}
	return defaultHandler
}

var defaultHandler InputTypeHandler = &passThroughHandler{}

// singleChoiceHandler resolves radio and dropdown answers through the
// possible answer map of the mapping.
type singleChoiceHandler struct{}

func (h *singleChoiceHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *singleChoiceHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	answerRef := toString(answer)
	return []ParsedColumn{{Name: rule.MapTo, Value: rule.PossibleAnswers[answerRef]}}
}

// multipleChoiceHandler serializes checkbox and search answers: a list of
// possible answer refs resolved independently.
type multipleChoiceHandler struct{}

func (h *multipleChoiceHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *multipleChoiceHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	labels := []string{}
	if refs, ok := answer.([]interface{}); ok {
		for _, ref := range refs {
			label := rule.PossibleAnswers[toString(ref)]
			if label == "" {
				continue
			}
			labels = append(labels, label)
		}
	}

	if pc.Format == FORMAT_JSON {
		return []ParsedColumn{{Name: rule.MapTo, Value: labels}}
	}

	// CSV: one cell, labels joined; a label containing a comma is wrapped in
	// double quotes before joining
	quoted := make([]string, len(labels))
	for i, label := range labels {
		if strings.Contains(label, ",") {
			label = `"` + label + `"`
		}
		quoted[i] = label
	}
	return []ParsedColumn{{Name: rule.MapTo, Value: strings.Join(quoted, ", ")}}
}

// locationHandler always expands to six values: latitude, longitude,
// accuracy and the UTM triple. Missing or non-numeric coordinates yield six
// empty values; a conversion failure is never fatal.
type locationHandler struct{}

func (h *locationHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	if format == FORMAT_JSON {
		return []string{mapTo}
	}
	return []string{
		LOC_PREFIX_LATITUDE + mapTo,
		LOC_PREFIX_LONGITUDE + mapTo,
		LOC_PREFIX_ACCURACY + mapTo,
		LOC_PREFIX_UTM_NORTHING + mapTo,
		LOC_PREFIX_UTM_EASTING + mapTo,
		LOC_PREFIX_UTM_ZONE + mapTo,
	}
}

func (h *locationHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	var latitude, longitude, accuracy interface{} = "", "", ""
	var northing, easting, zone interface{} = "", "", ""

	if loc, ok := answer.(map[string]interface{}); ok {
		lat, latOK := toFloat(loc["latitude"])
		long, longOK := toFloat(loc["longitude"])

		if latOK && longOK {
			latitude = loc["latitude"]
			longitude = loc["longitude"]
			if acc, ok := loc["accuracy"]; ok && acc != nil {
				accuracy = acc
			}

			utm, err := geo.ToUTM(long, lat)
			if err != nil {
				slog.Debug("UTM conversion failed", slog.String("inputRef", input.Ref), slog.String("error", err.Error()))
			} else {
				northing = utm.Northing
				easting = utm.Easting
				zone = utm.Zone
			}
		}
	}

	if pc.Format == FORMAT_JSON {
		return []ParsedColumn{{Name: rule.MapTo, Value: map[string]interface{}{
			LOC_KEY_LATITUDE:     latitude,
			LOC_KEY_LONGITUDE:    longitude,
			LOC_KEY_ACCURACY:     accuracy,
			LOC_KEY_UTM_NORTHING: northing,
			LOC_KEY_UTM_EASTING:  easting,
			LOC_KEY_UTM_ZONE:     zone,
		}}}
	}

	return []ParsedColumn{
		{Name: LOC_PREFIX_LATITUDE + rule.MapTo, Value: latitude},
		{Name: LOC_PREFIX_LONGITUDE + rule.MapTo, Value: longitude},
		{Name: LOC_PREFIX_ACCURACY + rule.MapTo, Value: accuracy},
		{Name: LOC_PREFIX_UTM_NORTHING + rule.MapTo, Value: northing},
		{Name: LOC_PREFIX_UTM_EASTING + rule.MapTo, Value: easting},
		{Name: LOC_PREFIX_UTM_ZONE + rule.MapTo, Value: zone},
	}
}

// branchCountHandler reports how many branch entries exist under the owning
// entry, not branch content. The counts are precomputed per entry row.
type branchCountHandler struct{}

func (h *branchCountHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *branchCountHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	return []ParsedColumn{{Name: rule.MapTo, Value: pc.BranchCounts[input.Ref]}}
}

type datetimeHandler struct{}

func (h *datetimeHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *datetimeHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	return []ParsedColumn{{Name: rule.MapTo, Value: formatDatetimeAnswer(toString(answer), input.DatetimeFormat)}}
}

// mediaHandler emits a download URL for public projects and the bare
// filename for private ones, where media access stays behind authentication.
type mediaHandler struct{}

func (h *mediaHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *mediaHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	filename := toString(answer)
	if filename == "" || pc.IsPrivate {
		return []ParsedColumn{{Name: rule.MapTo, Value: filename}}
	}

	mediaType, format := mediaParamsForInputType(input.Type)
	url := pc.MediaURLs.BuildURL(pc.ProjectSlug, mediaType, format, filename)
	return []ParsedColumn{{Name: rule.MapTo, Value: url}}
}

type integerHandler struct{}

func (h *integerHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *integerHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	if isEmptyAnswer(answer) {
		return []ParsedColumn{{Name: rule.MapTo, Value: ""}}
	}
	return []ParsedColumn{{Name: rule.MapTo, Value: toInt(answer)}}
}

type decimalHandler struct{}

func (h *decimalHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *decimalHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	if isEmptyAnswer(answer) {
		return []ParsedColumn{{Name: rule.MapTo, Value: ""}}
	}
	value, _ := toFloat(answer)
	return []ParsedColumn{{Name: rule.MapTo, Value: value}}
}

// isEmptyAnswer treats an unanswered question (nil) the same as an empty
// string; numeric cells must stay empty instead of becoming a fabricated 0.
func isEmptyAnswer(answer interface{}) bool {
	return answer == nil || answer == ""
}

// passThroughHandler covers text, textarea, phone, barcode and any type the
// table does not know.
type passThroughHandler struct{}

func (h *passThroughHandler) ColumnNames(input projectTypes.Input, mapTo string, format string) []string {
	return []string{mapTo}
}

func (h *passThroughHandler) ParseAnswer(input projectTypes.Input, rule mapping.InputRule, answer interface{}, pc *ParseContext) []ParsedColumn {
	if answer == nil {
		answer = ""
	}
	return []ParsedColumn{{Name: rule.MapTo, Value: answer}}
}
