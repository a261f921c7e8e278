package entries

import (
	"log/slog"
	"time"
)

// Entry payloads carry timestamps as ISO strings with milliseconds.
const (
	entryTimeLayout     = "2006-01-02T15:04:05.000"
	entryTimeLayoutZulu = "2006-01-02T15:04:05.000Z"
)

// Project definitions express date and time formats with these tokens; they
// translate to Go reference layouts. An unknown format yields an empty cell.
var datetimeLayouts = map[string]string{
	"dd/MM/YYYY": "02/01/2006",
	"MM/dd/YYYY": "01/02/2006",
	"YYYY/MM/dd": "2006/01/02",
	"MM/YYYY":    "01/2006",
	"dd/MM":      "02/01",
	"HH:mm:ss":   "15:04:05",
	"hh:mm":      "03:04",
	"HH:mm":      "15:04",
	"mm:ss":      "04:05",
}

func formatDatetimeAnswer(raw string, datetimeFormat string) string {
	if raw == "" {
		return ""
	}

	layout, ok := datetimeLayouts[datetimeFormat]
	if !ok {
		return ""
	}

	parsed, err := parseEntryTime(raw)
	if err != nil {
		slog.Debug("could not parse datetime answer", slog.String("value", raw), slog.String("error", err.Error()))
		return ""
	}
	return parsed.Format(layout)
}

func parseEntryTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(entryTimeLayoutZulu, raw)
	if err == nil {
		return parsed, nil
	}
	return time.Parse(entryTimeLayout, raw)
}

// uploadedAtToISO converts the storage timestamp to the same ISO format the
// entry payloads use for created_at.
func uploadedAtToISO(t time.Time) string {
	return t.UTC().Format(entryTimeLayoutZulu)
}
