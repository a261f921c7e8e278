package entries

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

func valueToStr(value interface{}) string {
	if value == nil {
		return ""
	}

	var str string
	switch cell := value.(type) {
	case string:
		str = cell
	case int:
		str = strconv.Itoa(cell)
	case int64:
		str = strconv.FormatInt(cell, 10)
	case float64:
		str = strconv.FormatFloat(cell, 'f', -1, 64)
	case bool:
		str = strconv.FormatBool(cell)
	default:
		jsonBytes, err := json.Marshal(cell)
		if err != nil {
			slog.Debug("error while serializing cell value", slog.String("error", err.Error()))
			return ""
		}
		str = string(jsonBytes)
	}
	return str
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if v == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// toInt mirrors a loose integer cast: numeric strings parse, anything else
// collapses to 0.
func toInt(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
