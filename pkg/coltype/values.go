package coltype

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the accepted encodings for date cell values, tried in
// order. Cells always store strings; time.Time shows up only for values
// set programmatically before serialization.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsEmpty reports whether a cell value counts as empty for filtering:
// nil, the empty string, or a zero-length sequence.
func IsEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// AsString renders a cell value as a plain string. Sequences join with
// a comma, nil renders empty.
func AsString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		return strings.Join(AsStrings(val), ", ")
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber extracts a numeric value from a cell. Strings parse as
// floats; anything unparseable reports false.
func AsNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsBool extracts a boolean from a cell. Non-zero numbers and the
// strings "true"/"checked"/"yes" count as true.
func AsBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "checked", "yes", "1":
			return true
		}
		return false
	default:
		return false
	}
}

// AsStrings extracts a string sequence from a cell. JSON decoding
// produces []interface{}, so both slice shapes are handled; a scalar
// string becomes a one-element sequence.
func AsStrings(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, AsString(item))
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// AsTime parses a cell value as a timestamp.
func AsTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// CalendarDay truncates a timestamp to midnight in its own location,
// for calendar-day comparisons.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}
