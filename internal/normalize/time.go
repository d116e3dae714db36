package normalize

import (
	"time"

	"github.com/tidwall/gjson"
)

// Layouts accepted for string timestamps. Zone-less layouts are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseTime reads a timestamp given as a string, as epoch milliseconds, or
// as a [year, month, day, hour, minute, second, nanos] array.
func parseTime(v gjson.Result) (time.Time, bool) {
	switch {
	case v.Type == gjson.String:
		s := v.String()
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	case v.Type == gjson.Number:
		ms := v.Int()
		if ms > 0 {
			return time.UnixMilli(ms).UTC(), true
		}
	case v.IsArray():
		return parseTimeArray(v.Array())
	}
	return time.Time{}, false
}

func parseTimeArray(parts []gjson.Result) (time.Time, bool) {
	if len(parts) < 3 {
		return time.Time{}, false
	}
	n := make([]int, 7)
	for i := 0; i < len(parts) && i < len(n); i++ {
		if parts[i].Type != gjson.Number {
			return time.Time{}, false
		}
		n[i] = int(parts[i].Int())
	}
	if n[1] < 1 || n[1] > 12 || n[2] < 1 || n[2] > 31 {
		return time.Time{}, false
	}
	return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], n[6], time.UTC), true
}
