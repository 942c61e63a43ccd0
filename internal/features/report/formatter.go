package report

import (
	"math"
	"strconv"
	"time"

	"go-wms/internal/features/template"
)

// FormatRows projects raw rows onto the configured fields and coerces
// each cell by its declared type. Missing values become nil; nil input
// short-circuits regardless of type.
func FormatRows(rows []map[string]any, fields []template.FieldSpec) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, raw := range rows {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			value, ok := raw[f.Field]
			if !ok || value == nil {
				row[f.Field] = nil
				continue
			}
			row[f.Field] = coerceValue(value, f.Type)
		}
		out = append(out, row)
	}
	return out
}

func coerceValue(value any, fieldType string) any {
	switch fieldType {
	case template.FieldTypeDecimal, template.FieldTypePercentage:
		f, ok := toFloat(value)
		if !ok {
			return value
		}
		return math.Round(f*100) / 100
	case template.FieldTypeCurrency:
		f, ok := toFloat(value)
		if !ok {
			return value
		}
		return strconv.FormatFloat(f, 'f', 2, 64)
	case template.FieldTypeDate:
		t, ok := toTime(value)
		if !ok {
			return value
		}
		return t.Format("2006-01-02")
	case template.FieldTypeDatetime:
		t, ok := toTime(value)
		if !ok {
			return value
		}
		return t.Format("2006-01-02 15:04:05")
	case template.FieldTypeBoolean:
		b, ok := toBool(value)
		if !ok {
			return value
		}
		return b
	default:
		return value
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	case int, int32, int64:
		f, _ := toFloat(v)
		return f != 0, true
	case float64:
		return v != 0, true
	default:
		return false, false
	}
}
