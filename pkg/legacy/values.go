package legacy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type record map[string]any

// first returns the value of the first key present in r.
func (r record) first(keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func (r record) str(keys ...string) string {
	value, ok := r.first(keys...)
	if !ok {
		return ""
	}
	return toString(value)
}

func (r record) boolean(fallback bool, keys ...string) bool {
	value, ok := r.first(keys...)
	if !ok {
		return fallback
	}
	if b, ok := toBool(value); ok {
		return b
	}
	return fallback
}

func (r record) integer(keys ...string) (int, bool) {
	value, ok := r.first(keys...)
	if !ok {
		return 0, false
	}
	return toIntValue(value)
}

func toRecord(value any) (record, bool) {
	switch v := value.(type) {
	case map[string]any:
		return record(v), true
	case record:
		return v, true
	case map[any]any:
		out := make(record, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	}
	return nil, false
}

func toList(value any) ([]any, bool) {
	list, ok := value.([]any)
	return list, ok
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b, true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "si", "sí", "yes":
			return true, true
		case "no":
			return false, true
		}
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	}
	return false, false
}

func toIntValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.Atoi(trimmed)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// toOptions accepts an array of values or a comma separated string.
func toOptions(value any) ([]string, bool) {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if rec, ok := toRecord(item); ok {
				item = firstNonEmpty(rec.str("label", "value", "nombre"))
			}
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		out := []string{}
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
