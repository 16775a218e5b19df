package metadata

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are the accepted serialized timestamp forms, tried in order.
// Bare forms without a zone designator are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp into a UTC instant with nanosecond
// precision. Both "Z" and "+00:00" zone forms are accepted, as is a bare
// timestamp without a zone.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

// FormatTime serializes an instant as ISO-8601 UTC with an explicit "+00:00"
// offset and up to nanosecond precision, trimming trailing fractional zeros.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format("2006-01-02T15:04:05.999999999") + "+00:00"
}

// TimePeriod is the start/end interval attached to stations, runs and
// channels.
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

func (tp TimePeriod) toMap(m map[string]any, prefix string) {
	m[prefix+"time_period.start"] = FormatTime(tp.Start)
	m[prefix+"time_period.end"] = FormatTime(tp.End)
}

func (tp *TimePeriod) fromMap(m map[string]any, prefix string) error {
	if v, ok := m[prefix+"time_period.start"]; ok {
		t, err := coerceTime(v)
		if err != nil {
			return fmt.Errorf("time_period.start: %w", err)
		}
		tp.Start = t
	}
	if v, ok := m[prefix+"time_period.end"]; ok {
		t, err := coerceTime(v)
		if err != nil {
			return fmt.Errorf("time_period.end: %w", err)
		}
		tp.End = t
	}

	return nil
}

func coerceTime(v any) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv.UTC(), nil
	case string:
		if tv == "" {
			return time.Time{}, nil
		}
		return ParseTime(tv)
	default:
		return time.Time{}, fmt.Errorf("cannot interpret %T as a time", v)
	}
}

func coerceFloat(v any) (float64, error) {
	switch fv := v.(type) {
	case float64:
		return fv, nil
	case float32:
		return float64(fv), nil
	case int:
		return float64(fv), nil
	case int64:
		return float64(fv), nil
	default:
		return 0, fmt.Errorf("cannot interpret %T as a number", v)
	}
}

func coerceString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	return "", fmt.Errorf("cannot interpret %T as a string", v)
}

// coerceStrings normalizes empty input to nil so list fields round-trip
// through maps and JSON without turning nil into a non-nil empty slice.
func coerceStrings(v any) ([]string, error) {
	switch sv := v.(type) {
	case nil:
		return nil, nil
	case []string:
		if len(sv) == 0 {
			return nil, nil
		}
		out := make([]string, len(sv))
		copy(out, sv)
		return out, nil
	case []any:
		if len(sv) == 0 {
			return nil, nil
		}
		out := make([]string, 0, len(sv))
		for _, item := range sv {
			s, err := coerceString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as a string list", v)
	}
}
