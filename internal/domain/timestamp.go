package domain

import (
	"strings"
	"time"
)

// timestampLayouts — принимаемые ISO 8601 формы, от самой частой.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp разбирает метку времени в ISO форме.
//
// Принимаются YYYY-MM-DD, YYYY-MM-DDTHH:MM[:SS[.ffffff]] с разделителем T или
// пробелом, а также RFC 3339 со смещением. Метки без зоны считаются UTC.
// Результат всегда в UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError("", "invalid ISO timestamp "+`"`+s+`"`, ErrInvalidField)
}

// ParseTimestampField разбирает необязательное поле-метку времени.
// nil и пустая строка дают nil.
func ParseTimestampField(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil, NewValidationError(field, "invalid ISO timestamp "+`"`+*s+`"`, ErrInvalidField)
	}
	return &t, nil
}
