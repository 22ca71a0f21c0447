package export

import (
	"errors"
	"fmt"
)

// Type — семантический тип колонки. Определяет правило рендеринга поля.
// NULL — это значение (nil), а не тип: любая колонка может его содержать.
type Type int

const (
	TypeInteger Type = iota + 1
	TypeFloat
	TypeString
	TypeBoolean
	TypeTimestamp
)

// String возвращает строковое представление Type.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

func (t Type) valid() bool {
	return t >= TypeInteger && t <= TypeTimestamp
}

// Column — описание одной колонки выгрузки.
type Column struct {
	// Name — имя колонки в хранилище (используется в запросах).
	Name string

	// Label — человекочитаемый заголовок для строки заголовков CSV.
	Label string

	// Type — семантический тип значений.
	Type Type
}

// Schema — упорядоченная Column Schema. Фиксирована на время одной выгрузки.
type Schema []Column

// Validate проверяет схему: не пустая, имена и заголовки заданы,
// имена уникальны, типы известны.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return newError(KindInvalidSchema, errors.New("schema has no columns"))
	}

	seen := make(map[string]struct{}, len(s))
	for i, col := range s {
		if col.Name == "" {
			return newError(KindInvalidSchema, fmt.Errorf("column %d has empty name", i))
		}
		if col.Label == "" {
			return &Error{Kind: KindInvalidSchema, Column: col.Name, Err: errors.New("empty label")}
		}
		if !col.Type.valid() {
			return &Error{Kind: KindInvalidSchema, Column: col.Name, Err: fmt.Errorf("unknown %s", col.Type)}
		}
		if _, dup := seen[col.Name]; dup {
			return &Error{Kind: KindInvalidSchema, Column: col.Name, Err: errors.New("duplicate column")}
		}
		seen[col.Name] = struct{}{}
	}
	return nil
}

// Names возвращает имена колонок в порядке схемы.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// Labels возвращает заголовки колонок в порядке схемы.
func (s Schema) Labels() []string {
	labels := make([]string, len(s))
	for i, col := range s {
		labels[i] = col.Label
	}
	return labels
}
