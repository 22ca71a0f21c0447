package export

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Токены булевых значений: исходный сервис отдавал True/False,
// потребители выгрузок рассчитывают на этот регистр.
const (
	trueToken  = "True"
	falseToken = "False"
)

// recordTerminator — разделитель записей по RFC 4180.
const recordTerminator = "\r\n"

// timestampLayout — ISO-8601 без зоны; микросекунды добавляются отдельно.
const timestampLayout = "2006-01-02T15:04:05"

// appendHeader кодирует заголовки схемы одной CSV-записью.
func appendHeader(dst []byte, schema Schema) []byte {
	for i, col := range schema {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendText(dst, col.Label)
	}
	return append(dst, recordTerminator...)
}

// appendRecord кодирует строку данных одной CSV-записью.
// При ошибке возвращает dst без частично записанной строки.
func appendRecord(dst []byte, schema Schema, row Row) ([]byte, error) {
	if len(row) != len(schema) {
		return dst, fmt.Errorf("row has %d fields, schema has %d columns", len(row), len(schema))
	}

	start := len(dst)
	for i, col := range schema {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = appendField(dst, col, row[i])
		if err != nil {
			return dst[:start], &Error{Kind: KindEncoding, Column: col.Name, Err: err}
		}
	}
	// Пустая запись из одной колонки читается как пустая строка файла и
	// пропускается парсерами, поэтому пишется явное "".
	if len(schema) == 1 && len(dst) == start {
		dst = append(dst, '"', '"')
	}
	return append(dst, recordTerminator...), nil
}

// appendField рендерит одно значение по правилу типа колонки.
func appendField(dst []byte, col Column, v any) ([]byte, error) {
	if v == nil {
		return dst, nil
	}

	switch col.Type {
	case TypeInteger:
		return appendInteger(dst, v)
	case TypeFloat:
		return appendFloat(dst, v)
	case TypeString:
		return appendString(dst, v)
	case TypeBoolean:
		return appendBoolean(dst, v)
	case TypeTimestamp:
		return appendTimestamp(dst, v)
	default:
		return dst, fmt.Errorf("unknown %s", col.Type)
	}
}

func appendInteger(dst []byte, v any) ([]byte, error) {
	switch n := v.(type) {
	case int:
		return strconv.AppendInt(dst, int64(n), 10), nil
	case int8:
		return strconv.AppendInt(dst, int64(n), 10), nil
	case int16:
		return strconv.AppendInt(dst, int64(n), 10), nil
	case int32:
		return strconv.AppendInt(dst, int64(n), 10), nil
	case int64:
		return strconv.AppendInt(dst, n, 10), nil
	case uint:
		return strconv.AppendUint(dst, uint64(n), 10), nil
	case uint8:
		return strconv.AppendUint(dst, uint64(n), 10), nil
	case uint16:
		return strconv.AppendUint(dst, uint64(n), 10), nil
	case uint32:
		return strconv.AppendUint(dst, uint64(n), 10), nil
	case uint64:
		return strconv.AppendUint(dst, n, 10), nil
	default:
		return dst, typeMismatch(TypeInteger, v)
	}
}

func appendFloat(dst []byte, v any) ([]byte, error) {
	switch f := v.(type) {
	case float64:
		return appendFloatBits(dst, f, 64)
	case float32:
		return appendFloatBits(dst, float64(f), 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		// Целое в float-колонке рендерится как float: 3 → 3.0.
		dst, err := appendInteger(dst, f)
		if err != nil {
			return dst, err
		}
		return append(dst, ".0"...), nil
	default:
		return dst, typeMismatch(TypeFloat, v)
	}
}

// appendFloatBits пишет кратчайшее десятичное представление без экспоненты.
// Целые значения получают суффикс ".0", чтобы float-колонки оставались
// отличимыми от integer.
func appendFloatBits(dst []byte, f float64, bitSize int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, fmt.Errorf("non-finite float %v", f)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, bitSize)
	for _, c := range dst[start:] {
		if c == '.' {
			return dst, nil
		}
	}
	return append(dst, ".0"...), nil
}

func appendString(dst []byte, v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return appendText(dst, s), nil
	case []byte:
		return appendText(dst, string(s)), nil
	default:
		return dst, typeMismatch(TypeString, v)
	}
}

func appendBoolean(dst []byte, v any) ([]byte, error) {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case int64:
		// SQLite хранит BOOLEAN как INTEGER 0/1.
		if x != 0 && x != 1 {
			return dst, fmt.Errorf("integer %d is not a boolean", x)
		}
		b = x == 1
	default:
		return dst, typeMismatch(TypeBoolean, v)
	}

	if b {
		return append(dst, trueToken...), nil
	}
	return append(dst, falseToken...), nil
}

func appendTimestamp(dst []byte, v any) ([]byte, error) {
	t, ok := v.(time.Time)
	if !ok {
		return dst, typeMismatch(TypeTimestamp, v)
	}

	t = t.UTC()
	if y := t.Year(); y < 1 || y > 9999 {
		return dst, fmt.Errorf("timestamp year %d out of range", y)
	}

	dst = t.AppendFormat(dst, timestampLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		dst = append(dst, '.')
		dst = appendZeroPadded(dst, us, 6)
	}
	return dst, nil
}

func appendZeroPadded(dst []byte, n, width int) []byte {
	var buf [20]byte
	digits := strconv.AppendInt(buf[:0], int64(n), 10)
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}

// appendText пишет строку как CSV-ячейку. Кавычки ставятся только если
// значение содержит запятую, кавычку или перевод строки; внутренние
// кавычки удваиваются, переводы строк сохраняются как есть.
func appendText(dst []byte, s string) []byte {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return append(dst, s...)
	}

	dst = append(dst, '"')
	for {
		i := strings.IndexByte(s, '"')
		if i < 0 {
			break
		}
		dst = append(dst, s[:i+1]...)
		dst = append(dst, '"')
		s = s[i+1:]
	}
	dst = append(dst, s...)
	return append(dst, '"')
}

var errTypeMismatch = errors.New("type mismatch")

func typeMismatch(want Type, v any) error {
	return fmt.Errorf("%w: %T is not %s", errTypeMismatch, v, want)
}
