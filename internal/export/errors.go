package export

import (
	"errors"
	"fmt"
)

// Ошибки выгрузки.
var (
	// ErrInvalidSchema — пустая или некорректная Column Schema (обнаруживается в Open).
	ErrInvalidSchema = errors.New("invalid column schema")

	// ErrSourceFetch — источник строк упал посреди выгрузки.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrSessionClosed — операция над завершённой или закрытой сессией.
	ErrSessionClosed = errors.New("export session closed")

	// ErrEncoding — значение поля не удалось отрендерить.
	ErrEncoding = errors.New("field encoding failed")
)

// ErrorKind — вид ошибки выгрузки.
type ErrorKind int

const (
	KindInvalidSchema ErrorKind = iota + 1
	KindSourceFetch
	KindSessionClosed
	KindEncoding
)

// String возвращает строковое представление ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSchema:
		return "invalid_schema"
	case KindSourceFetch:
		return "source_fetch"
	case KindSessionClosed:
		return "session_closed"
	case KindEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidSchema:
		return ErrInvalidSchema
	case KindSourceFetch:
		return ErrSourceFetch
	case KindSessionClosed:
		return ErrSessionClosed
	case KindEncoding:
		return ErrEncoding
	default:
		return nil
	}
}

// Error — ошибка выгрузки с контекстом.
type Error struct {
	Kind   ErrorKind // вид ошибки
	Column string    // колонка, если ошибка относится к полю
	Row    int64     // номер строки данных (с 1), 0 — не относится к строке
	Err    error     // базовая ошибка
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Row > 0 {
		msg = fmt.Sprintf("%s: row %d", msg, e.Row)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s: column %q", msg, e.Column)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap возвращает базовую ошибку.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с sentinel-значением её вида.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf возвращает вид ошибки выгрузки или 0, если err не из этого пакета.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
