package domain

import (
	"encoding/json"
	"errors"
)

// Ошибки валидации входных записей.
var (
	// ErrMissingField — обязательное поле отсутствует или равно null.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField — поле присутствует, но значение не разбирается.
	ErrInvalidField = errors.New("invalid field value")
)

// ValidationError — ошибка валидации с указанием поля.
type ValidationError struct {
	Field   string // имя поля в JSON
	Message string // описание ошибки
	Err     error  // ErrMissingField или ErrInvalidField
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// RequireFields проверяет, что все перечисленные поля присутствуют в теле запроса.
//
// Значение null считается отсутствием: NOT NULL колонку им всё равно не заполнить.
// Возвращает ошибку для первого отсутствующего поля в порядке fields.
func RequireFields(body map[string]json.RawMessage, fields []string) error {
	for _, f := range fields {
		raw, ok := body[f]
		if !ok || string(raw) == "null" {
			return NewValidationError(f, "field is required", ErrMissingField)
		}
	}
	return nil
}
