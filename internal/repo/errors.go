package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidReference — запись ссылается на несуществующую (нарушение внешнего ключа).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrUnknownTable — таблица не входит в список экспортируемых.
	ErrUnknownTable = errors.New("unknown table")
)

// Коды ошибок PostgreSQL (SQLSTATE).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapWriteError переводит ошибку вставки в ошибку репозитория.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidReference, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
