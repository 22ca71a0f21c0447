package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shaiso/Aerodata/internal/export"

	_ "modernc.org/sqlite" // драйвер "sqlite"
)

// SQLCursor — export.RowCursor поверх database/sql.
//
// Используется для бэкендов без серверных курсоров: драйвер сам читает
// результат потоком, а SQLCursor нарезает его на выборки.
type SQLCursor struct {
	rows   *sql.Rows
	schema export.Schema
	done   bool
}

// NewSQLCursor оборачивает уже выполненный запрос. Колонки rows должны
// совпадать со schema по порядку.
func NewSQLCursor(rows *sql.Rows, schema export.Schema) *SQLCursor {
	return &SQLCursor{rows: rows, schema: schema}
}

// OpenSQLite открывает файл базы SQLite (чистый Go драйвер, без cgo).
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

// OpenSQLiteCursor выполняет полный обход таблицы в SQLite и возвращает курсор.
func OpenSQLiteCursor(ctx context.Context, db *sql.DB, t Table) (*SQLCursor, error) {
	rows, err := db.QueryContext(ctx, t.SelectSQL())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Name, err)
	}
	return NewSQLCursor(rows, t.Schema), nil
}

// FetchBatch читает до n следующих строк.
func (c *SQLCursor) FetchBatch(ctx context.Context, n int) ([]export.Row, error) {
	if c.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]export.Row, 0, n)
	for len(batch) < n && c.rows.Next() {
		row := make(export.Row, len(c.schema))
		dest := make([]any, len(row))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := c.rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, col := range c.schema {
			v, err := normalizeSQLValue(col.Type, row[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			row[i] = v
		}
		batch = append(batch, row)
	}

	if len(batch) < n {
		c.done = true
		if err := c.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate rows: %w", err)
		}
	}
	return batch, nil
}

// Close закрывает результат запроса.
func (c *SQLCursor) Close() error {
	c.done = true
	return c.rows.Close()
}

// sqliteTimeLayouts — текстовые формы DATETIME, которые пишет SQLite.
var sqliteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// normalizeSQLValue приводит значения динамически типизированного SQLite
// к типам кодировщика: метки времени в тексте разбираются в time.Time.
func normalizeSQLValue(typ export.Type, v any) (any, error) {
	if typ != export.TypeTimestamp {
		return v, nil
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return v, nil
	}
	if s == "" {
		return nil, nil
	}
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q", s)
}
