package export

import (
	"context"
	"errors"
)

var errCursorClosed = errors.New("cursor closed")

// Row — упорядоченный набор значений, по одному на колонку схемы.
// nil означает NULL.
type Row []any

// RowCursor — источник строк с ленивой выборкой пачками.
//
// Реализации: серверный курсор PostgreSQL (repo.ExportRepo),
// database/sql (repo.SQLCursor), память (SliceCursor).
type RowCursor interface {
	// FetchBatch возвращает до n следующих строк в естественном порядке источника.
	// Пустой результат без ошибки означает конец данных.
	FetchBatch(ctx context.Context, n int) ([]Row, error)

	// Close освобождает курсор.
	Close() error
}

// SliceCursor — RowCursor поверх уже загруженных строк.
type SliceCursor struct {
	rows   []Row
	pos    int
	closed bool
}

// NewSliceCursor создаёт SliceCursor.
func NewSliceCursor(rows []Row) *SliceCursor {
	return &SliceCursor{rows: rows}
}

// FetchBatch реализует RowCursor.
func (c *SliceCursor) FetchBatch(ctx context.Context, n int) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.closed {
		return nil, errCursorClosed
	}

	end := min(c.pos+n, len(c.rows))
	batch := c.rows[c.pos:end]
	c.pos = end
	return batch, nil
}

// Close реализует RowCursor.
func (c *SliceCursor) Close() error {
	c.closed = true
	return nil
}

// Closed сообщает, был ли курсор закрыт.
func (c *SliceCursor) Closed() bool {
	return c.closed
}
