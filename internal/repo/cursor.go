package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Aerodata/internal/export"
)

// ExportRepo открывает курсоры для потоковой выгрузки таблиц.
type ExportRepo struct {
	pool *pgxpool.Pool
}

// NewExportRepo создаёт новый ExportRepo.
func NewExportRepo(pool *pgxpool.Pool) *ExportRepo {
	return &ExportRepo{pool: pool}
}

// OpenCursor открывает серверный курсор по таблице.
//
// Курсор живёт в read-only транзакции и держит одно соединение пула до Close.
// Строки приходят в порядке первичного ключа, в памяти клиента не больше одной выборки.
func (r *ExportRepo) OpenCursor(ctx context.Context, t Table) (export.RowCursor, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin export tx: %w", err)
	}

	name := "export_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	ident := pgx.Identifier{name}.Sanitize()

	declare := "DECLARE " + ident + " NO SCROLL CURSOR FOR " + t.pgSelectSQL()
	if _, err := tx.Exec(ctx, declare); err != nil {
		_ = tx.Rollback(context.Background())
		return nil, fmt.Errorf("declare cursor for %s: %w", t.Name, err)
	}

	return &pgCursor{tx: tx, ident: ident, table: t.Name}, nil
}

// pgCursor — export.RowCursor поверх DECLARE ... CURSOR / FETCH FORWARD.
type pgCursor struct {
	tx     pgx.Tx
	ident  string
	table  string
	closed bool
}

var errPgCursorClosed = errors.New("pg cursor closed")

// FetchBatch выбирает до n следующих строк. Пустой результат — конец данных.
func (c *pgCursor) FetchBatch(ctx context.Context, n int) ([]export.Row, error) {
	if c.closed {
		return nil, errPgCursorClosed
	}

	rows, err := c.tx.Query(ctx, "FETCH FORWARD "+strconv.Itoa(n)+" FROM "+c.ident)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.table, err)
	}
	defer rows.Close()

	batch := make([]export.Row, 0, n)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", c.table, err)
		}
		batch = append(batch, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.table, err)
	}
	return batch, nil
}

// Close откатывает транзакцию: курсор закрывается вместе с ней, соединение
// возвращается в пул. Вызывается и после разрыва клиента, поэтому не зависит
// от контекста запроса.
func (c *pgCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback export tx: %w", err)
	}
	return nil
}
