package export

import (
	"context"
	"errors"
	"fmt"
)

// DefaultBatchSize — размер пачки по умолчанию.
// Баланс между накладными расходами на выборку и пиковой памятью.
const DefaultBatchSize = 1000

// ChunkKind — вид чанка, возвращаемого Session.Next.
type ChunkKind int

const (
	// ChunkHeader — строка заголовков. Ровно один раз, первым.
	ChunkHeader ChunkKind = iota + 1

	// ChunkData — CSV одной пачки строк.
	ChunkData

	// ChunkEnd — данных больше нет. Терминальный.
	ChunkEnd

	// ChunkFailed — выгрузка прервана ошибкой. Терминальный.
	ChunkFailed
)

// String возвращает строковое представление ChunkKind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkHeader:
		return "header"
	case ChunkData:
		return "data"
	case ChunkEnd:
		return "end"
	case ChunkFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal возвращает true для End и Failed.
func (k ChunkKind) IsTerminal() bool {
	return k == ChunkEnd || k == ChunkFailed
}

// Chunk — результат одного вызова Session.Next.
type Chunk struct {
	Kind ChunkKind

	// Data — байты Header/Data. Буфер переиспользуется сессией:
	// данные валидны только до следующего вызова Next или Close.
	Data []byte

	// Err — причина для ChunkFailed (*Error вида KindSourceFetch или KindEncoding).
	Err error
}

// sessionState — состояние сессии.
//
// Жизненный цикл:
//
//	HEADER → DATA → DONE
//	       (или) → CLOSED (Close из любого состояния)
type sessionState int

const (
	stateHeader sessionState = iota
	stateData
	stateDone
	stateClosed
)

// Session — одна логическая выгрузка (Export Session).
//
// Сессия эксклюзивно владеет курсором и буфером кодирования. В памяти
// одновременно находится не больше одной пачки строк. Сессия не
// потокобезопасна: её ведёт один вызывающий.
type Session struct {
	schema    Schema
	cursor    RowCursor
	batchSize int

	state sessionState
	buf   []byte
	batch []Row
	rows  int64

	cursorReleased bool
	cursorErr      error
}

// Option — опция Open.
type Option func(*Session)

// WithBatchSize задаёт размер пачки. Значения <= 0 игнорируются.
func WithBatchSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Open создаёт сессию выгрузки. Не читает из cursor.
// Возвращает ErrInvalidSchema, если схема пустая или некорректная.
func Open(schema Schema, cursor RowCursor, opts ...Option) (*Session, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if cursor == nil {
		return nil, newError(KindInvalidSchema, errors.New("nil row cursor"))
	}

	s := &Session{
		schema:    schema,
		cursor:    cursor,
		batchSize: DefaultBatchSize,
		state:     stateHeader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next возвращает следующий чанк выгрузки.
//
// После ChunkEnd, ChunkFailed или Close возвращает ErrSessionClosed.
// Блокируется только на выборке пачки из курсора.
func (s *Session) Next(ctx context.Context) (Chunk, error) {
	switch s.state {
	case stateHeader:
		s.buf = appendHeader(s.buf[:0], s.schema)
		s.state = stateData
		return Chunk{Kind: ChunkHeader, Data: s.buf}, nil

	case stateData:
		return s.nextData(ctx), nil

	default:
		return Chunk{}, newError(KindSessionClosed, nil)
	}
}

// nextData выбирает и кодирует одну пачку.
func (s *Session) nextData(ctx context.Context) Chunk {
	// Предыдущая пачка больше не нужна — отпускаем до выборки следующей.
	s.batch = nil

	batch, err := s.cursor.FetchBatch(ctx, s.batchSize)
	if err != nil {
		return s.fail(newError(KindSourceFetch, err))
	}
	if len(batch) > s.batchSize {
		return s.fail(newError(KindSourceFetch,
			fmt.Errorf("cursor returned %d rows, batch size is %d", len(batch), s.batchSize)))
	}
	if len(batch) == 0 {
		s.finish()
		return Chunk{Kind: ChunkEnd}
	}

	s.batch = batch
	s.buf = s.buf[:0]
	for i, row := range batch {
		s.buf, err = appendRecord(s.buf, s.schema, row)
		if err != nil {
			var e *Error
			if !errors.As(err, &e) {
				e = newError(KindEncoding, err)
			}
			e.Row = s.rows + int64(i) + 1
			return s.fail(e)
		}
	}
	s.rows += int64(len(batch))
	s.batch = nil

	return Chunk{Kind: ChunkData, Data: s.buf}
}

func (s *Session) fail(err *Error) Chunk {
	s.finish()
	return Chunk{Kind: ChunkFailed, Err: err}
}

// finish переводит сессию в терминальное состояние и сразу отпускает курсор.
func (s *Session) finish() {
	s.state = stateDone
	s.batch = nil
	s.releaseCursor()
}

// releaseCursor закрывает курсор один раз; ошибка закрытия сохраняется для Close.
func (s *Session) releaseCursor() {
	if s.cursorReleased {
		return
	}
	s.cursorReleased = true
	s.cursorErr = s.cursor.Close()
}

// Close освобождает курсор и буфер. Идемпотентен.
// Должен вызываться на любом пути выхода, включая отмену потребителем.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	s.buf = nil
	s.batch = nil
	s.releaseCursor()
	if s.cursorErr != nil {
		return fmt.Errorf("close cursor: %w", s.cursorErr)
	}
	return nil
}

// Rows возвращает количество выгруженных строк данных.
func (s *Session) Rows() int64 {
	return s.rows
}

// Schema возвращает схему сессии.
func (s *Session) Schema() Schema {
	return s.schema
}
