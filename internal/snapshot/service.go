package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Aerodata/internal/export"
	"github.com/shaiso/Aerodata/internal/mq"
	"github.com/shaiso/Aerodata/internal/repo"
	"github.com/shaiso/Aerodata/internal/telemetry"
)

// DefaultDir — каталог снапшотов, если SNAPSHOT_DIR не задан.
const DefaultDir = "./snapshots"

// fileTimeLayout — метка времени в имени файла снапшота.
const fileTimeLayout = "20060102T150405Z"

// CursorOpener открывает курсор по экспортируемой таблице.
type CursorOpener interface {
	OpenCursor(ctx context.Context, t repo.Table) (export.RowCursor, error)
}

// CompletionPublisher публикует итог снапшота.
type CompletionPublisher interface {
	PublishSnapshotCompleted(ctx context.Context, payload mq.SnapshotCompletedPayload) error
}

// Result — итог записанного снапшота.
type Result struct {
	ID       string
	Table    string
	Path     string
	Rows     int64
	Bytes    int64
	Duration time.Duration
}

// Service пишет снапшоты таблиц в каталог.
type Service struct {
	opener    CursorOpener
	publisher CompletionPublisher
	metrics   *telemetry.ExportMetrics
	logger    *slog.Logger
	dir       string
	batchSize int
	now       func() time.Time
}

// Config — конфигурация Service.
type Config struct {
	Opener    CursorOpener
	Publisher CompletionPublisher      // опционально
	Metrics   *telemetry.ExportMetrics // опционально
	Logger    *slog.Logger
	Dir       string // default: DefaultDir
	BatchSize int    // default: export.DefaultBatchSize
}

// NewService создаёт Service.
func NewService(cfg Config) *Service {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = export.DefaultBatchSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		opener:    cfg.Opener,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    logger,
		dir:       dir,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run пишет снапшот таблицы. id — идентификатор снапшота; пустой — сгенерировать.
//
// При ошибке частичный файл удаляется, а итог FAILED всё равно публикуется.
func (s *Service) Run(ctx context.Context, table, id string) (*Result, error) {
	if id == "" {
		id = uuid.NewString()
	}
	t, err := repo.LookupTable(table)
	if err != nil {
		return nil, err
	}

	logger := telemetry.WithSnapshotID(telemetry.WithTable(s.logger, table), id)
	start := s.now()

	res, err := s.write(ctx, t, id, start)
	duration := s.now().Sub(start)
	if res != nil {
		res.Duration = duration
	}

	payload := mq.SnapshotCompletedPayload{
		SnapshotID: id,
		Table:      table,
		Status:     mq.SnapshotSucceeded,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		payload.Status = mq.SnapshotFailed
		payload.Error = err.Error()
		logger.Error("snapshot failed", "error", err, "duration", duration)
	} else {
		payload.Path = res.Path
		payload.Rows = res.Rows
		payload.Bytes = res.Bytes
		logger.Info("snapshot written",
			"path", res.Path,
			"rows", res.Rows,
			"bytes", res.Bytes,
			"duration", duration,
		)
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishSnapshotCompleted(ctx, payload); pubErr != nil {
			// Не фатально: файл уже на диске
			logger.Warn("failed to publish snapshot.completed", "error", pubErr)
		}
	}

	return res, err
}

// write выполняет сессию экспорта во временный файл и атомарно его публикует.
// Имя файла берётся от start, момента начала снапшота.
func (s *Service) write(ctx context.Context, t repo.Table, id string, start time.Time) (res *Result, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	cursor, err := s.opener.OpenCursor(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("open cursor: %w", err)
	}
	session, err := export.Open(t.Schema, cursor, export.WithBatchSize(s.batchSize))
	if err != nil {
		cursor.Close()
		return nil, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.csv.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var stats export.Stats
	if s.metrics != nil {
		done := s.metrics.Begin(t.Name)
		defer done()
		started := s.now()
		defer func() { s.metrics.Observe(t.Name, stats, err, s.now().Sub(started)) }()
	}

	bw := bufio.NewWriterSize(tmp, 64*1024)
	stats, err = export.Stream(ctx, session, bw)
	if err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close snapshot: %w", err)
	}

	path, err := s.finalPath(t.Name, id, start)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("rename snapshot: %w", err)
	}
	committed = true

	return &Result{
		ID:    id,
		Table: t.Name,
		Path:  path,
		Rows:  stats.Rows,
		Bytes: stats.Bytes,
	}, nil
}

// finalPath возвращает <table>-<UTC время start>.csv, а при коллизии в ту же
// секунду добавляет префикс ID снапшота.
func (s *Service) finalPath(table, id string, start time.Time) (string, error) {
	stamp := start.UTC().Format(fileTimeLayout)
	path := filepath.Join(s.dir, table+"-"+stamp+".csv")

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return path, nil
	case err != nil:
		return "", fmt.Errorf("stat snapshot path: %w", err)
	}

	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return filepath.Join(s.dir, table+"-"+stamp+"-"+short+".csv"), nil
}

// RunAll снимает снапшоты всех экспортируемых таблиц.
// Ошибка одной таблицы не останавливает остальные.
func (s *Service) RunAll(ctx context.Context) error {
	var errs []error
	for _, name := range repo.TableNames() {
		if _, err := s.Run(ctx, name, ""); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// HandleRequested — обработчик очереди snapshots.requested.
//
// Неизвестная таблица подтверждается и отбрасывается: повтор её не исправит.
// Ошибка экспорта возвращается, и сообщение уходит на повторную доставку.
func (s *Service) HandleRequested(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.SnapshotRequestedPayload](&d.Message)
	if err != nil {
		return err
	}

	if _, err := repo.LookupTable(payload.Table); err != nil {
		s.logger.Warn("dropping snapshot request for unknown table",
			"table", payload.Table,
			"snapshot_id", payload.SnapshotID,
			"message_id", d.Message.ID,
		)
		return nil
	}

	_, err = s.Run(ctx, payload.Table, payload.SnapshotID)
	return err
}
