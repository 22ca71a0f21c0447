package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/shaiso/Aerodata/internal/export"
	"github.com/shaiso/Aerodata/internal/repo"
	"github.com/shaiso/Aerodata/internal/telemetry"
)

// ListExports возвращает экспортируемые таблицы и их колонки.
// GET /api/v1/exports
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	result := make([]ExportTableResponse, len(repo.Tables))
	for i, t := range repo.Tables {
		cols := make([]ExportColumnResponse, len(t.Schema))
		for j, c := range t.Schema {
			cols[j] = ExportColumnResponse{Name: c.Name, Label: c.Label, Type: c.Type.String()}
		}
		result[i] = ExportTableResponse{
			Table:   t.Name,
			URL:     "/api/v1/exports/" + t.Name,
			Columns: cols,
		}
	}

	List(w, result, len(result))
}

// ExportTable отдаёт таблицу потоковым CSV.
// GET /api/v1/exports/{table}
//
// Заголовки уходят до первого чанка, каждый чанк сбрасывается клиенту.
// Ошибка посреди потока обрывает соединение: клиент получает усечённый
// chunked ответ, а не чистое завершение.
func (h *Handler) ExportTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("table")
	table, err := repo.LookupTable(name)
	if err != nil {
		NotFound(w, "unknown table "+name)
		return
	}

	logger := telemetry.WithTable(h.logger, name)

	cursor, err := h.exports.OpenCursor(r.Context(), table)
	if err != nil {
		InternalError(w, logger, err)
		return
	}
	session, err := export.Open(table.Schema, cursor, export.WithBatchSize(h.batchSize))
	if err != nil {
		cursor.Close()
		InternalError(w, logger, err)
		return
	}
	// Курсор освобождается и при разрыве клиента.
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("export cursor close failed", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".csv")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	if h.metrics != nil {
		defer h.metrics.Begin(name)()
	}

	stats, err := export.Stream(r.Context(), session, &flushWriter{w: w, rc: http.NewResponseController(w)})
	if h.metrics != nil {
		h.metrics.Observe(name, stats, err, time.Since(start))
	}

	if err != nil {
		logger.Error("export stream aborted",
			"outcome", telemetry.Outcome(err),
			"rows", stats.Rows,
			"bytes", stats.Bytes,
			"error", err,
		)
		panic(http.ErrAbortHandler)
	}

	logger.Info("export completed",
		"rows", stats.Rows,
		"bytes", stats.Bytes,
		"chunks", stats.Chunks,
		"duration", time.Since(start),
	)
}

// RequestSnapshot ставит снапшот таблицы в очередь.
// POST /api/v1/exports/{table}/snapshots
func (h *Handler) RequestSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("table")
	if _, err := repo.LookupTable(name); err != nil {
		NotFound(w, "unknown table "+name)
		return
	}

	if h.publisher == nil {
		ServiceUnavailable(w, "snapshot queue is not configured")
		return
	}

	id, err := h.publisher.PublishSnapshotRequested(r.Context(), name, "api")
	if err != nil {
		h.logger.Error("failed to publish snapshot.requested", "table", name, "error", err)
		ServiceUnavailable(w, "snapshot queue is unavailable")
		return
	}

	Accepted(w, SnapshotResponse{SnapshotID: id, Table: name, Status: "QUEUED"})
}

// flushWriter сбрасывает ответ клиенту после каждого чанка.
type flushWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *flushWriter) Flush() error {
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
