package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Aerodata/internal/domain"
	"github.com/shaiso/Aerodata/internal/export"
	"github.com/shaiso/Aerodata/internal/repo"
	"github.com/shaiso/Aerodata/internal/telemetry"
)

// AirlineStore — хранилище авиакомпаний (repo.AirlineRepo).
type AirlineStore interface {
	Create(ctx context.Context, a *domain.Airline) error
	List(ctx context.Context) ([]domain.Airline, error)
}

// AirportStore — хранилище аэропортов (repo.AirportRepo).
type AirportStore interface {
	Create(ctx context.Context, a *domain.Airport) error
	List(ctx context.Context) ([]domain.Airport, error)
}

// FlightStore — хранилище рейсов (repo.FlightRepo).
type FlightStore interface {
	Create(ctx context.Context, f *domain.Flight) error
	List(ctx context.Context) ([]domain.Flight, error)
}

// CursorOpener открывает курсор выгрузки (repo.ExportRepo).
type CursorOpener interface {
	OpenCursor(ctx context.Context, t repo.Table) (export.RowCursor, error)
}

// SnapshotPublisher ставит снапшоты в очередь (mq.Publisher).
type SnapshotPublisher interface {
	PublishSnapshotRequested(ctx context.Context, table, requestedBy string) (string, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	airlines  AirlineStore
	airports  AirportStore
	flights   FlightStore
	exports   CursorOpener
	publisher SnapshotPublisher
	metrics   *telemetry.ExportMetrics
	logger    *slog.Logger
	batchSize int
}

// Config — конфигурация для создания Handler.
type Config struct {
	Airlines  AirlineStore
	Airports  AirportStore
	Flights   FlightStore
	Exports   CursorOpener
	Publisher SnapshotPublisher        // опционально: без него снапшоты отвечают 503
	Metrics   *telemetry.ExportMetrics // опционально
	Logger    *slog.Logger
	BatchSize int // default: export.DefaultBatchSize
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = export.DefaultBatchSize
	}

	return &Handler{
		airlines:  cfg.Airlines,
		airports:  cfg.Airports,
		flights:   cfg.Flights,
		exports:   cfg.Exports,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		batchSize: batchSize,
	}
}
