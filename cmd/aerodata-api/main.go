// Aerodata API — CRUD для авиакомпаний, аэропортов и рейсов
// и потоковые CSV выгрузки таблиц.
//
// Переменные окружения:
//
//	DB_URL             строка подключения к PostgreSQL
//	RABBITMQ_URL       брокер для запросов снапшотов (опционально)
//	API_PORT           порт HTTP сервера (default 8080)
//	EXPORT_BATCH_SIZE  строк в чанке выгрузки (default 1000)
//	LOG_LEVEL, LOG_FORMAT
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Aerodata/internal/api"
	"github.com/shaiso/Aerodata/internal/mq"
	"github.com/shaiso/Aerodata/internal/repo"
	"github.com/shaiso/Aerodata/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aerodata_api_http_requests_total",
		Help: "Total HTTP requests handled by aerodata_api",
	})
)

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting aerodata-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе данных
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	cfg := api.Config{
		Airlines:  repo.NewAirlineRepo(pool),
		Airports:  repo.NewAirportRepo(pool),
		Flights:   repo.NewFlightRepo(pool),
		Exports:   repo.NewExportRepo(pool),
		Metrics:   telemetry.NewExportMetrics(prometheus.DefaultRegisterer),
		Logger:    logger,
		BatchSize: batchSizeFromEnv(),
	}

	// RabbitMQ нужен только для снапшотов; без него API работает, а
	// POST /exports/{table}/snapshots отвечает 503.
	mqConn, err := mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, snapshots disabled", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		cfg.Publisher = mq.NewPublisher(mqConn, logger)
	}

	handler := api.NewHandler(cfg)

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// WriteTimeout не задаём: выгрузка больших таблиц идёт дольше любого
	// разумного таймаута, её ограничивает отключение клиента.
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

func batchSizeFromEnv() int {
	n, err := strconv.Atoi(os.Getenv("EXPORT_BATCH_SIZE"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
