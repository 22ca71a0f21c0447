// Aerodata Snapshot — пишет CSV снапшоты таблиц в каталог.
//
// Snapshot:
//   - Снимает все таблицы по cron-расписанию (только лидер, advisory lock)
//   - Обрабатывает запросы из очереди snapshots.requested
//   - Публикует итог каждого снапшота в snapshots.completed
//
// Переменные окружения:
//
//	DB_URL, RABBITMQ_URL
//	SNAPSHOT_DIR       каталог снапшотов (default ./snapshots)
//	SNAPSHOT_CRON      расписание (default "0 3 * * *", UTC)
//	SNAPSHOT_PORT      порт /healthz и /metrics (default 8081)
//	EXPORT_BATCH_SIZE  строк в чанке выгрузки (default 1000)
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Aerodata/internal/mq"
	"github.com/shaiso/Aerodata/internal/repo"
	"github.com/shaiso/Aerodata/internal/scheduler"
	"github.com/shaiso/Aerodata/internal/snapshot"
	"github.com/shaiso/Aerodata/internal/telemetry"
)

const schedLockKey int64 = 424242

func main() {
	_ = godotenv.Load()

	logger := telemetry.SetupLogger()
	logger.Info("starting aerodata-snapshot")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	cfg := snapshot.Config{
		Opener:    repo.NewExportRepo(pool),
		Metrics:   telemetry.NewExportMetrics(prometheus.DefaultRegisterer),
		Logger:    telemetry.WithComponent(logger, "snapshot"),
		Dir:       os.Getenv("SNAPSHOT_DIR"),
		BatchSize: batchSizeFromEnv(),
	}

	// RabbitMQ: без брокера работает только расписание
	mqConn, err := mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in schedule-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		cfg.Publisher = mq.NewPublisher(mqConn, logger)
	}

	svc := snapshot.NewService(cfg)

	if mqConn != nil {
		consumer := mq.NewConsumer(mqConn, telemetry.WithComponent(logger, "consumer"), mq.ConsumerConfig{
			Queue:   string(mq.QueueSnapshotsRequested),
			Handler: svc.HandleRequested,
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
			}
		}()
		defer consumer.Stop()
	}

	// Лидер держит advisory lock на отдельном соединении до остановки
	lock := repo.NewAdvisoryLock(pool, schedLockKey)
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("failed to release leader lock", "error", err)
		}
	}()

	sched, err := scheduler.New(scheduler.Config{
		Expr:   os.Getenv("SNAPSHOT_CRON"),
		Runner: svc,
		Leader: lock,
		Logger: telemetry.WithComponent(logger, "scheduler"),
	})
	if err != nil {
		logger.Error("invalid snapshot schedule", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SNAPSHOT_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Блокируется до сигнала завершения
	sched.Run(ctx)
	logger.Info("aerodata-snapshot stopped")
}

func batchSizeFromEnv() int {
	n, err := strconv.Atoi(os.Getenv("EXPORT_BATCH_SIZE"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
