package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner снимает снапшоты всех таблиц.
type Runner interface {
	RunAll(ctx context.Context) error
}

// Leader решает, должен ли этот экземпляр выполнять срабатывание.
// Несколько реплик aerodata-snapshot делят одно расписание.
type Leader interface {
	TryAcquire(ctx context.Context) (bool, error)
}

// Scheduler запускает снапшоты по cron-расписанию.
type Scheduler struct {
	expr   string
	runner Runner
	leader Leader
	logger *slog.Logger
}

// Config — конфигурация Scheduler.
type Config struct {
	Expr   string // default: DefaultExpr
	Runner Runner
	Leader Leader // опционально: без него срабатывает каждый экземпляр
	Logger *slog.Logger
}

// New создаёт Scheduler, проверяя выражение.
func New(cfg Config) (*Scheduler, error) {
	expr := cfg.Expr
	if expr == "" {
		expr = DefaultExpr
	}
	if err := ValidateCronExpr(expr); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		expr:   expr,
		runner: cfg.Runner,
		leader: cfg.Leader,
		logger: logger,
	}, nil
}

// Tick выполняет одно срабатывание: проверяет лидерство и снимает снапшоты.
// Возвращает false, если экземпляр не лидер и ничего не делал.
//
// Ошибки снапшотов логируются и не прерывают расписание.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if s.leader != nil {
		ok, err := s.leader.TryAcquire(ctx)
		if err != nil {
			s.logger.Error("leader lock failed", "error", err)
			return false
		}
		if !ok {
			s.logger.Debug("not the leader, skipping snapshot tick")
			return false
		}
	}

	start := time.Now()
	if err := s.runner.RunAll(ctx); err != nil {
		s.logger.Error("scheduled snapshots finished with errors", "error", err, "duration", time.Since(start))
		return true
	}
	s.logger.Info("scheduled snapshots completed", "duration", time.Since(start))
	return true
}

// Run запускает cron и блокируется до отмены ctx.
// Срабатывание, пришедшее во время предыдущего, пропускается.
func (s *Scheduler) Run(ctx context.Context) {
	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	// Выражение уже проверено в New.
	_, _ = c.AddFunc(s.expr, func() { s.Tick(ctx) })

	if next, err := NextRun(s.expr, time.Now()); err == nil {
		s.logger.Info("snapshot schedule started", "cron", s.expr, "next", next)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("snapshot schedule stopped")
}

// cronLogger адаптирует slog к cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
