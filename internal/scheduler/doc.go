// Package scheduler запускает CSV снапшоты по cron-расписанию.
//
// Структура:
//   - scheduler.go — Scheduler (Tick, Run) поверх robfig/cron
//   - cron.go      — разбор cron-выражений и вычисление следующего срабатывания
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Expr:   os.Getenv("SNAPSHOT_CRON"), // default: "0 3 * * *"
//	    Runner: snapshotService,
//	    Leader: repo.NewAdvisoryLock(pool, snapshotLockKey), // опционально
//	    Logger: logger,
//	})
//	go sched.Run(ctx)
//
// Leader Election:
//
// При нескольких репликах срабатывание выполняет только держатель
// pg_try_advisory_lock. Лок живёт на выделенном соединении пула
// и удерживается до остановки процесса.
package scheduler
