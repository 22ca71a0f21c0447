// Package snapshot пишет CSV снапшоты таблиц на диск.
//
// Снапшот — та же сессия экспорта, что и HTTP выгрузка, но с другой
// семантикой отказа: файл пишется во временный и переименовывается только
// после ChunkEnd, поэтому в SNAPSHOT_DIR либо полный CSV, либо ничего.
//
// Запускается тремя путями:
//   - Service.Run — напрямую (тесты, CLI)
//   - Service.HandleRequested — из очереди snapshots.requested
//   - scheduler.Scheduler — по cron для всех таблиц
package snapshot
