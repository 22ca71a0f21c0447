// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - snapshot.requested — запрошен CSV снапшот таблицы (API, CLI, cron)
//   - snapshot.completed — снапшот записан или упал
//
// Exchanges:
//   - aerodata.snapshots — события снапшотов
//   - aerodata.dlq       — dead letter queue
package mq
