// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go         — Handler с DI (хранилища, курсоры, publisher, метрики, logger)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — middleware (logging, recovery)
//   - response.go        — унифицированные JSON-ответы и обработка ошибок
//   - dto.go             — Data Transfer Objects (request/response)
//   - airline_handler.go — обработчики для /airlines
//   - airport_handler.go — обработчики для /airports
//   - flight_handler.go  — обработчики для /flights
//   - export_handler.go  — потоковый CSV (/exports/{table}) и снапшоты
//
// JSON ответы обёрнуты в {"data": ...} или {"data": [...], "total": n},
// ошибки — в {"error": {"code", "message", "field"}}. CSV выгрузка пишется
// потоком без буферизации таблицы целиком.
package api
