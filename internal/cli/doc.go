// Package cli реализует инструмент командной строки Aerodata.
//
// # Обзор
//
// CLI работает с Aerodata API по HTTP: создаёт и просматривает
// авиакомпании, аэропорты и рейсы, скачивает CSV выгрузки и ставит
// снапшоты в очередь. Единственное исключение из работы через HTTP —
// export get --sqlite: выгрузка из локальной SQLite базы тем же
// потоковым кодировщиком (internal/export), что и у сервера.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Aerodata API. Инкапсулирует запросы, парсинг
// ответов (data/list/error) и обработку ошибок. Export читает поток
// без общего таймаута и считает обрыв соединения ошибкой.
//
//	client := cli.NewClient("http://localhost:8080")
//	n, err := client.Export(ctx, "flights", os.Stdout)
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию
// или JSON с флагом --json. Данные идут в stdout, сообщения в stderr,
// поэтому CSV можно направлять в pipe: aerodata export get flights | head.
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - airline, airport, flight: list, create
//   - export: list, get, snapshot
//
// Каждая группа создаётся фабричной функцией (NewAirlineCmd и т.д.),
// принимающей clientFn и outputFn для ленивого создания Client и
// Output после парсинга PersistentFlags.
package cli
