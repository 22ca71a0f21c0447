// Package export реализует потоковую выгрузку таблиц в CSV.
//
// Структура:
//   - schema.go  — Column Schema (имя в хранилище, заголовок, семантический тип)
//   - cursor.go  — RowCursor: источник строк с ленивой выборкой пачками
//   - encode.go  — кодирование значений в CSV-ячейки (RFC 4180)
//   - session.go — Session: pull-автомат Header → Data* → End | Failed
//   - stream.go  — Stream: прогон сессии в io.Writer
//   - errors.go  — виды ошибок выгрузки
//
// Память ограничена одной пачкой строк (DefaultBatchSize) независимо от
// размера таблицы. Сессия не запускает горутин: каждый вызов Next делает
// одну единицу работы (одна выборка + кодирование) и возвращает чанк.
//
// Использование:
//
//	sess, err := export.Open(schema, cursor)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	for {
//	    chunk, err := sess.Next(ctx)
//	    if err != nil {
//	        return err // ErrSessionClosed
//	    }
//	    switch chunk.Kind {
//	    case export.ChunkHeader, export.ChunkData:
//	        w.Write(chunk.Data)
//	    case export.ChunkEnd:
//	        return nil
//	    case export.ChunkFailed:
//	        return chunk.Err
//	    }
//	}
//
// Уже отправленные чанки не отзываются: при ошибке в середине выгрузки
// получатель увидит усечённый файл и должен начать выгрузку заново.
package export
