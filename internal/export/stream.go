package export

import (
	"context"
	"fmt"
	"io"
)

// Stats — итоги прогона сессии.
type Stats struct {
	Chunks int   // записанные чанки (Header + Data)
	Rows   int64 // строки данных
	Bytes  int64 // записанные байты
}

// flusher — writer, умеющий сбрасывать буфер (http.ResponseController, bufio.Writer).
type flusher interface {
	Flush() error
}

// Stream ведёт сессию до терминального чанка, записывая Header и Data в w
// по порядку. Если w реализует Flush() error, сбрасывает его после каждого чанка.
//
// ChunkFailed возвращается как ошибка; уже записанные байты остаются записанными.
// Stream не закрывает сессию — это обязанность вызывающего.
func Stream(ctx context.Context, s *Session, w io.Writer) (Stats, error) {
	var stats Stats
	f, canFlush := w.(flusher)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		chunk, err := s.Next(ctx)
		if err != nil {
			return stats, err
		}

		switch chunk.Kind {
		case ChunkHeader, ChunkData:
			n, err := w.Write(chunk.Data)
			stats.Bytes += int64(n)
			if err != nil {
				return stats, fmt.Errorf("write chunk: %w", err)
			}
			stats.Chunks++
			stats.Rows = s.Rows()

			if canFlush {
				if err := f.Flush(); err != nil {
					return stats, fmt.Errorf("flush chunk: %w", err)
				}
			}

		case ChunkEnd:
			return stats, nil

		case ChunkFailed:
			return stats, chunk.Err

		default:
			return stats, fmt.Errorf("unexpected chunk kind %d", chunk.Kind)
		}
	}
}
