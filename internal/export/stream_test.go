package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestStream_WritesAllChunks(t *testing.T) {
	cursor := newGenCursor(25)
	s, _ := Open(testSchema, cursor, WithBatchSize(10))
	defer s.Close()

	var w flushRecorder
	stats, err := Stream(context.Background(), s, &w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Header + 3 data chunks.
	if stats.Chunks != 4 {
		t.Errorf("chunks = %d, want 4", stats.Chunks)
	}
	if w.flushes != 4 {
		t.Errorf("flushes = %d, want 4", w.flushes)
	}
	if stats.Rows != 25 {
		t.Errorf("rows = %d, want 25", stats.Rows)
	}
	if stats.Bytes != int64(w.Len()) {
		t.Errorf("bytes = %d, written %d", stats.Bytes, w.Len())
	}
	if !bytes.HasPrefix(w.Bytes(), []byte("ID,Name\r\n1,name-1\r\n")) {
		t.Errorf("unexpected output prefix: %q", w.String()[:30])
	}
}

func TestStream_SourceFailureKeepsPartialOutput(t *testing.T) {
	cursor := newGenCursor(100)
	cursor.failAfter = 2
	s, _ := Open(testSchema, cursor, WithBatchSize(10))
	defer s.Close()

	var w bytes.Buffer
	stats, err := Stream(context.Background(), s, &w)
	if !errors.Is(err, ErrSourceFetch) {
		t.Fatalf("expected ErrSourceFetch, got %v", err)
	}
	if stats.Rows != 20 || stats.Chunks != 3 {
		t.Errorf("stats = %+v, want 20 rows in 3 chunks", stats)
	}
	if w.Len() == 0 {
		t.Error("already written chunks must stay written")
	}
}

func TestStream_WriterError(t *testing.T) {
	cursor := newGenCursor(100)
	s, _ := Open(testSchema, cursor)
	defer s.Close()

	_, err := Stream(context.Background(), s, brokenWriter{})
	if err == nil {
		t.Fatal("expected write error")
	}
	if cursor.fetches != 0 {
		t.Error("nothing should be fetched after the header write failed")
	}
}

func TestStream_ContextCancelled(t *testing.T) {
	s, _ := Open(testSchema, newGenCursor(10))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w bytes.Buffer
	if _, err := Stream(ctx, s, &w); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
