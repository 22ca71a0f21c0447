package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/Aerodata/internal/repo"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/airlines", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":  []map[string]string{{"iata_code": "AA", "airline": "American Airlines Inc."}},
			"total": 1,
		})
	})
	mux.HandleFunc("POST /api/v1/airlines", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["airline"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]string{"code": "BAD_REQUEST", "message": "missing required field", "field": "airline"},
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": body})
	})
	mux.HandleFunc("GET /api/v1/exports/{table}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("table") {
		case "airlines":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			io.WriteString(w, "IATA Code,Airline\r\nAA,American Airlines Inc.\r\n")
		case "flights":
			// Объявленная длина больше тела: клиент видит обрыв.
			w.Header().Set("Content-Length", "1000")
			io.WriteString(w, "ID,Year\r\n1,2015\r\n")
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]string{"code": "NOT_FOUND", "message": "unknown table"},
			})
		}
	})
	mux.HandleFunc("POST /api/v1/exports/{table}/snapshots", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"data": map[string]string{"snapshot_id": "snap-1", "table": r.PathValue("table"), "status": "queued"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListAirlines(t *testing.T) {
	client := NewClient(newTestServer(t).URL)

	airlines, err := client.ListAirlines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(airlines) != 1 || airlines[0].IATACode != "AA" {
		t.Errorf("unexpected airlines: %+v", airlines)
	}
}

func TestClient_CreateAirline(t *testing.T) {
	client := NewClient(newTestServer(t).URL)

	airline, err := client.CreateAirline(AirlineResponse{IATACode: "UA", Airline: "United Air Lines Inc."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if airline.IATACode != "UA" {
		t.Errorf("iata = %q, want UA", airline.IATACode)
	}

	_, err = client.CreateAirline(AirlineResponse{IATACode: "UA"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "BAD_REQUEST") || !strings.Contains(err.Error(), "field airline") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestClient_Export(t *testing.T) {
	client := NewClient(newTestServer(t).URL)

	t.Run("complete", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := client.Export(context.Background(), "airlines", &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "IATA Code,Airline\r\nAA,American Airlines Inc.\r\n"
		if buf.String() != want {
			t.Errorf("body = %q, want %q", buf.String(), want)
		}
		if n != int64(len(want)) {
			t.Errorf("n = %d, want %d", n, len(want))
		}
	})

	t.Run("truncated", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := client.Export(context.Background(), "flights", &buf)
		if err == nil {
			t.Fatal("truncated stream must be reported")
		}
		if !strings.Contains(err.Error(), "truncated") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := client.Export(context.Background(), "pilots", &buf)
		if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("error body leaked into output: %q", buf.String())
		}
	})
}

func TestClient_RequestSnapshot(t *testing.T) {
	client := NewClient(newTestServer(t).URL)

	snap, err := client.RequestSnapshot("flights")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SnapshotID != "snap-1" || snap.Table != "flights" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestAirlineListCmd(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		jsonMode bool
		want     string
	}{
		{"table", false, "AA    American Airlines Inc."},
		{"json", true, `"iata_code": "AA"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := NewAirlineCmd(
				func() *Client { return NewClient(srv.URL) },
				func() *Output { return NewOutputTo(&stdout, &stderr, tt.jsonMode) },
			)
			cmd.SetArgs([]string{"list"})

			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output %q does not contain %q", stdout.String(), tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	n, err := writeFileAtomic(path, func(w io.Writer) (int64, error) {
		k, err := io.WriteString(w, "a,b\r\n")
		return int64(k), err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a,b\r\n" {
		t.Errorf("file = %q", data)
	}

	failed := filepath.Join(dir, "failed.csv")
	_, err = writeFileAtomic(failed, func(w io.Writer) (int64, error) {
		io.WriteString(w, "partial")
		return 7, errors.New("source failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, statErr := os.Stat(failed); !os.IsNotExist(statErr) {
		t.Error("failed export must not leave a file behind")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aerodata.db")
	ctx := context.Background()

	db, err := repo.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE airlines (iata_code TEXT PRIMARY KEY, airline TEXT NOT NULL);
		INSERT INTO airlines VALUES ('UA', 'United Air Lines Inc.'), ('AA', 'American Airlines Inc.');`)
	db.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	stats, err := ExportSQLite(ctx, path, "airlines", 1, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "IATA Code,Airline\r\nAA,American Airlines Inc.\r\nUA,United Air Lines Inc.\r\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
	if stats.Rows != 2 {
		t.Errorf("rows = %d, want 2", stats.Rows)
	}

	if _, err := ExportSQLite(ctx, path, "pilots", 1, &buf); !errors.Is(err, repo.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}
