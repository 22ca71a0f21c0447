package repo

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Aerodata/internal/export"
)

const sqliteDDL = `
CREATE TABLE airlines (
	iata_code TEXT PRIMARY KEY,
	airline   TEXT NOT NULL
);
CREATE TABLE airports (
	iata_code TEXT PRIMARY KEY,
	airport   TEXT NOT NULL,
	city      TEXT NOT NULL,
	state     TEXT,
	country   TEXT NOT NULL,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL
);
CREATE TABLE flights (
	id INTEGER PRIMARY KEY,
	year INTEGER NOT NULL, month INTEGER NOT NULL, day INTEGER NOT NULL, day_of_week INTEGER NOT NULL,
	airline TEXT NOT NULL, flight_number TEXT NOT NULL, tail_number TEXT,
	origin_airport TEXT NOT NULL, destination_airport TEXT NOT NULL,
	scheduled_departure INTEGER NOT NULL, departure_time INTEGER NOT NULL, departure_delay INTEGER NOT NULL,
	taxi_out INTEGER, wheels_off DATETIME, scheduled_time INTEGER, elapsed_time INTEGER, air_time INTEGER,
	distance REAL, wheels_on DATETIME, taxi_in INTEGER, scheduled_arrival DATETIME, arrival_time DATETIME,
	arrival_delay INTEGER, diverted BOOLEAN, cancelled BOOLEAN, cancellation_reason TEXT,
	air_system_delay INTEGER, security_delay INTEGER, airline_delay INTEGER,
	late_aircraft_delay INTEGER, weather_delay INTEGER
);`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "aerodata.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(sqliteDDL); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func exportSQLite(t *testing.T, db *sql.DB, table string, batch int) string {
	t.Helper()

	tbl, err := LookupTable(table)
	if err != nil {
		t.Fatal(err)
	}
	cursor, err := OpenSQLiteCursor(context.Background(), db, tbl)
	if err != nil {
		t.Fatalf("open cursor: %v", err)
	}

	s, err := export.Open(tbl.Schema, cursor, export.WithBatchSize(batch))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer s.Close()

	var buf bytes.Buffer
	if _, err := export.Stream(context.Background(), s, &buf); err != nil {
		t.Fatalf("stream: %v", err)
	}
	return buf.String()
}

func TestSQLiteExport_Airlines(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO airlines VALUES
		('UA', 'United Air Lines, Inc.'),
		('AA', 'American Airlines Inc.'),
		('B6', 'JetBlue "Airways"')`)
	if err != nil {
		t.Fatal(err)
	}

	got := exportSQLite(t, db, "airlines", 2)
	want := "IATA Code,Airline\r\n" +
		"AA,American Airlines Inc.\r\n" +
		"B6,\"JetBlue \"\"Airways\"\"\"\r\n" +
		"UA,\"United Air Lines, Inc.\"\r\n"
	if got != want {
		t.Errorf("got\n%q\nwant\n%q", got, want)
	}
}

func TestSQLiteExport_AirportsNullState(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO airports VALUES
		('ABE', 'Lehigh Valley International Airport', 'Allentown', 'PA', 'USA', 40.65236, -75.4404),
		('XYZ', 'Nowhere Field', 'Nowhere', NULL, 'USA', 10, -20.5)`)
	if err != nil {
		t.Fatal(err)
	}

	got := exportSQLite(t, db, "airports", 1000)
	want := "IATA Code,Airport,City,State,Country,Latitude,Longitude\r\n" +
		"ABE,Lehigh Valley International Airport,Allentown,PA,USA,40.65236,-75.4404\r\n" +
		"XYZ,Nowhere Field,Nowhere,,USA,10.0,-20.5\r\n"
	if got != want {
		t.Errorf("got\n%q\nwant\n%q", got, want)
	}
}

func TestSQLiteExport_Flights(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO flights VALUES (
		1, 2015, 1, 1, 4, 'AS', '98', 'N407AS', 'ANC', 'SEA', 5, 2354, -11,
		21, '2015-01-01 00:15:00', 205, 194, 169, 1448, '2015-01-01 04:04:00', 4,
		'2015-01-01 04:30:00', '2015-01-01 04:08:00', -22, 0, 0, NULL,
		NULL, NULL, NULL, NULL, NULL)`)
	if err != nil {
		t.Fatal(err)
	}

	got := exportSQLite(t, db, "flights", 1000)
	lines := strings.Split(got, "\r\n")
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected header, one row and a trailing terminator, got %q", got)
	}

	wantRow := "1,2015,1,1,4,AS,98,N407AS,ANC,SEA,5,2354,-11," +
		"21,2015-01-01T00:15:00,205,194,169,1448.0,2015-01-01T04:04:00,4," +
		"2015-01-01T04:30:00,2015-01-01T04:08:00,-22,False,False,,,,,,"
	if lines[1] != wantRow {
		t.Errorf("row\n%q\nwant\n%q", lines[1], wantRow)
	}
}

func TestSQLCursor_Batches(t *testing.T) {
	db := openTestDB(t)
	for _, code := range []string{"AA", "AS", "B6", "DL", "UA"} {
		if _, err := db.Exec(`INSERT INTO airlines VALUES (?, ?)`, code, code+" name"); err != nil {
			t.Fatal(err)
		}
	}

	tbl, _ := LookupTable("airlines")
	cursor, err := OpenSQLiteCursor(context.Background(), db, tbl)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	var sizes []int
	for {
		batch, err := cursor.FetchBatch(context.Background(), 2)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		sizes = append(sizes, len(batch))
		if len(batch) == 0 {
			break
		}
	}

	if len(sizes) != 4 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 || sizes[3] != 0 {
		t.Errorf("batch sizes = %v, want [2 2 1 0]", sizes)
	}
}

func TestSQLCursor_CancelledContext(t *testing.T) {
	db := openTestDB(t)
	tbl, _ := LookupTable("airlines")
	cursor, err := OpenSQLiteCursor(context.Background(), db, tbl)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cursor.FetchBatch(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeSQLValue(t *testing.T) {
	v, err := normalizeSQLValue(export.TypeTimestamp, "2015-01-01 04:08:00")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(interface{ Year() int }); !ok {
		t.Errorf("expected time value, got %T", v)
	}

	v, err = normalizeSQLValue(export.TypeTimestamp, "2015-01-01T05:00:00Z")
	if err != nil {
		t.Fatalf("RFC 3339 timestamp: %v", err)
	}
	if ts, ok := v.(time.Time); !ok || !ts.Equal(time.Date(2015, 1, 1, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("RFC 3339 timestamp parsed as %v", v)
	}

	if _, err := normalizeSQLValue(export.TypeTimestamp, "soon"); err == nil {
		t.Error("expected parse error")
	}

	if v, _ := normalizeSQLValue(export.TypeString, "2015-01-01"); v != "2015-01-01" {
		t.Errorf("string column must pass through, got %v", v)
	}
}
