package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"
)

func TestAppendField(t *testing.T) {
	ts := time.Date(2015, 1, 1, 0, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		typ  Type
		v    any
		want string
	}{
		{"null integer", TypeInteger, nil, ""},
		{"null string", TypeString, nil, ""},
		{"null timestamp", TypeTimestamp, nil, ""},
		{"int64", TypeInteger, int64(-12), "-12"},
		{"int32", TypeInteger, int32(2015), "2015"},
		{"int16", TypeInteger, int16(7), "7"},
		{"int", TypeInteger, 42, "42"},
		{"uint64", TypeInteger, uint64(18446744073709551615), "18446744073709551615"},
		{"float", TypeFloat, 33.64044, "33.64044"},
		{"float integral", TypeFloat, float64(1448), "1448.0"},
		{"float negative", TypeFloat, -84.42694, "-84.42694"},
		{"float zero", TypeFloat, 0.0, "0.0"},
		{"float large no exponent", TypeFloat, 1e21, "1000000000000000000000.0"},
		{"float small no exponent", TypeFloat, 0.00001, "0.00001"},
		{"float32 shortest", TypeFloat, float32(0.1), "0.1"},
		{"int in float column", TypeFloat, int64(3), "3.0"},
		{"bool true", TypeBoolean, true, "True"},
		{"bool false", TypeBoolean, false, "False"},
		{"sqlite bool", TypeBoolean, int64(1), "True"},
		{"sqlite bool false", TypeBoolean, int64(0), "False"},
		{"string", TypeString, "Atlanta", "Atlanta"},
		{"empty string", TypeString, "", ""},
		{"bytes", TypeString, []byte("AA"), "AA"},
		{"leading space verbatim", TypeString, " x", " x"},
		{"comma", TypeString, "Dallas, TX", `"Dallas, TX"`},
		{"quote", TypeString, `say "hi"`, `"say ""hi"""`},
		{"newline", TypeString, "a\nb", "\"a\nb\""},
		{"carriage return", TypeString, "a\rb", "\"a\rb\""},
		{"timestamp", TypeTimestamp, ts, "2015-01-01T00:05:00"},
		{"timestamp micros", TypeTimestamp, ts.Add(1500 * time.Microsecond), "2015-01-01T00:05:00.001500"},
		{"timestamp drops nanos", TypeTimestamp, ts.Add(999), "2015-01-01T00:05:00"},
		{"timestamp converted to UTC", TypeTimestamp, time.Date(2015, 1, 1, 3, 0, 0, 0, time.FixedZone("MSK", 3*3600)), "2015-01-01T00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := appendField(nil, Column{Name: "c", Label: "C", Type: tt.typ}, tt.v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendField_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		v    any
	}{
		{"NaN", TypeFloat, math.NaN()},
		{"+Inf", TypeFloat, math.Inf(1)},
		{"-Inf", TypeFloat, math.Inf(-1)},
		{"string in integer", TypeInteger, "12"},
		{"float in integer", TypeInteger, 1.5},
		{"int in string", TypeString, 12},
		{"string in boolean", TypeBoolean, "true"},
		{"non 0/1 boolean", TypeBoolean, int64(2)},
		{"string in timestamp", TypeTimestamp, "2015-01-01"},
		{"year out of range", TypeTimestamp, time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"year zero", TypeTimestamp, time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := appendField(nil, Column{Name: "c", Label: "C", Type: tt.typ}, tt.v)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAppendRecord_ErrorLeavesBufferIntact(t *testing.T) {
	dst := []byte("prefix\r\n")
	got, err := appendRecord(dst, testSchema, Row{int64(1), 2})
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
	if string(got) != "prefix\r\n" {
		t.Errorf("partial record leaked into buffer: %q", got)
	}
}

func TestAppendRecord_SingleColumnEmpty(t *testing.T) {
	schema := Schema{{Name: "state", Label: "State", Type: TypeString}}

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"null", nil, "\"\"\r\n"},
		{"empty string", "", "\"\"\r\n"},
		{"value", "PA", "PA\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := appendRecord(nil, schema, Row{tt.v})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuotingRoundTrip(t *testing.T) {
	const value = "a,b\"c\nd"

	got := appendText(nil, value)
	want := "\"a,b\"\"c\nd\""
	if string(got) != want {
		t.Fatalf("encoded %q, want %q", got, want)
	}

	record := append(got, recordTerminator...)
	fields, err := csv.NewReader(bytes.NewReader(record)).Read()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fields) != 1 || fields[0] != value {
		t.Errorf("decoded %q, want %q", fields, value)
	}
}

func TestNullAndEmptyRenderIdentically(t *testing.T) {
	schema := Schema{
		{Name: "a", Label: "A", Type: TypeString},
		{Name: "b", Label: "B", Type: TypeString},
		{Name: "c", Label: "C", Type: TypeString},
	}

	withNull, err := appendRecord(nil, schema, Row{"x", nil, "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withEmpty, err := appendRecord(nil, schema, Row{"x", "", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(withNull) != "x,,y\r\n" {
		t.Errorf("null rendered as %q", withNull)
	}
	if !bytes.Equal(withNull, withEmpty) {
		t.Errorf("null %q and empty %q should render identically", withNull, withEmpty)
	}
}
