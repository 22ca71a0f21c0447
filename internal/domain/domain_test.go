package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2015-01-01", time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2015-01-01T00:05", time.Date(2015, 1, 1, 0, 5, 0, 0, time.UTC)},
		{"2015-01-01T00:05:30", time.Date(2015, 1, 1, 0, 5, 30, 0, time.UTC)},
		{"2015-01-01 00:05:30", time.Date(2015, 1, 1, 0, 5, 30, 0, time.UTC)},
		{"2015-01-01T00:05:30.123456", time.Date(2015, 1, 1, 0, 5, 30, 123456000, time.UTC)},
		{"2015-01-01T03:05:30+03:00", time.Date(2015, 1, 1, 0, 5, 30, 0, time.UTC)},
		{"2015-01-01T00:05:30Z", time.Date(2015, 1, 1, 0, 5, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2015-13-01", "01/01/2015", "2015-01-01T25:00"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseTimestamp(in); !errors.Is(err, ErrInvalidField) {
				t.Errorf("expected ErrInvalidField, got %v", err)
			}
		})
	}
}

func TestParseTimestampField(t *testing.T) {
	got, err := ParseTimestampField("wheels_off", nil)
	if err != nil || got != nil {
		t.Fatalf("nil input: got %v, %v", got, err)
	}

	empty := ""
	if got, err := ParseTimestampField("wheels_off", &empty); err != nil || got != nil {
		t.Fatalf("empty input: got %v, %v", got, err)
	}

	bad := "nope"
	_, err = ParseTimestampField("wheels_off", &bad)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "wheels_off" {
		t.Fatalf("expected ValidationError for wheels_off, got %v", err)
	}
}

func TestRequireFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"all present", `{"iata_code":"AA","airline":"American Airlines Inc."}`, ""},
		{"missing first", `{"airline":"American Airlines Inc."}`, "iata_code"},
		{"missing second", `{"iata_code":"AA"}`, "airline"},
		{"null counts as missing", `{"iata_code":"AA","airline":null}`, "airline"},
		{"empty string is present", `{"iata_code":"","airline":""}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]json.RawMessage
			if err := json.Unmarshal([]byte(tt.body), &body); err != nil {
				t.Fatal(err)
			}

			err := RequireFields(body, AirlineRequiredFields)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantErr || !errors.Is(err, ErrMissingField) {
				t.Errorf("got %v, want missing %s", err, tt.wantErr)
			}
		})
	}
}
