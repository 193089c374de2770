package textfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nimdanitro/sensorlog/pkg/reading"
)

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensorlog.prom")
	r, err := New(path, "GPIO4")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := time.Unix(1710000000, 0)

	if err := r.Record(context.Background(), reading.Reading{
		Timestamp:   ts,
		Temperature: reading.Some(20.5),
		Humidity:    reading.Some(40.25),
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got := read(t, path)
	for _, want := range []string{
		`sensorlog_temperature_celsius{sensor="GPIO4"} 20.5`,
		`sensorlog_humidity_percent{sensor="GPIO4"} 40.25`,
		`sensorlog_last_read_timestamp_seconds{sensor="GPIO4"} 1.71e+09`,
		`sensorlog_read_failures_total{sensor="GPIO4"} 0`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("textfile lacks %q:\n%s", want, got)
		}
	}

	if err := r.Record(context.Background(), reading.Reading{
		Timestamp:   ts.Add(time.Minute),
		Temperature: reading.None(),
		Humidity:    reading.Some(41),
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got = read(t, path)
	if strings.Contains(got, "sensorlog_temperature_celsius{") {
		t.Errorf("stale temperature still exported:\n%s", got)
	}
	for _, want := range []string{
		`sensorlog_humidity_percent{sensor="GPIO4"} 41`,
		`sensorlog_read_failures_total{sensor="GPIO4"} 1`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("textfile lacks %q:\n%s", want, got)
		}
	}
}

func TestRecordUnwritablePath(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "missing", "x.prom"), "GPIO4")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Record(context.Background(), reading.Reading{Timestamp: time.Now()}); err == nil {
		t.Fatal("Record succeeded on a missing directory")
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
