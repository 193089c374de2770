package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
)

type fakeDriver struct {
	humidity, temperature float64
	err                   error
	retries               []int
}

func (f *fakeDriver) ReadRetry(maxRetries int) (float64, float64, error) {
	f.retries = append(f.retries, maxRetries)
	return f.humidity, f.temperature, f.err
}

func newTestDHT(t *testing.T, drv *fakeDriver, opts ...Option) *DHT {
	t.Helper()
	stamp := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		func(d *DHT) error {
			d.dev = drv
			d.now = func() time.Time { return stamp }
			return nil
		},
	}, opts...)
	d, err := NewDHT("GPIO4", opts...)
	if err != nil {
		t.Fatalf("NewDHT: %v", err)
	}
	return d
}

func TestDHTRead(t *testing.T) {
	drv := &fakeDriver{humidity: 40.12, temperature: 20.05}
	d := newTestDHT(t, drv, WithRetries(3))

	r, err := d.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v, ok := r.Temperature.Get(); !ok || v != 20.05 {
		t.Errorf("temperature = %v, %v", v, ok)
	}
	if v, ok := r.Humidity.Get(); !ok || v != 40.12 {
		t.Errorf("humidity = %v, %v", v, ok)
	}
	if r.Timestamp.IsZero() {
		t.Error("reading not timestamped")
	}
	if len(drv.retries) != 1 || drv.retries[0] != 3 {
		t.Errorf("driver called with %v, want [3]", drv.retries)
	}
}

func TestDHTReadUnavailable(t *testing.T) {
	d := newTestDHT(t, &fakeDriver{err: errors.New("checksum mismatch")})

	r, err := d.Read(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if r.Temperature.Present() || r.Humidity.Present() {
		t.Errorf("failed read carries values: %+v", r)
	}
	if r.Timestamp.IsZero() {
		t.Error("failed read not timestamped")
	}
}

func TestDHTReadDropsImplausibleField(t *testing.T) {
	d := newTestDHT(t, &fakeDriver{humidity: 55.5, temperature: 3276.7})

	r, err := d.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if r.Temperature.Present() {
		t.Error("implausible temperature kept")
	}
	if v, ok := r.Humidity.Get(); !ok || v != 55.5 {
		t.Errorf("humidity = %v, %v; want 55.5, true", v, ok)
	}
}

func TestDHTReadHonoursContext(t *testing.T) {
	drv := &fakeDriver{humidity: 40, temperature: 20}
	d := newTestDHT(t, drv, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	if _, err := d.Read(context.Background()); err != nil {
		t.Fatalf("first Read: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := d.Read(ctx); err == nil {
		t.Fatal("second Read within the pacing interval succeeded")
	}
	if len(drv.retries) != 1 {
		t.Errorf("driver called %d times, want 1", len(drv.retries))
	}
}

func TestWithRetriesRejectsZero(t *testing.T) {
	if _, err := NewDHT("GPIO4", WithRetries(0)); err == nil {
		t.Fatal("NewDHT accepted a zero retry budget")
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"dht22", DHT22, false},
		{" DHT11 ", DHT11, false},
		{"AM2302", DHT22, false},
		{"sht31", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseModel(%q) = %q, %v", tt.in, got, err)
		}
	}
	if DHT22.MinInterval() != 2*time.Second || DHT11.MinInterval() != time.Second {
		t.Error("unexpected minimum intervals")
	}
}
