package reading

import (
	"math"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"absent", None(), "Err"},
		{"integer", Some(21), "21.0"},
		{"already one digit", Some(39.9), "39.9"},
		{"rounds up", Some(20.05), "20.1"},
		{"rounds down", Some(40.12), "40.1"},
		{"half away from zero", Some(0.25), "0.3"},
		{"negative half away from zero", Some(-1.25), "-1.3"},
		{"negative", Some(-12.34), "-12.3"},
		{"carry", Some(99.96), "100.0"},
		{"zero", Some(0), "0.0"},
		{"negative rounding to zero drops the sign", Some(-0.04), "0.0"},
		{"nan is absent", Some(math.NaN()), "Err"},
		{"inf is absent", Some(math.Inf(1)), "Err"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatOneFractionalDigit(t *testing.T) {
	for _, f := range []float64{-40, -3.14159, 0.04, 1e-9, 12.345, 55.55, 80, 1234.5678} {
		s := Format(Some(f))
		i := strings.IndexByte(s, '.')
		if i < 0 || len(s)-i-1 != 1 {
			t.Errorf("Format(%v) = %q, want exactly one fractional digit", f, s)
		}
		if f < -0.05 && !strings.HasPrefix(s, "-") {
			t.Errorf("Format(%v) = %q, lost the sign", f, s)
		}
	}
}

func TestReadingComplete(t *testing.T) {
	r := Reading{Temperature: None(), Humidity: Some(40)}
	if r.Complete() {
		t.Fatal("reading with absent temperature reported complete")
	}
	if h, ok := r.Humidity.Get(); !ok || h != 40 {
		t.Fatalf("humidity = %v, %v; want 40, true", h, ok)
	}
	r.Temperature = Some(20)
	if !r.Complete() {
		t.Fatal("reading with both fields reported incomplete")
	}
}
