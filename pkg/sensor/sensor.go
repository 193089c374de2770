package sensor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimdanitro/sensorlog/pkg/reading"
)

// ErrUnavailable is returned when the driver exhausted its retries without
// a usable sample.
var ErrUnavailable = errors.New("sensor unavailable")

// Reader reads one sample from a temperature/humidity sensor.
//
// Read always returns a Reading stamped with the time of the attempt; on
// failure the affected fields are absent. A non-nil error means no field
// could be read.
type Reader interface {
	Read(ctx context.Context) (reading.Reading, error)
}

// Model identifies a supported sensor family.
type Model string

const (
	DHT22 Model = "dht22"
	DHT11 Model = "dht11"
)

// ParseModel accepts the model names used on the command line.
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case DHT22, DHT11:
		return m, nil
	case "am2302":
		return DHT22, nil
	default:
		return "", fmt.Errorf("unknown sensor model %q", s)
	}
}

// MinInterval is the shortest time between two reads the sensor supports.
func (m Model) MinInterval() time.Duration {
	if m == DHT11 {
		return time.Second
	}
	return 2 * time.Second
}

// Range holds the plausible measurement limits of a sensor.
type Range struct {
	MinTemp, MaxTemp         float64
	MinHumidity, MaxHumidity float64
}

// Limits returns the datasheet measurement range of the model.
func (m Model) Limits() Range {
	if m == DHT11 {
		return Range{MinTemp: 0, MaxTemp: 50, MinHumidity: 20, MaxHumidity: 90}
	}
	return Range{MinTemp: -40, MaxTemp: 80, MinHumidity: 0, MaxHumidity: 100}
}

// Check drops every field of r that lies outside the range. The other
// field is kept.
func (rg Range) Check(r reading.Reading) reading.Reading {
	if t, ok := r.Temperature.Get(); ok && (t < rg.MinTemp || t > rg.MaxTemp) {
		r.Temperature = reading.None()
	}
	if h, ok := r.Humidity.Get(); ok && (h < rg.MinHumidity || h > rg.MaxHumidity) {
		r.Humidity = reading.None()
	}
	return r
}
