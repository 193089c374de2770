// Package textfile publishes readings for the node_exporter textfile
// collector.
package textfile

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nimdanitro/sensorlog/pkg/reading"
)

// Recorder keeps the latest reading in a private registry and rewrites the
// textfile after every reading.
type Recorder struct {
	path   string
	sensor string
	reg    *prometheus.Registry

	temperature *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
	lastRead    *prometheus.GaugeVec
	failures    *prometheus.CounterVec
}

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sensorlog",
			Name:      name,
			Help:      help,
		},
		[]string{"sensor"},
	)
}

// New creates a recorder writing to path. sensor labels every series.
func New(path, sensor string) (*Recorder, error) {
	r := &Recorder{
		path:        path,
		sensor:      sensor,
		reg:         prometheus.NewRegistry(),
		temperature: newGauge("temperature_celsius", "Air temperature (units: degrees Celsius)"),
		humidity:    newGauge("humidity_percent", "Humidity (units: % of relative humidity)"),
		lastRead:    newGauge("last_read_timestamp_seconds", "Unix time of the last sensor read"),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensorlog",
				Name:      "read_failures_total",
				Help:      "Reads with at least one missing value",
			},
			[]string{"sensor"},
		),
	}
	for _, c := range []prometheus.Collector{r.temperature, r.humidity, r.lastRead, r.failures} {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("cannot register collector: %w", err)
		}
	}
	// export a zero counter before the first failure
	r.failures.WithLabelValues(sensor)
	return r, nil
}

// Record updates the series from rd and rewrites the textfile. Missing
// values remove their series rather than repeating a stale one.
func (r *Recorder) Record(_ context.Context, rd reading.Reading) error {
	set(r.temperature, r.sensor, rd.Temperature)
	set(r.humidity, r.sensor, rd.Humidity)
	r.lastRead.WithLabelValues(r.sensor).Set(float64(rd.Timestamp.UnixNano()) / 1e9)
	if !rd.Complete() {
		r.failures.WithLabelValues(r.sensor).Inc()
	}

	if err := prometheus.WriteToTextfile(r.path, r.reg); err != nil {
		return fmt.Errorf("cannot write metrics textfile: %w", err)
	}
	return nil
}

func set(g *prometheus.GaugeVec, sensor string, v reading.Value) {
	if f, ok := v.Get(); ok {
		g.WithLabelValues(sensor).Set(f)
		return
	}
	g.DeleteLabelValues(sensor)
}
