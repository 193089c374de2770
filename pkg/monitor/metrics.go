package monitor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/nimdanitro/sensorlog/pkg/reading"
)

type metrics struct {
	temperature  metric.Float64Gauge
	humidity     metric.Float64Gauge
	readDuration metric.Float64Histogram
	readFailures metric.Int64Counter
	sinkErrors   metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)
	if m.temperature, err = meter.Float64Gauge("sensor.temperature",
		metric.WithUnit("Cel"),
		metric.WithDescription("Temperature in degrees Celsius"),
	); err != nil {
		return nil, err
	}
	if m.humidity, err = meter.Float64Gauge("sensor.humidity",
		metric.WithUnit("%"),
		metric.WithDescription("Relative humidity as a percentage"),
	); err != nil {
		return nil, err
	}
	if m.readDuration, err = meter.Float64Histogram("sensor.read.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent reading the sensor, retries included"),
	); err != nil {
		return nil, err
	}
	if m.readFailures, err = meter.Int64Counter("sensor.read.failures",
		metric.WithDescription("Reads that returned at least one absent value"),
	); err != nil {
		return nil, err
	}
	if m.sinkErrors, err = meter.Int64Counter("sink.write.errors",
		metric.WithDescription("Failed writes per sink"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *metrics) observe(ctx context.Context, r reading.Reading) {
	if v, ok := r.Temperature.Get(); ok {
		m.temperature.Record(ctx, v)
	}
	if v, ok := r.Humidity.Get(); ok {
		m.humidity.Record(ctx, v)
	}
}

func metricSink(name string) metric.AddOption {
	return metric.WithAttributes(attribute.String("sink", name))
}

func meter() metric.Meter {
	return otel.Meter(scope, metric.WithInstrumentationAttributes(semconv.OTelScopeName(scope)))
}
