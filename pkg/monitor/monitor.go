// Package monitor runs the sample and fan-out loop.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nimdanitro/sensorlog/pkg/reading"
	"github.com/nimdanitro/sensorlog/pkg/sensor"
	"github.com/nimdanitro/sensorlog/pkg/sink"
)

const scope = "github.com/nimdanitro/sensorlog/pkg/monitor"

// ErrFatal marks a read failure that must terminate the process.
var ErrFatal = errors.New("fatal sensor failure")

// Recorder receives every reading after it has been dispatched.
type Recorder interface {
	Record(ctx context.Context, r reading.Reading) error
}

type Monitor struct {
	reader      sensor.Reader
	sinks       []sink.Sink
	recorders   []Recorder
	interval    time.Duration
	exitOnError bool

	log     *zap.Logger
	tracer  trace.Tracer
	metrics *metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

type Option func(m *Monitor) error

// New creates a monitor polling r. Sinks are written in the order given.
func New(r sensor.Reader, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		reader:   r,
		interval: time.Minute,
		log:      zap.L(),
		tracer:   otel.Tracer(scope),
		sleep:    sleep,
	}

	// apply the options
	for _, o := range opts {
		if err := o(m); err != nil {
			return nil, err
		}
	}

	if m.metrics == nil {
		mt, err := newMetrics(meter())
		if err != nil {
			return nil, fmt.Errorf("cannot create instruments: %w", err)
		}
		m.metrics = mt
	}
	return m, nil
}

func WithSinks(s ...sink.Sink) Option {
	return func(m *Monitor) error {
		m.sinks = append(m.sinks, s...)
		return nil
	}
}

func WithRecorders(r ...Recorder) Option {
	return func(m *Monitor) error {
		m.recorders = append(m.recorders, r...)
		return nil
	}
}

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) error {
		if d <= 0 {
			return fmt.Errorf("interval must be positive, got %s", d)
		}
		m.interval = d
		return nil
	}
}

// WithExitOnError makes a failed read fatal.
func WithExitOnError(b bool) Option {
	return func(m *Monitor) error {
		m.exitOnError = b
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) error {
		m.log = l
		return nil
	}
}

// Tick reads the sensor once and writes the reading to every sink. It only
// returns an error when the read failed and the monitor exits on error.
func (m *Monitor) Tick(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "monitor.tick")
	defer span.End()

	start := time.Now()
	r, err := m.reader.Read(ctx)
	m.metrics.readDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil || !r.Complete() {
		m.metrics.readFailures.Add(ctx, 1)
		if err == nil {
			err = sensor.ErrUnavailable
		}
		m.log.Error("Failed to retrieve data from humidity sensor",
			zap.Bool("temperature", r.Temperature.Present()),
			zap.Bool("humidity", r.Humidity.Present()),
			zap.Error(err),
		)
		if m.exitOnError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fatal read failure")
			return fmt.Errorf("%w: %w", ErrFatal, err)
		}
	}

	temperature := reading.Format(r.Temperature)
	humidity := reading.Format(r.Humidity)
	m.log.Info("read sensor",
		zap.String("temperature", temperature),
		zap.String("humidity", humidity),
		zap.Time("timestamp", r.Timestamp),
	)
	m.metrics.observe(ctx, r)

	for _, s := range m.sinks {
		if err := s.Write(r.Timestamp, temperature, humidity); err != nil {
			m.metrics.sinkErrors.Add(ctx, 1, metricSink(s.Name()))
			span.AddEvent("sink write failed", trace.WithAttributes(attribute.String("sink", s.Name())))
			m.log.Error("cannot write reading", zap.String("sink", s.Name()), zap.Error(err))
		}
	}

	for _, rec := range m.recorders {
		if err := rec.Record(ctx, r); err != nil {
			m.log.Error("cannot record reading", zap.Error(err))
		}
	}
	return nil
}

// Run ticks every interval until ctx is done or a tick fails fatally.
// Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("starting monitor",
		zap.Duration("interval", m.interval),
		zap.Int("sinks", len(m.sinks)),
		zap.Bool("exitOnError", m.exitOnError),
	)
	for {
		if err := m.Tick(ctx); err != nil {
			return err
		}
		if err := m.sleep(ctx, m.interval); err != nil {
			m.log.Info("stopping monitor", zap.Error(err))
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
