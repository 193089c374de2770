package sensor

import (
	"context"
	"time"

	"github.com/MichaelS11/go-dht"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nimdanitro/sensorlog/pkg/reading"
)

// DefaultRetries is the driver level retry budget for a single Read.
const DefaultRetries = 11

// driver is the part of *dht.DHT the reader uses.
type driver interface {
	ReadRetry(maxRetries int) (humidity float64, temperature float64, err error)
}

// DHT reads a DHT11/DHT22 sensor on a GPIO pin.
type DHT struct {
	pin     string
	model   Model
	retries int
	dev     driver
	limit   *rate.Limiter
	log     *zap.Logger
	now     func() time.Time
}

type Option func(d *DHT) error

// HostInit prepares the GPIO host drivers. It must be called once before
// NewDHT.
func HostInit() error {
	return errors.Wrap(dht.HostInit(), "dht host init")
}

// NewDHT opens the sensor on pin.
func NewDHT(pin string, opts ...Option) (*DHT, error) {
	d := &DHT{
		pin:     pin,
		model:   DHT22,
		retries: DefaultRetries,
		log:     zap.L(),
		now:     time.Now,
	}

	// apply the options
	for _, o := range opts {
		if err := o(d); err != nil {
			return nil, err
		}
	}

	if d.limit == nil {
		d.limit = rate.NewLimiter(rate.Every(d.model.MinInterval()), 1)
	}

	if d.dev == nil {
		dev, err := dht.NewDHT(pin, dht.Celsius, string(d.model))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open %s on %s", d.model, pin)
		}
		d.dev = dev
	}

	return d, nil
}

func WithModel(m Model) Option {
	return func(d *DHT) error {
		d.model = m
		return nil
	}
}

func WithRetries(n int) Option {
	return func(d *DHT) error {
		if n < 1 {
			return errors.Errorf("retries must be at least 1, got %d", n)
		}
		d.retries = n
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *DHT) error {
		d.log = l
		return nil
	}
}

// WithLimiter overrides the pacing limiter. The default allows one read per
// Model.MinInterval.
func WithLimiter(l *rate.Limiter) Option {
	return func(d *DHT) error {
		d.limit = l
		return nil
	}
}

func (d *DHT) Read(ctx context.Context) (reading.Reading, error) {
	// the sensor cannot sample faster than its physical rate
	if err := d.limit.Wait(ctx); err != nil {
		d.log.Error("cannot await rate limit", zap.Error(err))
		return reading.Reading{Timestamp: d.now()}, err
	}

	d.log.Debug("reading sensor", zap.String("pin", d.pin), zap.String("model", string(d.model)))
	humidity, temperature, err := d.dev.ReadRetry(d.retries)
	r := reading.Reading{Timestamp: d.now()}
	if err != nil {
		d.log.Warn("all retries to read sensor failed",
			zap.String("pin", d.pin),
			zap.Int("retries", d.retries),
			zap.Error(err),
		)
		return r, errors.Wrapf(ErrUnavailable, "%s on %s: %v", d.model, d.pin, err)
	}

	r.Temperature = reading.Some(temperature)
	r.Humidity = reading.Some(humidity)
	checked := d.model.Limits().Check(r)
	if !checked.Complete() {
		d.log.Warn("discarding implausible sensor value",
			zap.Float64("temperature", temperature),
			zap.Float64("humidity", humidity),
		)
	}
	return checked, nil
}
