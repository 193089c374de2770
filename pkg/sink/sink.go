// Package sink renders formatted readings to output media.
package sink

import (
	"time"

	"go.uber.org/multierr"
)

// Sink consumes one formatted reading per tick.
type Sink interface {
	Name() string
	Write(ts time.Time, temperature, humidity string) error
	Close() error
}

// CloseAll closes every sink and combines the errors.
func CloseAll(sinks []Sink) error {
	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
