package sink

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Console prints one line per reading.
type Console struct {
	w io.Writer
}

// NewConsole writes to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Write(ts time.Time, temperature, humidity string) error {
	_, err := fmt.Fprintf(c.w, "%s  Temp=%s*C  Humidity=%s%%\n", ts.Format(time.DateTime), temperature, humidity)
	return err
}

func (c *Console) Close() error { return nil }
