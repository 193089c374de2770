package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	csvHeader = "Date,Time,Temperature,Humidity\r\n"

	// DefaultFlushEvery is the number of lines between two flushes.
	DefaultFlushEvery = 5
)

type file interface {
	io.WriteCloser
	Sync() error
}

// CSV appends readings to a file, flushing every FlushEvery lines. The
// line counter advances on every write; with FlushOff only a failed write
// resets it.
type CSV struct {
	path string
	f    file
	w    *bufio.Writer
	log  *zap.Logger

	flushOff   bool
	flushEvery int
	lines      int
}

// CSVOptions controls the flushing policy.
type CSVOptions struct {
	FlushEvery int
	// FlushOff leaves flushing to the write buffer.
	FlushOff bool
	Logger   *zap.Logger
}

// OpenCSV opens path for appending, creating it if needed. The header is
// written when the file is empty.
func OpenCSV(path string, opts CSVOptions) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open csv file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot stat csv file: %w", err)
	}
	c, err := newCSV(path, f, st.Size() == 0, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func newCSV(path string, f file, empty bool, opts CSVOptions) (*CSV, error) {
	if opts.FlushEvery == 0 {
		opts.FlushEvery = DefaultFlushEvery
	}
	if opts.FlushEvery < 0 {
		return nil, fmt.Errorf("flush interval must be positive, got %d", opts.FlushEvery)
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	c := &CSV{
		path:       path,
		f:          f,
		w:          bufio.NewWriter(f),
		log:        opts.Logger.With(zap.String("sink", "csv"), zap.String("path", path)),
		flushOff:   opts.FlushOff,
		flushEvery: opts.FlushEvery,
	}
	if empty {
		if _, err := c.w.WriteString(csvHeader); err != nil {
			return nil, fmt.Errorf("cannot write csv header: %w", err)
		}
		c.log.Info("created csv file")
	}
	return c, nil
}

func (c *CSV) Name() string { return "csv" }

func (c *CSV) Write(ts time.Time, temperature, humidity string) error {
	if _, err := fmt.Fprintf(c.w, "%s,%s,%s,%s\r\n",
		ts.Format(time.DateOnly), ts.Format(time.TimeOnly), temperature, humidity); err != nil {
		c.reset()
		return fmt.Errorf("cannot write csv line: %w", err)
	}

	c.lines++
	if c.flushOff || c.lines < c.flushEvery {
		return nil
	}
	c.lines = 0
	return c.Flush()
}

// Flush pushes buffered lines to the file and syncs it to disk.
func (c *CSV) Flush() error {
	if err := c.w.Flush(); err != nil {
		c.reset()
		return fmt.Errorf("cannot flush csv buffer: %w", err)
	}
	if err := c.f.Sync(); err != nil {
		return fmt.Errorf("cannot sync csv file: %w", err)
	}
	c.log.Debug("flushed csv file")
	return nil
}

// reset drops the buffered lines after a failed write; bufio.Writer
// otherwise returns the same error on every later call.
func (c *CSV) reset() {
	if n := c.w.Buffered(); n > 0 {
		c.log.Warn("dropping buffered csv data", zap.Int("bytes", n))
	}
	c.w.Reset(c.f)
	c.lines = 0
}

// Close writes out any buffered lines and closes the file.
func (c *CSV) Close() error {
	ferr := c.w.Flush()
	if err := c.f.Close(); err != nil {
		return fmt.Errorf("cannot close csv file: %w", err)
	}
	if ferr != nil {
		return fmt.Errorf("cannot flush csv buffer: %w", ferr)
	}
	return nil
}
