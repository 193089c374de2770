package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/nimdanitro/sensorlog/pkg/sensor"
	"github.com/nimdanitro/sensorlog/pkg/sink"
)

// Config is read once at startup.
type Config struct {
	OutputFile       string
	Interval         time.Duration
	FlushEvery       int
	FlushOff         bool
	Print            bool
	Screen           bool
	TestRequirements bool
	ExitOnError      bool

	Pin      string
	Model    sensor.Model
	Retries  int
	I2CBus   string
	Contrast uint8
	Rotate   bool

	MetricsFile string
	LogLevel    zapcore.Level
}

// ConsoleEnabled reports whether readings are printed. Writing a CSV file
// silences the console unless printing was asked for.
func (c *Config) ConsoleEnabled() bool {
	return c.OutputFile == "" || c.Print
}

// env holds the flags that fall back to an environment variable.
var env = map[string]string{
	"output-file":  "SENSORLOG_OUTPUT_FILE",
	"pin":          "SENSORLOG_PIN",
	"model":        "SENSORLOG_MODEL",
	"metrics-file": "SENSORLOG_METRICS_FILE",
	"log-level":    "SENSORLOG_LOG_LEVEL",
}

// normalizeArgs rewrites the two letter short flag -fo, which pflag cannot
// express, to its long form.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-fo" {
			a = "--flush-off"
		}
		out[i] = a
	}
	return out
}

func parseConfig(args []string, getenv func(string) string) (*Config, error) {
	var (
		c        Config
		interval int
		model    string
		level    string
	)
	fs := pflag.NewFlagSet("sensorlog", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.StringVarP(&c.OutputFile, "output-file", "o", "", "CSV file to append the readings to. Without it readings are printed")
	fs.IntVarP(&interval, "interval", "i", 60, "Seconds between two sensor reads. Min 2s for DHT22")
	fs.IntVarP(&c.FlushEvery, "flush", "f", sink.DefaultFlushEvery, "Flush the CSV file to disk every LINES lines")
	fs.BoolVar(&c.FlushOff, "flush-off", false, "Never flush explicitly and leave it to the write buffer (short: -fo)")
	fs.BoolVarP(&c.Print, "print", "p", false, "Print readings to the console even when writing a CSV file")
	fs.BoolVarP(&c.Screen, "screen", "s", false, "Show readings on the OLED display")
	fs.BoolVarP(&c.TestRequirements, "test-requirements", "t", false, "Check that sensor and display drivers are available and exit")
	fs.BoolVarP(&c.ExitOnError, "exit-on-error", "x", false, "Exit when the sensor cannot be read")
	fs.StringVar(&c.Pin, "pin", "GPIO4", "GPIO pin the sensor data line is wired to")
	fs.StringVar(&model, "model", string(sensor.DHT22), "Sensor model: dht22 or dht11")
	fs.IntVar(&c.Retries, "retries", sensor.DefaultRetries, "Driver retries per read")
	fs.StringVar(&c.I2CBus, "i2c-bus", "", "I2C bus of the display, empty for the first one")
	fs.Uint8Var(&c.Contrast, "contrast", 5, "Display contrast (0-255)")
	fs.BoolVar(&c.Rotate, "rotate", true, "Rotate the display by 180 degrees")
	fs.StringVar(&c.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile collector file")
	fs.StringVar(&level, "log-level", "info", "Log level")

	for name, key := range env {
		if v := getenv(key); v != "" {
			if err := fs.Lookup(name).Value.Set(v); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	if c.Model, err = sensor.ParseModel(model); err != nil {
		return nil, err
	}
	if c.LogLevel, err = zapcore.ParseLevel(level); err != nil {
		return nil, err
	}
	c.Interval = time.Duration(interval) * time.Second

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the sensor or the sinks cannot honour.
func (c *Config) Validate() error {
	if floor := c.Model.MinInterval(); c.Interval < floor {
		return fmt.Errorf("interval %s is below the %s minimum of %s", c.Interval, c.Model, floor)
	}
	if c.FlushEvery < 1 {
		return fmt.Errorf("flush must be at least 1 line, got %d", c.FlushEvery)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	return nil
}
