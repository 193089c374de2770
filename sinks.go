package main

import (
	"io"

	"go.uber.org/zap"

	"github.com/nimdanitro/sensorlog/pkg/oled"
	"github.com/nimdanitro/sensorlog/pkg/sink"
)

// displayOpener brings the display up; replaced in tests.
type displayOpener func(cfg oled.Config, log *zap.Logger) (sink.Drawer, error)

func openDisplay(cfg oled.Config, log *zap.Logger) (sink.Drawer, error) {
	d, err := oled.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// openSinks builds the enabled sinks in dispatch order. A sink that cannot
// be opened is reported and left out.
func openSinks(c *Config, stdout io.Writer, display displayOpener, log *zap.Logger) []sink.Sink {
	var sinks []sink.Sink

	if c.OutputFile != "" {
		csv, err := sink.OpenCSV(c.OutputFile, sink.CSVOptions{
			FlushEvery: c.FlushEvery,
			FlushOff:   c.FlushOff,
			Logger:     log,
		})
		if err != nil {
			log.Error("CSV output disabled", zap.String("path", c.OutputFile), zap.Error(err))
		} else {
			sinks = append(sinks, csv)
		}
	}

	if c.ConsoleEnabled() {
		sinks = append(sinks, sink.NewConsole(stdout))
	}

	if c.Screen {
		d, err := display(oled.Config{Bus: c.I2CBus, Contrast: c.Contrast, Rotated: c.Rotate}, log)
		if err != nil {
			log.Error("display output disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink.NewDisplay(d))
		}
	}

	return sinks
}
