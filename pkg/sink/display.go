package sink

import (
	"io"
	"time"

	"github.com/nimdanitro/sensorlog/pkg/oled"
)

// Drawer replaces the content of a display with the given lines.
type Drawer interface {
	Draw(lines []oled.Line) error
}

// Display shows the latest reading on a small screen.
type Display struct {
	d Drawer
}

func NewDisplay(d Drawer) *Display {
	return &Display{d: d}
}

func (s *Display) Name() string { return "display" }

// Lines lays out a reading the way it appears on screen.
func Lines(ts time.Time, temperature, humidity string) []oled.Line {
	return []oled.Line{
		{X: 3, Y: 5, Text: ts.Format("Mon 02   15:04")},
		{X: 3, Y: 25, Text: "Temp:    " + temperature + "*C"},
		{X: 3, Y: 40, Text: "Humidity:" + humidity + "%"},
	}
}

func (s *Display) Write(ts time.Time, temperature, humidity string) error {
	return s.d.Draw(Lines(ts, temperature, humidity))
}

func (s *Display) Close() error {
	if c, ok := s.d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
