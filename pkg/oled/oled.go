// Package oled drives a small monochrome SSD1306 display over I2C.
package oled

import (
	"image"
	"image/draw"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// Line is a text run placed with its top-left corner at (X, Y).
type Line struct {
	X, Y int
	Text string
}

type panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Config describes how the display is attached.
type Config struct {
	// Bus is the I2C bus name; empty selects the first bus.
	Bus      string
	Contrast byte
	// Rotated flips the picture by 180 degrees.
	Rotated bool
}

// Device is an initialised display.
type Device struct {
	panel panel
	bus   i2c.BusCloser
	face  font.Face
	log   *zap.Logger
}

// Open brings the display up. It is called once at startup.
func Open(cfg Config, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.L()
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open i2c bus %q", cfg.Bus)
	}

	opts := ssd1306.DefaultOpts
	opts.Rotated = cfg.Rotated
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "cannot initialise ssd1306")
	}
	if err := dev.SetContrast(cfg.Contrast); err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "cannot set contrast")
	}
	log.Info("display ready",
		zap.String("bus", bus.String()),
		zap.Stringer("bounds", dev.Bounds()),
		zap.Uint8("contrast", cfg.Contrast),
	)
	return &Device{panel: dev, bus: bus, face: Face, log: log}, nil
}

// Face is the monospace font every line is drawn with.
var Face font.Face = basicfont.Face7x13

// Renderable reports the first rune of s that Face has no glyph for.
func Renderable(s string) error {
	return renderable(Face, s)
}

func renderable(face font.Face, s string) error {
	for _, r := range s {
		if _, _, _, _, ok := face.Glyph(fixed.Point26_6{}, r); !ok {
			return errors.Errorf("no glyph for %q", r)
		}
	}
	return nil
}

// Canvas is the off-screen frame handed to a Render callback.
type Canvas struct {
	img  draw.Image
	face font.Face
}

// Text draws s with its top-left corner at (x, y).
func (c *Canvas) Text(x, y int, s string) error {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return errors.Errorf("text origin (%d,%d) outside %v", x, y, c.img.Bounds())
	}
	if err := renderable(c.face, s); err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(image1bit.On),
		Face: c.face,
		Dot:  fixed.P(x, y+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return nil
}

// Render hands fn a cleared frame and pushes the frame to the display
// once fn returns, whether or not fn failed.
func (d *Device) Render(fn func(c *Canvas) error) (err error) {
	bounds := d.panel.Bounds()
	c := &Canvas{img: image1bit.NewVerticalLSB(bounds), face: d.face}
	defer func() {
		if perr := d.panel.Draw(bounds, c.img, image.Point{}); perr != nil {
			err = multierr.Append(err, errors.Wrap(perr, "cannot push frame"))
		}
	}()
	return fn(c)
}

// Draw replaces the whole screen with lines.
func (d *Device) Draw(lines []Line) error {
	return d.Render(func(c *Canvas) error {
		var err error
		for _, l := range lines {
			err = multierr.Append(err, c.Text(l.X, l.Y, l.Text))
		}
		return err
	})
}

// Close blanks the display and releases the bus.
func (d *Device) Close() error {
	err := d.panel.Halt()
	if d.bus != nil {
		err = multierr.Append(err, d.bus.Close())
	}
	return err
}
