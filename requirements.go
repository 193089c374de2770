package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/nimdanitro/sensorlog/pkg/sensor"
)

// probe checks that one external dependency is usable.
type probe struct {
	name  string
	check func() error
}

func requirementProbes(c *Config) []probe {
	probes := []probe{
		{"periph host drivers", func() error {
			st, err := host.Init()
			if err != nil {
				return err
			}
			if len(st.Loaded) == 0 {
				return errors.New("no host driver loaded")
			}
			return nil
		}},
		{"dht gpio driver", sensor.HostInit},
		{"i2c bus for display", func() error {
			bus, err := i2creg.Open(c.I2CBus)
			if err != nil {
				return err
			}
			return bus.Close()
		}},
	}
	if c.OutputFile != "" {
		probes = append(probes, probe{"csv directory", func() error {
			dir := filepath.Dir(c.OutputFile)
			st, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !st.IsDir() {
				return errors.Errorf("%s is not a directory", dir)
			}
			return nil
		}})
	}
	return probes
}

// checkRequirements prints one status line per probe and reports whether
// all of them passed.
func checkRequirements(w io.Writer, probes []probe) bool {
	ok := true
	for _, p := range probes {
		if err := p.check(); err != nil {
			ok = false
			fmt.Fprintf(w, "%-22s MISSING (%v)\n", p.name, err)
			continue
		}
		fmt.Fprintf(w, "%-22s OK\n", p.name)
	}
	return ok
}
