package main

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Platform is the set of lines and buses the node runs on.  openPlatform in
// hal.go or hal_rpi.go builds it for the current target.
type Platform struct {
	Grant  GrantPin
	Demand DemandSampler
	Bus    i2c.Bus

	closers []func() error
}

// Close releases the grant line, then the platform's devices and buses.
func (p *Platform) Close() error {
	var errs []error
	if p.Grant != nil {
		if err := p.Grant.In(gpio.Float, gpio.NoEdge); err != nil {
			errs = append(errs, fmt.Errorf("release grant: %w", err))
		}
	}
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// node wires the hardware layer on top of a platform.
type node struct {
	arbiter *Arbiter
	sensor  *AccelSensor
}

func newNode(p *Platform, cfg Config) *node {
	return &node{
		arbiter: NewArbiter(p.Grant, p.Demand, cfg.ADCBits),
		sensor:  NewAccelSensor(p.Bus, cfg.SensorAddress),
	}
}
