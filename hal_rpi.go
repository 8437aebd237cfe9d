//go:build linux && arm && !disablegpio

// This file provides a Raspberry Pi implementation of the platform using the
// periph.io library.  The demand line goes through an ADS1115 since the Pi
// has no ADC of its own; the ADS1115 and the accelerometer share the I2C bus.

package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

var adsChannels = []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// openPlatform initialises periph and opens the grant pin, the demand ADC
// channel and the sensor bus.
func openPlatform(cfg Config) (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	grant := gpioreg.ByName(cfg.GrantPin)
	if grant == nil {
		return nil, fmt.Errorf("unknown grant pin %q", cfg.GrantPin)
	}
	if cfg.DemandChannel < 0 || cfg.DemandChannel >= len(adsChannels) {
		return nil, fmt.Errorf("demand_channel %d out of range", cfg.DemandChannel)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1115: %w", err)
	}
	fullScale := physic.ElectricPotential(cfg.ADCFullScaleMV) * physic.MilliVolt
	pin, err := adc.PinForChannel(adsChannels[cfg.DemandChannel], fullScale, 100*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		adc.Halt()
		bus.Close()
		return nil, fmt.Errorf("ads1115 channel %d: %w", cfg.DemandChannel, err)
	}
	return &Platform{
		Grant:  grant,
		Demand: voltageSampler{pin: pin, fullScale: fullScale, bits: cfg.ADCBits},
		Bus:    bus,
		closers: []func() error{
			pin.Halt,
			adc.Halt,
			bus.Close,
		},
	}, nil
}
