//go:build !linux || !arm || disablegpio

package main

// This file provides a simulated platform so the node can be run and tested
// on a desktop machine.  On a Raspberry Pi hal_rpi.go is used instead.

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// openPlatform returns the simulated lines.  Setting NODEHAL_SIM_DEMAND=1 in
// the environment makes the simulated peer assert demand.
func openPlatform(cfg Config) (*Platform, error) {
	full := int32(1)<<cfg.ADCBits - 1
	level := full
	if os.Getenv("NODEHAL_SIM_DEMAND") == "1" {
		level = 0
	}
	return &Platform{
		Grant:  SplitPin{Line: &simLine{}},
		Demand: &simADC{raw: level, full: full, fullScale: physic.ElectricPotential(cfg.ADCFullScaleMV) * physic.MilliVolt},
		Bus:    newSimMPU(cfg.SensorAddress),
	}, nil
}

// simLine is a pin with separately controlled direction and output latch.
type simLine struct {
	mu    sync.Mutex
	dir   Direction
	latch gpio.Level
}

func (l *simLine) SetDirection(d Direction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dir = d
	return nil
}

func (l *simLine) WriteLevel(v gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latch = v
	return nil
}

// simADC returns a fixed raw level.
type simADC struct {
	mu        sync.Mutex
	raw       int32
	full      int32
	fullScale physic.ElectricPotential
}

func (a *simADC) Read() (analog.Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return analog.Sample{V: a.fullScale * physic.ElectricPotential(a.raw) / physic.ElectricPotential(a.full), Raw: a.raw}, nil
}

// simMPU is an in-memory MPU-6050 answering on one address.  It starts
// asleep and reads back zeros until woken, like the real part.
type simMPU struct {
	mu     sync.Mutex
	addr   uint16
	awake  bool
	sample AccelerationSample
}

func newSimMPU(addr uint16) *simMPU {
	// Lying flat: 1g on Z at the default +-2g range is 16384 counts.
	return &simMPU{addr: addr, sample: AccelerationSample{X: 120, Y: -80, Z: 16384}}
}

func (m *simMPU) String() string { return "sim-i2c" }

func (m *simMPU) SetSpeed(f physic.Frequency) error { return nil }

func (m *simMPU) Close() error { return nil }

func (m *simMPU) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr != m.addr {
		return fmt.Errorf("sim-i2c: no device at %#x", addr)
	}
	if len(w) == 0 {
		return fmt.Errorf("sim-i2c: missing register address")
	}
	switch {
	case w[0] == regPwrMgmt1 && len(w) == 2:
		m.awake = w[1]&0x40 == 0
		return nil
	case w[0] == regAccelXOutH && len(r) <= accelFrameSize:
		var frame [accelFrameSize]byte
		if m.awake {
			binary.BigEndian.PutUint16(frame[0:], uint16(m.sample.X))
			binary.BigEndian.PutUint16(frame[2:], uint16(m.sample.Y))
			binary.BigEndian.PutUint16(frame[4:], uint16(m.sample.Z))
		}
		copy(r, frame[:])
		return nil
	}
	return fmt.Errorf("sim-i2c: unsupported transaction w=%x r=%d", w, len(r))
}
