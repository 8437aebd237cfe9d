package main

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

// MPU-6050 registers and default address.
const (
	mpuAddress     = 0x68
	regAccelXOutH  = 0x3B // first of six big-endian X/Y/Z bytes
	regPwrMgmt1    = 0x6B
	accelFrameSize = 6
)

// ErrShortRead reports that the sensor did not deliver a full frame.  The
// previous sample is kept when it occurs.
var ErrShortRead = errors.New("accelerometer: short read")

// AccelSensor reads raw acceleration from an MPU-6050 style sensor.  It keeps
// the last good sample and hands it back unchanged when a transaction fails.
type AccelSensor struct {
	c    conn.Conn
	last AccelerationSample
}

// NewAccelSensor returns a sensor at addr on bus.
func NewAccelSensor(bus i2c.Bus, addr uint16) *AccelSensor {
	return &AccelSensor{c: &i2c.Dev{Bus: bus, Addr: addr}}
}

// Wake clears the power management register, taking the sensor out of sleep.
func (s *AccelSensor) Wake() error {
	if err := s.c.Tx([]byte{regPwrMgmt1, 0}, nil); err != nil {
		return fmt.Errorf("wake accelerometer: %w", err)
	}
	return nil
}

// ReadAcceleration reads X, Y and Z in a single transaction.  On failure the
// previous sample is returned together with an error wrapping ErrShortRead;
// the sample is never zeroed.
func (s *AccelSensor) ReadAcceleration() (AccelerationSample, error) {
	var buf [accelFrameSize]byte
	if err := s.c.Tx([]byte{regAccelXOutH}, buf[:]); err != nil {
		return s.last, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	s.last = AccelerationSample{
		X: int16(binary.BigEndian.Uint16(buf[0:2])),
		Y: int16(binary.BigEndian.Uint16(buf[2:4])),
		Z: int16(binary.BigEndian.Uint16(buf[4:6])),
	}
	return s.last, nil
}

// Last returns the most recent good sample.
func (s *AccelSensor) Last() AccelerationSample { return s.last }
