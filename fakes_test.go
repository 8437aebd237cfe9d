package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// recordingLine is a LineControl that logs every operation in order.
type recordingLine struct {
	ops   []string
	dir   Direction
	latch gpio.Level
}

func (l *recordingLine) SetDirection(d Direction) error {
	l.ops = append(l.ops, "dir:"+d.String())
	l.dir = d
	return nil
}

func (l *recordingLine) WriteLevel(v gpio.Level) error {
	name := "low"
	if v == gpio.High {
		name = "high"
	}
	l.ops = append(l.ops, "level:"+name)
	l.latch = v
	return nil
}

// drivenHigh reports whether the line is currently an output driving high.
func (l *recordingLine) drivenHigh() bool {
	return l.dir == Output && l.latch == gpio.High
}

// fakeADC returns a settable raw reading.
type fakeADC struct {
	raw int32
	err error
}

func (a *fakeADC) Read() (analog.Sample, error) {
	if a.err != nil {
		return analog.Sample{}, a.err
	}
	return analog.Sample{Raw: a.raw}, nil
}

var errBusFault = errors.New("bus fault")

// fakeMPU is an i2c.Bus serving one accelerometer frame.  With fail set
// every transaction errors.
type fakeMPU struct {
	mu     sync.Mutex
	sample AccelerationSample
	fail   bool
	woken  bool
}

func (m *fakeMPU) String() string { return "fake-mpu" }
func (m *fakeMPU) SetSpeed(f physic.Frequency) error { return nil }

func (m *fakeMPU) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errBusFault
	}
	if addr != mpuAddress {
		return fmt.Errorf("no device at %#x", addr)
	}
	switch {
	case len(w) == 2 && w[0] == regPwrMgmt1:
		m.woken = true
	case len(w) == 1 && w[0] == regAccelXOutH && len(r) == accelFrameSize:
		binary.BigEndian.PutUint16(r[0:], uint16(m.sample.X))
		binary.BigEndian.PutUint16(r[2:], uint16(m.sample.Y))
		binary.BigEndian.PutUint16(r[4:], uint16(m.sample.Z))
	default:
		return fmt.Errorf("unexpected transaction w=%x r=%d", w, len(r))
	}
	return nil
}

func (m *fakeMPU) set(s AccelerationSample, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sample = s
	m.fail = fail
}
