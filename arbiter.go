package main

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
)

// GrantPin is the subset of gpio.PinIO the arbiter needs.  Any periph pin
// satisfies it; SplitPin adapts platforms that expose direction and level as
// separate controls.
type GrantPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Out(l gpio.Level) error
}

// DemandSampler returns one raw sample of the demand line.  analog.PinADC
// satisfies it.
type DemandSampler interface {
	Read() (analog.Sample, error)
}

// Arbiter owns the grant line and samples the demand line.  The grant line is
// shared with the peer, so the arbiter only ever releases it or drives it
// low; it has no operation that drives the line high.
//
// An Arbiter is meant to be driven from a single control loop and is not safe
// for concurrent use.
type Arbiter struct {
	grant   GrantPin
	demand  DemandSampler
	adcBits int
	low     bool
}

// NewArbiter returns an arbiter for the given lines.  adcBits is the
// resolution of the raw readings returned by demand.
func NewArbiter(grant GrantPin, demand DemandSampler, adcBits int) *Arbiter {
	return &Arbiter{grant: grant, demand: demand, adcBits: adcBits}
}

// SampleDemand takes a single sample of the demand line and reports whether
// the peer is asserting demand (line below threshold).
func (a *Arbiter) SampleDemand() (bool, error) {
	s, err := a.demand.Read()
	if err != nil {
		return false, fmt.Errorf("sample demand: %w", err)
	}
	return demandAsserted(s, a.adcBits), nil
}

// ReleaseGrant floats the grant line so the pull-up or the peer holds it
// high.  Only the direction changes; the output latch is left alone.
func (a *Arbiter) ReleaseGrant() error {
	if err := a.grant.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("release grant: %w", err)
	}
	a.low = false
	return nil
}

// AssertGrantLow drives the grant line low.  The low level is latched before
// the pin becomes an output.
func (a *Arbiter) AssertGrantLow() error {
	if err := a.grant.Out(gpio.Low); err != nil {
		return fmt.Errorf("assert grant: %w", err)
	}
	a.low = true
	return nil
}

// Granted reports whether the last grant operation left the line driven low.
func (a *Arbiter) Granted() bool { return a.low }

// Direction of a pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// LineControl is the raw pin capability of platforms where direction and
// output level are configured independently (AVR-style DDR/PORT registers,
// FTDI MPSSE banks, GPIO expanders).
type LineControl interface {
	SetDirection(d Direction) error
	WriteLevel(l gpio.Level) error
}

// ErrPullUnsupported is returned by SplitPin when asked for an internal pull
// resistor or edge detection, which a bare LineControl cannot provide.
var ErrPullUnsupported = errors.New("split pin: pull and edge configuration not supported")

// SplitPin turns a LineControl into a GrantPin.  Out latches the level first
// and enables the output driver second, so the pin never drives a stale
// latch value.  In only switches the direction.
type SplitPin struct {
	Line LineControl
}

// In switches the pin to input.  Only gpio.Float (or gpio.PullNoChange) with
// gpio.NoEdge is accepted.
func (p SplitPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if (pull != gpio.Float && pull != gpio.PullNoChange) || edge != gpio.NoEdge {
		return ErrPullUnsupported
	}
	return p.Line.SetDirection(Input)
}

// Out latches l and then enables the output driver.
func (p SplitPin) Out(l gpio.Level) error {
	if err := p.Line.WriteLevel(l); err != nil {
		return err
	}
	return p.Line.SetDirection(Output)
}
