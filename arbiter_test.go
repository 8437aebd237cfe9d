package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

func TestSampleDemandUpperByte(t *testing.T) {
	adc := &fakeADC{}
	a := NewArbiter(SplitPin{Line: &recordingLine{}}, adc, 10)
	for raw := int32(0); raw <= 0xFFFF; raw++ {
		adc.raw = raw
		got, err := a.SampleDemand()
		require.NoError(t, err)
		if want := raw>>8 == 0; got != want {
			t.Fatalf("SampleDemand() with raw %#x = %t, want %t", raw, got, want)
		}
	}
}

func TestSampleDemandResolution(t *testing.T) {
	tests := []struct {
		bits int
		raw  int32
		want bool
	}{
		{12, 1023, true},
		{12, 1024, false},
		{15, 8191, true},
		{15, 8192, false},
		{8, 63, true},
		{8, 64, false},
		{10, -5, true},
	}
	for _, tc := range tests {
		a := NewArbiter(SplitPin{Line: &recordingLine{}}, &fakeADC{raw: tc.raw}, tc.bits)
		got, err := a.SampleDemand()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "bits=%d raw=%d", tc.bits, tc.raw)
	}
}

func TestSampleDemandError(t *testing.T) {
	a := NewArbiter(SplitPin{Line: &recordingLine{}}, &fakeADC{err: errBusFault}, 10)
	demand, err := a.SampleDemand()
	assert.False(t, demand)
	assert.True(t, errors.Is(err, errBusFault))
}

func TestAssertGrantLowLatchesBeforeOutput(t *testing.T) {
	line := &recordingLine{latch: gpio.High}
	a := NewArbiter(SplitPin{Line: line}, &fakeADC{}, 10)

	require.NoError(t, a.AssertGrantLow())
	assert.Equal(t, []string{"level:low", "dir:output"}, line.ops)
	assert.True(t, a.Granted())
	assert.False(t, line.drivenHigh())
}

func TestReleaseGrantOnlyChangesDirection(t *testing.T) {
	line := &recordingLine{}
	a := NewArbiter(SplitPin{Line: line}, &fakeADC{}, 10)
	require.NoError(t, a.AssertGrantLow())
	line.ops = nil

	require.NoError(t, a.ReleaseGrant())
	assert.Equal(t, []string{"dir:input"}, line.ops)
	assert.False(t, a.Granted())
}

func TestGrantNeverDrivenHigh(t *testing.T) {
	line := &recordingLine{latch: gpio.High}
	a := NewArbiter(SplitPin{Line: line}, &fakeADC{}, 10)
	steps := []func() error{a.ReleaseGrant, a.AssertGrantLow, a.AssertGrantLow, a.ReleaseGrant, a.AssertGrantLow, a.ReleaseGrant}
	for i, step := range steps {
		require.NoError(t, step())
		assert.False(t, line.drivenHigh(), "step %d", i)
	}
	assert.NotContains(t, line.ops, "level:high")
}

func TestArbiterWithPeriphPin(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17", Num: 17, L: gpio.High}
	a := NewArbiter(pin, &fakeADC{}, 10)

	require.NoError(t, a.AssertGrantLow())
	assert.Equal(t, gpio.Low, pin.L)

	require.NoError(t, a.ReleaseGrant())
	assert.Equal(t, gpio.Float, pin.P)
	assert.False(t, a.Granted())
}

type failingLine struct{ recordingLine }

func (l *failingLine) WriteLevel(v gpio.Level) error { return errBusFault }

func TestAssertGrantLowFailureKeepsState(t *testing.T) {
	line := &failingLine{}
	a := NewArbiter(SplitPin{Line: line}, &fakeADC{}, 10)
	err := a.AssertGrantLow()
	assert.True(t, errors.Is(err, errBusFault))
	assert.False(t, a.Granted())
	// The output driver must not be enabled when the latch write failed.
	assert.Empty(t, line.ops)
}

func TestSplitPinRejectsPulls(t *testing.T) {
	p := SplitPin{Line: &recordingLine{}}
	assert.ErrorIs(t, p.In(gpio.PullUp, gpio.NoEdge), ErrPullUnsupported)
	assert.ErrorIs(t, p.In(gpio.Float, gpio.RisingEdge), ErrPullUnsupported)
	assert.NoError(t, p.In(gpio.PullNoChange, gpio.NoEdge))
}

type voltADC struct{ v physic.ElectricPotential }

func (a voltADC) Read() (analog.Sample, error) { return analog.Sample{V: a.v, Raw: 12345}, nil }

func TestVoltageSampler(t *testing.T) {
	tests := []struct {
		v    physic.ElectricPotential
		want bool
	}{
		{0, true},
		{1200 * physic.MilliVolt, true},
		{1300 * physic.MilliVolt, false},
		{5 * physic.Volt, false},
	}
	for _, tc := range tests {
		s := voltageSampler{pin: voltADC{tc.v}, fullScale: 5 * physic.Volt, bits: 10}
		a := NewArbiter(SplitPin{Line: &recordingLine{}}, s, 10)
		got, err := a.SampleDemand()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s", tc.v)
	}
}
