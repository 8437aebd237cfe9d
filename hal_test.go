//go:build !linux || !arm || disablegpio

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func TestSimPlatform(t *testing.T) {
	t.Setenv("NODEHAL_SIM_DEMAND", "1")
	cfg := defaultConfig()
	p, err := openPlatform(cfg)
	require.NoError(t, err)
	defer p.Close()
	n := newNode(p, cfg)

	demand, err := n.arbiter.SampleDemand()
	require.NoError(t, err)
	assert.True(t, demand)

	s, err := n.sensor.ReadAcceleration()
	require.NoError(t, err)
	assert.Equal(t, AccelerationSample{}, s, "asleep until woken")

	require.NoError(t, n.sensor.Wake())
	s, err = n.sensor.ReadAcceleration()
	require.NoError(t, err)
	assert.Equal(t, AccelerationSample{X: 120, Y: -80, Z: 16384}, s)

	require.NoError(t, n.arbiter.AssertGrantLow())
	line := p.Grant.(SplitPin).Line.(*simLine)
	assert.Equal(t, Output, line.dir)
	assert.Equal(t, gpio.Low, line.latch)
	require.NoError(t, n.arbiter.ReleaseGrant())
	assert.Equal(t, Input, line.dir)
}

func TestSimPlatformWrongAddress(t *testing.T) {
	cfg := defaultConfig()
	p, err := openPlatform(cfg)
	require.NoError(t, err)
	_, err = NewAccelSensor(p.Bus, 0x69).ReadAcceleration()
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestSampleCommand(t *testing.T) {
	t.Setenv("NODEHAL_SIM_DEMAND", "")
	cfgPath := filepath.Join(t.TempDir(), "nodehal.json")
	out, err := execute(t, "sample", "--config", cfgPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "demand=false "), out)
	assert.True(t, strings.HasSuffix(out, "orientation=l\n"), out)
}

