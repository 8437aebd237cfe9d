package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformCloseReleasesGrant(t *testing.T) {
	line := &recordingLine{}
	p := &Platform{Grant: SplitPin{Line: line}}
	p.closers = []func() error{
		func() error { line.ops = append(line.ops, "closer:adc"); return nil },
		func() error { line.ops = append(line.ops, "closer:bus"); return errBusFault },
	}
	a := NewArbiter(p.Grant, &fakeADC{}, 10)
	require.NoError(t, a.AssertGrantLow())
	line.ops = nil

	err := p.Close()
	assert.ErrorIs(t, err, errBusFault)
	assert.Equal(t, []string{"dir:input", "closer:adc", "closer:bus"}, line.ops)
	assert.Equal(t, Input, line.dir)
	assert.False(t, line.drivenHigh())
}

func TestPlatformCloseWithoutGrant(t *testing.T) {
	closed := false
	p := &Platform{closers: []func() error{func() error { closed = true; return nil }}}
	assert.NoError(t, p.Close())
	assert.True(t, closed)
}
