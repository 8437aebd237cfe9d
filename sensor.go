package main

import (
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// demandCodeBits is the resolution the demand threshold is defined against.
// The peer's logic threshold (1.25V on a 5V reference) is a quarter of full
// scale, which at 10 bits is exactly "the upper byte is zero".
const demandCodeBits = 10

// levelCode rescales a raw ADC reading of the given resolution to a 10-bit
// code.  Negative readings (differential ADCs below ground) clamp to zero.
func levelCode(raw int32, bits int) uint16 {
	if raw < 0 {
		raw = 0
	}
	switch {
	case bits > demandCodeBits:
		raw >>= uint(bits - demandCodeBits)
	case bits < demandCodeBits:
		raw <<= uint(demandCodeBits - bits)
	}
	if raw > 1<<demandCodeBits-1 {
		raw = 1<<demandCodeBits - 1
	}
	return uint16(raw)
}

// demandAsserted interprets a demand line sample.  The line is active low:
// a level below the threshold is a logic 0, meaning the peer is asking for
// service.
func demandAsserted(s analog.Sample, bits int) bool {
	return levelCode(s.Raw, bits)>>8 == 0
}

// voltageSampler re-derives Raw from the measured voltage, as a reading of
// the given resolution against fullScale.  It lets ADCs with a programmable
// gain (whose Raw is relative to the gain range) feed the same threshold.
type voltageSampler struct {
	pin       DemandSampler
	fullScale physic.ElectricPotential
	bits      int
}

func (v voltageSampler) Read() (analog.Sample, error) {
	s, err := v.pin.Read()
	if err != nil {
		return s, err
	}
	s.Raw = int32(int64(s.V) * int64(1<<v.bits-1) / int64(v.fullScale))
	return s, nil
}
