// RTLOOK - An rtl-sdr receiver for 433.92MHz OOK/ASK wireless sensors.
// Copyright (C) 2015 Douglas Hall
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package pwm slices a filtered envelope into bits by pulse-distance
// modulation. Bits are distinguished by the length of the gap between
// fixed-width pulses, measured in samples against per-protocol limits.
package pwm

import "github.com/sirupsen/logrus"

// Config holds a protocol's slicer thresholds, all in filtered-sample
// counts. Invariant: ShortLimit < LongLimit < ResetLimit.
type Config struct {
	Protocol string

	// A gap's count includes the rising-edge sample that closes it, so a
	// below-level run of n samples counts as n+1. Counts below ShortLimit
	// decode as 0, below LongLimit as 1. Larger counts separate packet
	// repeats within a burst.
	ShortLimit int
	LongLimit  int

	// A quiescent interval longer than ResetLimit ends the burst.
	ResetLimit int

	// Envelope magnitude threshold between pulse and gap.
	LevelLimit int
}

// Demodulator runs one protocol's slicer state machine. Several
// demodulators may consume the same sample stream, each keeps independent
// counters and an independent bit matrix.
type Demodulator struct {
	Cfg Config

	pulseActive bool
	inGap       bool
	counting    bool
	sampleCtr   int

	m   Matrix
	log logrus.FieldLogger
}

func NewDemodulator(cfg Config, log logrus.FieldLogger) (d Demodulator) {
	d.Cfg = cfg
	d.m = NewMatrix(log)
	d.log = log
	return
}

// Demod runs the slicer over one block of filtered samples, updating the
// bit matrix in place. Each burst terminated by a reset-length gap within
// the block is returned as a snapshot of the matrix, which is then zeroed
// for the next burst.
func (d *Demodulator) Demod(buf []int16) (bursts []Matrix) {
	for _, s := range buf {
		sample := int(s)

		if sample > d.Cfg.LevelLimit {
			d.pulseActive = true
			d.counting = true
		}

		if d.pulseActive && sample < d.Cfg.LevelLimit {
			d.inGap = true
			d.sampleCtr = 0
			d.pulseActive = false
		}

		if d.counting {
			d.sampleCtr++
		}

		// Rising edge closes the gap, its length decides the bit.
		if d.inGap && sample > d.Cfg.LevelLimit {
			switch {
			case d.sampleCtr < d.Cfg.ShortLimit:
				d.m.AddBit(0)
			case d.sampleCtr < d.Cfg.LongLimit:
				d.m.AddBit(1)
			default:
				d.m.NextRow()
				d.pulseActive = false
				d.sampleCtr = 0
			}
			d.inGap = false
		}

		if d.sampleCtr > d.Cfg.ResetLimit {
			d.counting = false
			d.sampleCtr = 0
			d.inGap = false

			d.log.WithField("protocol", d.Cfg.Protocol).Debug("burst:\n", d.m)
			snapshot := d.m
			bursts = append(bursts, snapshot)
			d.m.Reset()
		}
	}

	return
}
