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

// Package analyze reports pulse timing for threshold calibration. It
// inspects the filtered envelope without touching any protocol state, so
// it substitutes for the demodulators rather than running beside them.
package analyze

import "github.com/sirupsen/logrus"

// Analyzer tracks pulse edges across blocks. The sample counter and the
// average pulse length accumulate over the analyzer's whole lifetime: the
// average is never reset between bursts, and reported sample indices are
// absolute over all processed blocks.
type Analyzer struct {
	LevelLimit int

	counter     int
	pulsesFound int
	pulseStart  int
	pulseEnd    int
	pulseAvg    int

	atStart bool
	atEnd   bool

	log logrus.FieldLogger
}

func NewAnalyzer(levelLimit int, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		LevelLimit: levelLimit,
		atStart:    true,
		log:        log,
	}
}

// Execute scans one block of filtered samples, logging each pulse's start
// index, end index, length, distance from the previous pulse's end, and
// the running average pulse length.
func (a *Analyzer) Execute(buf []int16) {
	for _, s := range buf {
		v := int(s)

		if v > a.LevelLimit && a.atStart {
			a.pulsesFound++
			a.log.Printf("pulse_distance %d", a.counter-a.pulseEnd)
			a.log.Printf("pulse_start[%d] found at sample %d, value = %d", a.pulsesFound, a.counter, v)
			a.pulseStart = a.counter
			a.atStart = false
			a.atEnd = true
		}

		a.counter++

		if v < a.LevelLimit {
			if a.atEnd {
				a.pulseAvg += a.counter - a.pulseStart
				a.log.Printf("pulse_end  [%d] found at sample %d, pulse length = %d, pulse avg length = %d",
					a.pulsesFound, a.counter, a.counter-a.pulseStart, a.pulseAvg/a.pulsesFound)
				a.pulseEnd = a.counter
				a.atEnd = false
			}
			a.atStart = true
		}
	}
}

// PulsesFound returns how many pulses have been seen so far.
func (a *Analyzer) PulsesFound() int {
	return a.pulsesFound
}
