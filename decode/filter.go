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

package decode

// First-order IIR low-pass smoothing the envelope before slicing.
//
// [b, a] = butter(1, 0.01) quantizes nicely, suitable for fixed point:
//
//	Q1.15 * Q15.0 = Q16.15
//	Q16.15 >> 1 = Q15.14
//	Q15.14 + Q15.14 + Q15.14 could overflow to 17.14 but the b
//	coefficients are small so it won't.
//	Q15.14 >> 14 = Q15.0
//
// Integer-only math keeps output deterministic across platforms.

// FilterOrder is the number of history samples the filter carries across
// blocks. The recurrence below is only valid for order 1.
const FilterOrder = 1

const (
	fScale = 15
	sConst = 1 << fScale
)

func fix(x float64) int { return int(x * sConst) }

var (
	filterA = [FilterOrder + 1]int{fix(1.00000), fix(0.96907)}
	filterB = [FilterOrder + 1]int{fix(0.015466), fix(0.015466)}
)

// LowPass holds the filter's inter-block state: the final input and output
// samples of the previous block, consumed by the first sample of the next.
// The zero value starts from silence.
type LowPass struct {
	xMem [FilterOrder]uint16
	yMem [FilterOrder]int16
}

// Execute filters x into y. Both slices must be the same length. After the
// call the history holds the last FilterOrder input and output samples, so
// pulses spanning block boundaries carry no discontinuity.
func (lp *LowPass) Execute(x []uint16, y []int16) {
	if len(x) == 0 {
		return
	}

	a1, b0, b1 := filterA[1], filterB[0], filterB[1]

	y[0] = int16(((a1*int(lp.yMem[0]))>>1 + (b0*int(x[0]))>>1 + (b1*int(lp.xMem[0]))>>1) >> (fScale - 1))
	for i := 1; i < len(x); i++ {
		y[i] = int16(((a1*int(y[i-1]))>>1 + (b0*int(x[i]))>>1 + (b1*int(x[i-1]))>>1) >> (fScale - 1))
	}

	lp.xMem[0] = x[len(x)-1]
	lp.yMem[0] = y[len(y)-1]
}

// Reset discards carried history, returning the filter to silence.
func (lp *LowPass) Reset() {
	lp.xMem[0] = 0
	lp.yMem[0] = 0
}

// Coefficients returns the quantized filter coefficients, reported when
// replaying capture files.
func Coefficients() (a, b [FilterOrder + 1]int) {
	return filterA, filterB
}
