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

import "fmt"

// Envelope computes the squared magnitude of an interleaved unsigned IQ
// byte stream, decimating by 2^decimation with nearest-neighbor selection.
// Samples are re-centered by flipping the 0x80 bias bit. Squared magnitude
// is monotonic in true magnitude, so level thresholding downstream works
// without a square root per sample.
//
// Output must hold len(input)/2>>decimation samples. The envelope of a
// 433MHz OOK pulse is slow relative to 48kHz, so decimation without an
// anti-alias filter is acceptable here.
func Envelope(input []byte, output []uint16, decimation uint) {
	if len(input)&1 == 1 {
		panic(fmt.Sprintf("envelope: odd input length %d", len(input)))
	}

	stride := 1 << decimation

	for idx := range output {
		inIdx := (idx * stride) << 1
		i := int(int8(input[inIdx] ^ 0x80))
		q := int(int8(input[inIdx+1] ^ 0x80))
		output[idx] = uint16(i*i + q*q)
	}
}

// EnvelopeLen returns the number of envelope samples produced from
// inputLen bytes of IQ data at the given decimation.
func EnvelopeLen(inputLen int, decimation uint) int {
	return inputLen / 2 >> decimation
}
