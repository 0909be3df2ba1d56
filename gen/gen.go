// Package gen synthesizes interleaved unsigned IQ byte streams carrying
// OOK/ASK pulse trains, used by the receiver's end-to-end tests.
package gen

import "math"

// Bias is the DC offset of an idle rtl-sdr IQ stream.
const Bias = 0x80

// PulseAmplitude is the I deflection used for carrier-on segments. The
// envelope detector sees amplitude squared, 127^2 = 16129, comfortably
// above the default level limit of 10000 once the low-pass settles.
const PulseAmplitude = 127

// Silence emits n IQ pairs of pure DC bias, envelope zero.
func Silence(pairs int) []byte {
	signal := make([]byte, pairs<<1)
	for idx := range signal {
		signal[idx] = Bias
	}
	return signal
}

// Pulse emits n IQ pairs of full-amplitude carrier.
func Pulse(pairs int) []byte {
	signal := make([]byte, pairs<<1)
	for idx := 0; idx < len(signal); idx += 2 {
		signal[idx] = Bias + PulseAmplitude
		signal[idx+1] = Bias
	}
	return signal
}

// CmplxOscillatorU8 emits a complex oscillator at the given frequency,
// useful for pulses with energy off-center in the passband.
func CmplxOscillatorU8(pairs int, freq, samplerate float64) []uint8 {
	signal := make([]uint8, pairs<<1)

	for idx := 0; idx < pairs<<1; idx += 2 {
		s, c := math.Sincos(2 * math.Pi * float64(idx>>1) * freq / samplerate)
		signal[idx] = uint8(s*127.5 + 127.5)
		signal[idx+1] = uint8(c*127.5 + 127.5)
	}

	return signal
}

// PulseTrain emits an initial pulse followed by one gap-then-pulse pair
// per entry of gaps, all lengths in IQ pairs. Gap lengths carry the data
// in pulse-distance modulation.
func PulseTrain(pulseLen int, gaps []int) []byte {
	var signal []byte

	signal = append(signal, Pulse(pulseLen)...)
	for _, gap := range gaps {
		signal = append(signal, Silence(gap)...)
		signal = append(signal, Pulse(pulseLen)...)
	}

	return signal
}

// Gaps converts a bit string of '0's and '1's to gap lengths. Bits beyond
// the first rowLen are preceded by a row gap, packing them into the next
// row of the slicer's matrix.
func Gaps(bits string, shortGap, longGap, rowGap, rowLen int) (gaps []int) {
	for idx, bit := range bits {
		if idx > 0 && idx%rowLen == 0 {
			gaps = append(gaps, rowGap)
		}
		if bit == '1' {
			gaps = append(gaps, longGap)
		} else {
			gaps = append(gaps, shortGap)
		}
	}

	return
}

// UnpackBits expands packed bytes to a string of '0's and '1's, MSB first.
func UnpackBits(data []byte) string {
	bits := make([]byte, 0, len(data)<<3)

	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			bits = append(bits, '0'+(b>>uint(bit))&1)
		}
	}

	return string(bits)
}
