package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDC(t *testing.T) {
	input := make([]byte, 64)
	for idx := range input {
		input[idx] = 0x80
	}

	output := make([]uint16, EnvelopeLen(len(input), 0))
	Envelope(input, output, 0)

	for _, v := range output {
		assert.Zero(t, v)
	}
}

func TestEnvelopeMagnitude(t *testing.T) {
	for _, tc := range []struct {
		i, q byte
		want uint16
	}{
		{0x80, 0x80, 0},
		{0xFF, 0x80, 127 * 127},
		{0x80, 0xFF, 127 * 127},
		{0x00, 0x80, 128 * 128},
		{0x00, 0x00, 2 * 128 * 128},
		{0x81, 0x7F, 2},
	} {
		output := make([]uint16, 1)
		Envelope([]byte{tc.i, tc.q}, output, 0)
		assert.Equal(t, tc.want, output[0])
	}
}

func TestEnvelopeDecimation(t *testing.T) {
	// Pairs alternate strong/weak, decimation keeps the first of each
	// stride.
	input := []byte{0xFF, 0x80, 0x80, 0x80, 0xFF, 0x80, 0x80, 0x80}

	require.Equal(t, 2, EnvelopeLen(len(input), 1))
	output := make([]uint16, 2)
	Envelope(input, output, 1)

	assert.Equal(t, uint16(127*127), output[0])
	assert.Equal(t, uint16(127*127), output[1])
}

func TestEnvelopeOddLengthPanics(t *testing.T) {
	require.Panics(t, func() {
		Envelope(make([]byte, 3), make([]uint16, 1), 0)
	})
}

func BenchmarkEnvelope(b *testing.B) {
	input := make([]byte, 262144)
	output := make([]uint16, EnvelopeLen(len(input), 0))

	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		Envelope(input, output, 0)
	}
}
