package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		CenterFreq: 433920000,
		SampleRate: 48000,
		BlockSize:  8192,
		LevelLimit: 10000,
	}
}

func TestDecodeLength(t *testing.T) {
	for _, decimation := range []uint{0, 1, 2, 4} {
		cfg := testConfig()
		cfg.Decimation = decimation
		d := NewDecoder(cfg)

		block := make([]byte, cfg.BlockSize)
		filtered := d.Decode(block)

		assert.Equal(t, cfg.BlockSize/2>>decimation, len(filtered))
	}
}

func TestDecodeShortBlock(t *testing.T) {
	d := NewDecoder(testConfig())

	// Budget truncation hands the pipeline a partial block.
	filtered := d.Decode(make([]byte, 2000))

	assert.Equal(t, 1000, len(filtered))
}

// A DC-only block produces a dead-flat envelope, nothing for a slicer to
// chew on.
func TestDecodeDC(t *testing.T) {
	d := NewDecoder(testConfig())

	block := make([]byte, 8192)
	for idx := range block {
		block[idx] = 0x80
	}

	for _, v := range d.Decode(block) {
		require.Zero(t, v)
	}
}

func TestDecodeDeterminism(t *testing.T) {
	block := make([]byte, 8192)
	for idx := range block {
		block[idx] = byte(idx * 31)
	}

	a := NewDecoder(testConfig())
	b := NewDecoder(testConfig())

	first := append([]int16(nil), a.Decode(block)...)
	second := b.Decode(block)

	assert.Equal(t, first, second)
}

func BenchmarkDecode(b *testing.B) {
	cfg := testConfig()
	cfg.BlockSize = 262144
	d := NewDecoder(cfg)

	block := make([]byte, cfg.BlockSize)

	b.SetBytes(int64(cfg.BlockSize))
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		d.Decode(block)
	}
}
