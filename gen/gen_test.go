package gen

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bemasher/rtlook/decode"
	"github.com/bemasher/rtlook/parse"
	"github.com/bemasher/rtlook/prologue"
	"github.com/bemasher/rtlook/rubicson"
)

func TestUnpackBits(t *testing.T) {
	assert.Equal(t, "1001101000001101", UnpackBits([]byte{0x9A, 0x0D}))
}

func TestGaps(t *testing.T) {
	gaps := Gaps("101", 10, 20, 99, 36)
	assert.Equal(t, []int{20, 10, 20}, gaps)

	gaps = Gaps("1111", 10, 20, 99, 2)
	assert.Equal(t, []int{20, 20, 99, 20, 20}, gaps)
}

func TestSilenceIsDC(t *testing.T) {
	for _, b := range Silence(16) {
		assert.Equal(t, byte(Bias), b)
	}
}

// Pulse trains synthesized here must survive the whole pipeline:
// envelope, low-pass, slicer and parser.

func rubicsonSignal(packet []byte) []byte {
	// Gaps of 1000 and 2500 land well inside the 1744/3500 limits even
	// with the filter's settling lag on both edges.
	gaps := Gaps(UnpackBits(packet), 1000, 2500, 4000, 36)
	return append(PulseTrain(600, gaps), Silence(6000)...)
}

func prologueSignal(packet []byte) []byte {
	// Two repeats of the packet, the parser reads the second row.
	bits := UnpackBits(packet)
	gaps := Gaps(bits+bits, 2500, 5000, 8000, len(bits))
	return append(PulseTrain(600, gaps), Silence(16000)...)
}

func newDecoder(blockSize int) decode.Decoder {
	return decode.NewDecoder(decode.Config{
		CenterFreq: 433920000,
		SampleRate: 48000,
		BlockSize:  blockSize,
		LevelLimit: 10000,
	})
}

func TestRubicsonPositiveTemp(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := rubicsonSignal([]byte{0x12, 0x80, 0xEA})
	d := newDecoder(len(signal))
	p, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)

	msgs := p.Parse(d.Decode(signal))

	require.Len(t, msgs, 1)
	msg := msgs[0].(rubicson.Message)
	assert.Equal(t, uint8(0x12), msg.ID)
	assert.Equal(t, int16(234), msg.Temp)
	assert.Equal(t, "23.4", parse.FormatTemp(msg.Temp))
}

func TestRubicsonNegativeTemp(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := rubicsonSignal([]byte{0x34, 0x8F, 0x9C})
	d := newDecoder(len(signal))
	p, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)

	msgs := p.Parse(d.Decode(signal))

	require.Len(t, msgs, 1)
	assert.Equal(t, int16(-100), msgs[0].Temperature())
	assert.Equal(t, "-10.0", parse.FormatTemp(msgs[0].Temperature()))
}

func TestPrologueDecode(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := prologueSignal([]byte{0x9A, 0xB5, 0x0D, 0x70})
	d := newDecoder(len(signal))
	p, err := parse.NewParser("prologue", 10000, logger)
	require.NoError(t, err)

	msgs := p.Parse(d.Decode(signal))

	require.Len(t, msgs, 1)
	msg := msgs[0].(prologue.Message)
	assert.Equal(t, uint8(0xAB), msg.RID)
	assert.Equal(t, uint8(2), msg.Chan)
	assert.True(t, msg.Button)
	assert.True(t, msg.FirstReading)
	assert.Equal(t, int16(215), msg.Temp)
	assert.Equal(t, "21.5", parse.FormatTemp(msg.Temp))
}

// Running both demodulators over one stream decodes the same messages as
// running each alone, their state is fully independent.
func TestDemodulatorIsolation(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := rubicsonSignal([]byte{0x12, 0x80, 0xEA})

	alone := newDecoder(len(signal))
	p, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)
	want := p.Parse(alone.Decode(signal))

	shared := newDecoder(len(signal))
	r, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)
	q, err := parse.NewParser("prologue", 10000, logger)
	require.NoError(t, err)

	filtered := shared.Decode(signal)
	_ = q.Parse(filtered)
	got := r.Parse(filtered)

	assert.Equal(t, want, got)
}

// The same IQ stream decodes identically every time.
func TestDeterminism(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := prologueSignal([]byte{0x9A, 0xB5, 0x0D, 0x70})

	var runs [][]parse.Message
	for i := 0; i < 2; i++ {
		d := newDecoder(len(signal))
		p, err := parse.NewParser("prologue", 10000, logger)
		require.NoError(t, err)
		runs = append(runs, p.Parse(d.Decode(signal)))
	}

	assert.Equal(t, runs[0], runs[1])
}

// Arbitrary block boundaries must not change the decode, filter history
// and slicer state carry across them.
func TestBlockBoundaries(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := rubicsonSignal([]byte{0x77, 0x85, 0x23})

	whole := newDecoder(len(signal))
	p, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)
	want := p.Parse(whole.Decode(signal))
	require.Len(t, want, 1)

	const chunk = 4096
	split := newDecoder(chunk)
	q, err := parse.NewParser("rubicson", 10000, logger)
	require.NoError(t, err)

	var got []parse.Message
	for offset := 0; offset < len(signal); offset += chunk {
		end := offset + chunk
		if end > len(signal) {
			end = len(signal)
		}
		got = append(got, q.Parse(split.Decode(signal[offset:end]))...)
	}

	assert.Equal(t, want, got)
}

func TestSilentStreamDecodesNothing(t *testing.T) {
	logger, _ := test.NewNullLogger()

	signal := Silence(48000)
	d := newDecoder(len(signal))

	for _, name := range []string{"rubicson", "prologue"} {
		p, err := parse.NewParser(name, 10000, logger)
		require.NoError(t, err)
		assert.Empty(t, p.Parse(d.Decode(signal)))
	}
}
