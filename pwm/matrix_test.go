package pwm

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMatrixPacking(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewMatrix(logger)

	// 1 0 1 0 0 0 0 0 packs MSB-first.
	for _, bit := range []byte{1, 0, 1} {
		m.AddBit(bit)
	}

	assert.Equal(t, byte(0xA0), m.Rows[0][0])
	assert.Equal(t, 0, m.row)
	assert.Equal(t, 0, m.col)
	assert.Equal(t, 4, m.bitPos)
}

func TestMatrixRowAdvance(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewMatrix(logger)

	m.AddBit(1)
	m.NextRow()
	m.AddBit(1)

	assert.Equal(t, byte(0x80), m.Rows[0][0])
	assert.Equal(t, byte(0x80), m.Rows[1][0])
	assert.Equal(t, 1, m.row)
}

func TestMatrixReset(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewMatrix(logger)

	for i := 0; i < 100; i++ {
		m.AddBit(1)
	}
	m.NextRow()
	m.Reset()

	assert.Equal(t, 0, m.row)
	assert.Equal(t, 0, m.col)
	assert.Equal(t, 7, m.bitPos)
	for _, row := range m.Rows {
		for _, b := range row {
			assert.Zero(t, b)
		}
	}
}

func TestMatrixColumnClamp(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewMatrix(logger)

	// One row holds 40 bits, the 41st must clamp with a diagnostic.
	for i := 0; i < 48; i++ {
		m.AddBit(1)
	}

	assert.Equal(t, MatrixCols-1, m.col)
	assert.Equal(t, 0, m.row)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestMatrixRowClamp(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewMatrix(logger)

	for i := 0; i < MatrixRows+3; i++ {
		m.NextRow()
	}

	assert.Equal(t, MatrixRows-1, m.row)
	assert.NotEmpty(t, hook.AllEntries())
}

// Cursors stay in bounds for any operation sequence.
func TestMatrixCursorInvariant(t *testing.T) {
	logger, _ := test.NewNullLogger()

	rapid.Check(t, func(t *rapid.T) {
		m := NewMatrix(logger)
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 2048).Draw(t, "ops")

		for _, op := range ops {
			switch op {
			case 0:
				m.AddBit(0)
			case 1:
				m.AddBit(1)
			case 2:
				m.NextRow()
			}

			if m.row < 0 || m.row >= MatrixRows {
				t.Fatalf("row cursor out of bounds: %d", m.row)
			}
			if m.col < 0 || m.col >= MatrixCols {
				t.Fatalf("column cursor out of bounds: %d", m.col)
			}
			if m.bitPos < 0 || m.bitPos > 7 {
				t.Fatalf("bit cursor out of bounds: %d", m.bitPos)
			}
		}
	})
}
