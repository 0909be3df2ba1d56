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

package pwm

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	MatrixRows = 12
	MatrixCols = 5
)

// Matrix is the packed bit table exchanged between the slicer and the
// protocol parsers. Each row holds one repeat of a packet, bits packed
// MSB-first within each byte. Writes past the last row or column clamp to
// the edge and log a diagnostic, they never touch adjacent memory.
type Matrix struct {
	Rows [MatrixRows][MatrixCols]byte

	row    int
	col    int
	bitPos int

	log logrus.FieldLogger
}

func NewMatrix(log logrus.FieldLogger) (m Matrix) {
	m.log = log
	m.Reset()
	return
}

// Reset zeroes the table and returns all cursors to the origin.
func (m *Matrix) Reset() {
	for row := range m.Rows {
		for col := range m.Rows[row] {
			m.Rows[row][col] = 0
		}
	}
	m.row = 0
	m.col = 0
	m.bitPos = 7
}

// AddBit appends a bit to the current row.
func (m *Matrix) AddBit(bit byte) {
	m.Rows[m.row][m.col] |= bit << uint(m.bitPos)
	m.bitPos--
	if m.bitPos < 0 {
		m.bitPos = 7
		m.col++
		if m.col > MatrixCols-1 {
			m.col = MatrixCols - 1
			m.log.Warnf("bit matrix column overflow in row %d", m.row)
		}
	}
}

// NextRow begins a new packet repeat on the next row.
func (m *Matrix) NextRow() {
	m.col = 0
	m.bitPos = 7
	m.row++
	if m.row > MatrixRows-1 {
		m.row = MatrixRows - 1
		m.log.Warn("bit matrix row overflow")
	}
}

// Dumps the table as a bit grid, one row per line.
func (m Matrix) String() string {
	var grid strings.Builder
	for _, row := range m.Rows {
		for _, b := range row {
			for bit := 7; bit >= 0; bit-- {
				if b&(1<<uint(bit)) != 0 {
					grid.WriteString("1 ")
				} else {
					grid.WriteString("0 ")
				}
			}
			grid.WriteByte(' ')
		}
		grid.WriteByte('\n')
	}
	return grid.String()
}
