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

// Package rubicson decodes Rubicson wireless thermometers.
//
// The sensor sends 36 bits 12 times, pwm modulated, grouped into 9
// nibbles:
//
//	[id0] [id1] [unk0] [temp0] [temp1] [temp2] [unk1] [unk2] [unk3]
//
// The id changes when the battery is replaced. Temperature is 12 bits,
// signed, scaled by 10.
package rubicson

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/bemasher/rtlook/parse"
	"github.com/bemasher/rtlook/pwm"
)

func init() {
	parse.Register("rubicson", NewParser)
}

func NewPWMConfig(levelLimit int) (cfg pwm.Config) {
	cfg.Protocol = "rubicson"
	cfg.ShortLimit = 1744
	cfg.LongLimit = 3500
	cfg.ResetLimit = 5000
	cfg.LevelLimit = levelLimit

	return
}

type Parser struct {
	pwm.Demodulator
}

func NewParser(levelLimit int, log logrus.FieldLogger) parse.Parser {
	return &Parser{
		pwm.NewDemodulator(NewPWMConfig(levelLimit), log),
	}
}

func (p *Parser) Cfg() *pwm.Config {
	return &p.Demodulator.Cfg
}

func (p *Parser) Log(log logrus.FieldLogger) {
	log.Println("ShortLimit:", p.Cfg().ShortLimit)
	log.Println("LongLimit:", p.Cfg().LongLimit)
	log.Println("ResetLimit:", p.Cfg().ResetLimit)
}

// Parse feeds a block of filtered samples to the slicer and extracts a
// message from each completed burst. The protocol carries no checksum, so
// bursts whose packet row is all zero bits are dropped rather than decoded
// as sensor id 0 reading 0.0C.
func (p *Parser) Parse(buf []int16) (msgs []parse.Message) {
	for _, burst := range p.Demod(buf) {
		if empty(burst.Rows[0]) {
			continue
		}
		msgs = append(msgs, NewMessage(burst))
	}

	return
}

func empty(row [pwm.MatrixCols]byte) bool {
	for _, b := range row {
		if b != 0 {
			return false
		}
	}
	return true
}

// Message is a single Rubicson reading.
type Message struct {
	ID   uint8
	Temp int16 // tenths of a degree Celsius
}

// NewMessage extracts fields from the first row of a burst. Nibbles 3-5
// hold 12 bits of temperature, recovered by arithmetic shift so the sign
// extends.
func NewMessage(burst pwm.Matrix) (msg Message) {
	row := burst.Rows[0]

	msg.ID = row[0]

	temp := int16(uint16(row[1])<<12 | uint16(row[2])<<4)
	msg.Temp = temp >> 4

	return
}

func (msg Message) MsgType() string {
	return "Rubicson"
}

func (msg Message) SensorID() uint8 {
	return msg.ID
}

func (msg Message) Temperature() int16 {
	return msg.Temp
}

func (msg Message) String() string {
	return fmt.Sprintf("{ID:0x%02X Temp:%s}", msg.ID, parse.FormatTemp(msg.Temp))
}

func (msg Message) Record() (r []string) {
	r = append(r, strconv.FormatUint(uint64(msg.ID), 10))
	r = append(r, parse.TempRecord(msg.Temp))

	return
}
