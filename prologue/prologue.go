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

// Package prologue decodes Prologue wireless thermometers.
//
// The sensor sends 36 bits 7 times, pwm modulated, with an extra pulse
// before the first packet. Data is grouped into 9 nibbles:
//
//	[id0] [rid0] [rid1] [data0] [temp0] [temp1] [temp2] [unk0] [unk1]
//
// id0 is always 1001. rid is randomized at power-up. data(3) is 0 for the
// sensor's first reading, data(2) is 1 when the reading was triggered by
// the button, data(1,0)+1 is the channel (1-3). Temperature is 12 bits,
// signed, scaled by 10.
package prologue

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/bemasher/rtlook/parse"
	"github.com/bemasher/rtlook/pwm"
)

// FamilyID is the constant high nibble of the first packet byte, used to
// reject bursts sliced from noise.
const FamilyID = 0x9

func init() {
	parse.Register("prologue", NewParser)
}

func NewPWMConfig(levelLimit int) (cfg pwm.Config) {
	cfg.Protocol = "prologue"
	cfg.ShortLimit = 3500
	cfg.LongLimit = 7000
	cfg.ResetLimit = 15000
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
// message from each completed burst whose family nibble validates.
func (p *Parser) Parse(buf []int16) (msgs []parse.Message) {
	for _, burst := range p.Demod(buf) {
		msg := NewMessage(burst)
		if msg.Family != FamilyID {
			continue
		}
		msgs = append(msgs, msg)
	}

	return
}

// Message is a single Prologue reading.
type Message struct {
	Family       uint8
	RID          uint8
	FirstReading bool
	Button       bool
	Chan         uint8
	Temp         int16 // tenths of a degree Celsius
}

// NewMessage extracts fields from the second row of a burst, the first
// complete packet after the sensor's leading sync pulse.
func NewMessage(burst pwm.Matrix) (msg Message) {
	row := burst.Rows[1]

	msg.Family = row[0] >> 4
	msg.RID = row[0]<<4 | row[1]>>4
	msg.FirstReading = row[1]&0x08 == 0
	msg.Button = row[1]&0x04 != 0
	msg.Chan = row[1]&0x03 + 1

	temp := int16(uint16(row[2])<<8 | uint16(row[3]&0xF0))
	msg.Temp = temp >> 4

	return
}

func (msg Message) MsgType() string {
	return "Prologue"
}

func (msg Message) SensorID() uint8 {
	return msg.RID
}

func (msg Message) Channel() uint8 {
	return msg.Chan
}

func (msg Message) Temperature() int16 {
	return msg.Temp
}

func (msg Message) String() string {
	return fmt.Sprintf("{RID:0x%02X Chan:%d Button:%t First:%t Temp:%s}",
		msg.RID, msg.Chan, msg.Button, msg.FirstReading, parse.FormatTemp(msg.Temp),
	)
}

func (msg Message) Record() (r []string) {
	r = append(r, strconv.FormatUint(uint64(msg.RID), 10))
	r = append(r, strconv.FormatUint(uint64(msg.Chan), 10))
	r = append(r, strconv.FormatBool(msg.Button))
	r = append(r, strconv.FormatBool(msg.FirstReading))
	r = append(r, parse.TempRecord(msg.Temp))

	return
}
