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

// Package decode turns raw IQ sample blocks into a smoothed envelope ready
// for pulse slicing: squared-magnitude detection with decimation followed
// by a fixed-point first-order low-pass.
package decode

import "github.com/sirupsen/logrus"

// Config specifies the radio and front-end configuration shared by all
// protocols on the stream.
type Config struct {
	CenterFreq uint32
	SampleRate int

	// BlockSize is the maximum read size in bytes of interleaved IQ.
	BlockSize int

	// Decimation keeps one of every 2^Decimation IQ pairs.
	Decimation uint

	// LevelLimit is the envelope threshold between pulse and gap, handed
	// to each slicer.
	LevelLimit int
}

func (cfg Config) Log(log logrus.FieldLogger) {
	log.Println("CenterFreq:", cfg.CenterFreq)
	log.Println("SampleRate:", cfg.SampleRate)
	log.Println("BlockSize:", cfg.BlockSize)
	log.Println("Decimation:", cfg.Decimation, cfg.SampleRate, "->", cfg.SampleRate>>cfg.Decimation)
	log.Println("LevelLimit:", cfg.LevelLimit)
}

// Decoder owns the envelope and filtered buffers for a sample stream. Both
// are allocated once and reused for every block.
type Decoder struct {
	Cfg Config

	envelope []uint16
	filtered []int16
	lp       LowPass
}

func NewDecoder(cfg Config) (d Decoder) {
	d.Cfg = cfg

	n := EnvelopeLen(cfg.BlockSize, cfg.Decimation)
	d.envelope = make([]uint16, n)
	d.filtered = make([]int16, n)

	return
}

// Decode runs envelope detection and low-pass filtering over one block of
// interleaved IQ bytes. Blocks may arrive at arbitrary boundaries, filter
// history carries pulse edges across them. The returned slice is valid
// until the next call.
func (d *Decoder) Decode(block []byte) []int16 {
	n := EnvelopeLen(len(block), d.Cfg.Decimation)

	env := d.envelope[:n]
	Envelope(block, env, d.Cfg.Decimation)

	out := d.filtered[:n]
	d.lp.Execute(env, out)

	return out
}
