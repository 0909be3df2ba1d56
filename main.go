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

package main

import (
	"encoding/binary"
	"flag"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bemasher/rtltcp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bemasher/rtlook/analyze"
	"github.com/bemasher/rtlook/decode"
	"github.com/bemasher/rtlook/parse"

	_ "github.com/bemasher/rtlook/prologue"
	_ "github.com/bemasher/rtlook/rubicson"
)

// Size of each read in file-source mode.
const fileBlockSize = 131072

var log = logrus.New()

var rcvr Receiver

type Receiver struct {
	rtltcp.SDR

	d        decode.Decoder
	parsers  []parse.Parser
	analyzer *analyze.Analyzer
	fc       parse.FilterChain

	src        io.ReadCloser
	cancelOnce sync.Once

	exit   atomic.Bool
	budget int64

	stop chan struct{}
}

func (rcvr *Receiver) NewReceiver() {
	cfg := decode.Config{
		CenterFreq: uint32(centerFreq),
		SampleRate: int(sampleRate),
		BlockSize:  int(blockSize),
		Decimation: *decimation,
		LevelLimit: int(levelLimit),
	}
	if *readFilename != "" && cfg.BlockSize < fileBlockSize {
		cfg.BlockSize = fileBlockSize
	}
	rcvr.d = decode.NewDecoder(cfg)
	rcvr.analyzer = analyze.NewAnalyzer(cfg.LevelLimit, log)
	rcvr.budget = int64(sampleNum) * 2
	rcvr.stop = make(chan struct{}, 1)

	// Both demodulators run over every stream, each with independent state.
	for _, name := range []string{"prologue", "rubicson"} {
		p, err := parse.NewParser(name, cfg.LevelLimit, log)
		if err != nil {
			log.Fatal(err)
		}
		rcvr.parsers = append(rcvr.parsers, p)
	}

	if *unique {
		rcvr.fc.Add(NewUniqueFilter())
	}
	if len(sensorID.UintMap) > 0 {
		rcvr.fc.Add(sensorID)
	}

	if *readFilename != "" {
		file, err := os.Open(*readFilename)
		if err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "opening sample file"))
		}
		log.Println("reading samples from file:", *readFilename)
		rcvr.src = file
	} else {
		// Connect to rtl_tcp server and tune. Device selection beyond the
		// index happens server-side.
		log.Println("using device:", *deviceIndex)

		if err := rcvr.Connect(nil); err != nil {
			log.Fatal(err)
		}
		rcvr.src = rcvr.SDR.TCPConn

		if err := rcvr.SetSampleRate(uint32(cfg.SampleRate)); err != nil {
			log.Warn("failed to set sample rate: ", err)
		}
		if err := rcvr.SetCenterFreq(cfg.CenterFreq); err != nil {
			log.Warn("failed to set center freq: ", err)
		}
		if *gain == 0 {
			if err := rcvr.SetGainMode(true); err != nil {
				log.Warn("failed to enable automatic gain: ", err)
			}
		} else {
			if err := rcvr.SetGainMode(false); err != nil {
				log.Warn("failed to enable manual gain: ", err)
			}
			if err := rcvr.SetGain(uint32(*gain * 10)); err != nil {
				log.Warn("failed to set tuner gain: ", err)
			}
		}
	}

	rcvr.d.Cfg.Log(log)
	for _, p := range rcvr.parsers {
		log.Println("protocol:", p.Cfg().Protocol)
		p.Log(log)
	}
}

// Cancel makes any blocked read return promptly. Safe to call from a
// signal context and idempotent.
func (rcvr *Receiver) Cancel() {
	rcvr.cancelOnce.Do(func() {
		rcvr.exit.Store(true)
		if rcvr.src != nil {
			rcvr.src.Close()
		}
	})
}

func (rcvr *Receiver) Close() {
	select {
	case rcvr.stop <- struct{}{}:
	default:
	}
	rcvr.Cancel()
	if outFile != nil && outFile != os.Stdout {
		outFile.Close()
	}
}

// processBlock runs the whole pipeline over one block of IQ bytes.
// Returns true when the receive loop should stop.
func (rcvr *Receiver) processBlock(block []byte) bool {
	if rcvr.exit.Load() {
		return true
	}

	if rcvr.budget > 0 && rcvr.budget < int64(len(block)) {
		block = block[:rcvr.budget]
		rcvr.Cancel()
	}

	filtered := rcvr.d.Decode(block)

	if *analyzeMode {
		rcvr.analyzer.Execute(filtered)
	} else {
		for _, p := range rcvr.parsers {
			for _, msg := range p.Parse(filtered) {
				if !rcvr.fc.Match(msg) {
					continue
				}

				logMsg := parse.LogMessage{Time: time.Now(), Type: msg.MsgType(), Message: msg}
				if err := encoder.Encode(logMsg); err != nil {
					log.Fatal("error encoding message: ", err)
				}
			}
		}
	}

	if outFile != nil {
		// A short write here means samples lost, there is no recovering
		// the stream.
		if err := binary.Write(outFile, binary.LittleEndian, filtered); err != nil {
			log.Errorf("%+v", errors.Wrap(err, "short write, samples lost"))
			rcvr.Cancel()
			return true
		}
	}

	if rcvr.budget > 0 {
		rcvr.budget -= int64(len(block))
		if rcvr.budget <= 0 {
			rcvr.Cancel()
			return true
		}
	}

	return rcvr.exit.Load()
}

func (rcvr *Receiver) Run() {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)

	go func() {
		<-sigint
		log.Println("signal caught, exiting")
		rcvr.Cancel()
	}()

	if *readFilename != "" {
		rcvr.runFile()
		return
	}

	if *syncMode {
		rcvr.runSync()
		return
	}

	rcvr.runAsync()
}

// runAsync reads blocks on a separate goroutine, exchanging a pair of
// buffers with the processing loop so a read is always in flight.
func (rcvr *Receiver) runAsync() {
	blockCh := make(chan []byte)

	go func() {
		blockA := make([]byte, rcvr.d.Cfg.BlockSize)
		blockB := make([]byte, rcvr.d.Cfg.BlockSize)

		defer close(blockCh)

		for {
			select {
			case <-rcvr.stop:
				return
			default:
				_, err := io.ReadFull(rcvr.src, blockA)
				if err != nil {
					if !rcvr.exit.Load() {
						log.Warn("read failed: ", err)
					}
					return
				}

				blockCh <- blockA
				blockA, blockB = blockB, blockA
			}
		}
	}()

	for block := range blockCh {
		if rcvr.processBlock(block) {
			return
		}
	}
}

func (rcvr *Receiver) runSync() {
	block := make([]byte, rcvr.d.Cfg.BlockSize)

	for !rcvr.exit.Load() {
		_, err := io.ReadFull(rcvr.src, block)
		if err != nil {
			if !rcvr.exit.Load() {
				log.Warn("sync read failed: ", err)
			}
			return
		}

		if rcvr.processBlock(block) {
			return
		}
	}
}

// runFile feeds fixed-size blocks from a raw IQ capture through the same
// pipeline, reporting block count and filter coefficients on EOF.
func (rcvr *Receiver) runFile() {
	block := make([]byte, fileBlockSize)

	blocks := 0
	for {
		_, err := io.ReadFull(rcvr.src, block)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			log.Warn("file read failed: ", err)
			break
		}

		blocks++
		if rcvr.processBlock(block) {
			break
		}
	}

	a, b := decode.Coefficients()
	log.Println("sample file issued", blocks, "blocks")
	log.Println("filter coeffs a:", a[0], a[1])
	log.Println("filter coeffs b:", b[0], b[1])
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: parse.TimeFormat,
	})
}

func main() {
	flag.StringVar(&rcvr.Flags.ServerAddr, "server", "127.0.0.1:1234", "address or hostname of rtl_tcp instance")

	RegisterFlags()
	EnvOverride()
	flag.Parse()
	HandleFlags()

	rcvr.NewReceiver()
	defer rcvr.Close()

	rcvr.Run()
}
