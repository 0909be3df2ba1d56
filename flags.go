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
	"encoding/json"
	"encoding/xml"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/bemasher/rtltcp/si"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bemasher/rtlook/csv"
	"github.com/bemasher/rtlook/parse"
)

const (
	defaultFrequency  = 433920000
	defaultSampleRate = 48000
	defaultBlockSize  = 262144
	defaultLevelLimit = 10000

	minBlockSize = 512
	maxBlockSize = 4194304
)

var (
	deviceIndex = flag.Uint("d", 0, "device index, informational with rtl_tcp")

	centerFreq = si.ScientificNotation(defaultFrequency)
	sampleRate = si.ScientificNotation(defaultSampleRate)
	blockSize  = si.ScientificNotation(defaultBlockSize)
	levelLimit = si.ScientificNotation(defaultLevelLimit)
	sampleNum  = si.ScientificNotation(0)

	gain = flag.Float64("g", 0, "tuner gain in dB, 0 for auto")

	decimation = flag.Uint("c", 0, "decimation exponent, keep one of every 2^N sample pairs")

	analyzeMode = flag.Bool("a", false, "analysis mode, report pulse timing instead of decoding")

	readFilename = flag.String("r", "", "read IQ samples from file instead of a receiver")

	syncMode = flag.Bool("S", false, "synchronous read mode")

	format     = flag.String("format", "plain", "decoded message output format: plain, csv, json or xml")
	configPath = flag.String("config", "", "yaml file supplying defaults for unset flags")

	unique = flag.Bool("unique", false, "suppress duplicate messages from each sensor")

	sensorID SensorIDFilter

	encoder Encoder

	outFilename string
	outFile     *os.File
)

func RegisterFlags() {
	flag.Var(&centerFreq, "f", "center frequency to receive on")
	flag.Lookup("f").DefValue = "433.92M"
	flag.Var(&sampleRate, "s", "sample rate")
	flag.Lookup("s").DefValue = "48k"
	flag.Var(&blockSize, "b", "sample block size in bytes")
	flag.Lookup("b").DefValue = strconv.Itoa(defaultBlockSize)
	flag.Var(&levelLimit, "l", "level limit distinguishing pulse from gap")
	flag.Lookup("l").DefValue = strconv.Itoa(defaultLevelLimit)
	flag.Var(&sampleNum, "n", "number of sample pairs to read, 0 for unlimited")
	flag.Lookup("n").DefValue = "0"

	sensorID = SensorIDFilter{make(UintMap)}
	flag.Var(sensorID, "filterid", "display only messages matching an id in a comma-separated list of ids")
}

// EnvOverride applies RTLOOK_<FLAGNAME> environment variables before flag
// parsing, so explicit arguments win.
func EnvOverride() {
	flag.VisitAll(func(f *flag.Flag) {
		envName := "RTLOOK_" + strings.ToUpper(f.Name)
		flagValue := os.Getenv(envName)
		if flagValue == "" {
			return
		}
		if err := flag.Set(f.Name, flagValue); err != nil {
			log.Warnf("environment variable %q failed to override flag %q with value %q: %v",
				envName, f.Name, flagValue, err,
			)
		} else {
			log.Printf("environment variable %q overrides flag %q with %q", envName, f.Name, flagValue)
		}
	})
}

// Settings cover the -f, -s, -b, -l, -c, -g, -server and -format flags for
// the optional yaml config file; no other flag has a setting. Values apply
// only to flags not set on the command line or in the environment.
type Settings struct {
	Frequency  string `yaml:"frequency"`
	SampleRate string `yaml:"samplerate"`
	BlockSize  string `yaml:"blocksize"`
	LevelLimit string `yaml:"levellimit"`
	Decimation string `yaml:"decimation"`
	Gain       string `yaml:"gain"`
	Server     string `yaml:"server"`
	Format     string `yaml:"format"`
}

func applySettings(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	var settings Settings
	if err := yaml.Unmarshal(buf, &settings); err != nil {
		return errors.Wrap(err, "parsing config")
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name, value string) {
		if value == "" || set[name] {
			return
		}
		if err := flag.Set(name, value); err != nil {
			log.Warnf("config value %q for flag %q ignored: %v", value, name, err)
		}
	}

	apply("f", settings.Frequency)
	apply("s", settings.SampleRate)
	apply("b", settings.BlockSize)
	apply("l", settings.LevelLimit)
	apply("c", settings.Decimation)
	apply("g", settings.Gain)
	apply("server", settings.Server)
	apply("format", settings.Format)

	return nil
}

func HandleFlags() {
	if *configPath != "" {
		if err := applySettings(*configPath); err != nil {
			log.Warnf("%+v", err)
		}
	}

	if int(blockSize) < minBlockSize || int(blockSize) > maxBlockSize {
		log.Warnf("block size out of range [%d, %d], falling back to default %d",
			minBlockSize, maxBlockSize, defaultBlockSize,
		)
		blockSize = defaultBlockSize
	}

	*format = strings.ToLower(*format)
	switch *format {
	case "plain":
		encoder = PlainEncoder{}
	case "csv":
		encoder = csv.NewEncoder(os.Stdout)
	case "json":
		encoder = json.NewEncoder(os.Stdout)
	case "xml":
		encoder = xml.NewEncoder(os.Stdout)
	default:
		log.Warnf("invalid output format %q, falling back to plain", *format)
		encoder = PlainEncoder{}
	}

	// The trailing argument names the filtered-sample dump, "-" for stdout,
	// absent for no dump.
	outFilename = flag.Arg(0)
	switch outFilename {
	case "":
	case "-":
		outFile = os.Stdout
	default:
		var err error
		outFile, err = os.Create(outFilename)
		if err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "creating output file"))
		}
	}
}

// JSON, XML and CSV encoders all implement this interface so message
// output formatting stays uniform.
type Encoder interface {
	Encode(interface{}) error
}

type PlainEncoder struct{}

func (pe PlainEncoder) Encode(msg interface{}) (err error) {
	_, err = os.Stdout.WriteString(msg.(parse.LogMessage).String() + "\n")
	return
}

type UintMap map[uint]bool

func (m UintMap) String() (s string) {
	var values []string
	for k := range m {
		values = append(values, strconv.FormatUint(uint64(k), 10))
	}
	return strings.Join(values, ",")
}

func (m UintMap) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		m[uint(n)] = true
	}

	return nil
}

type SensorIDFilter struct {
	UintMap
}

func (f SensorIDFilter) Filter(msg parse.Message) bool {
	return f.UintMap[uint(msg.SensorID())]
}

// UniqueFilter drops consecutive duplicate readings per sensor.
type UniqueFilter map[string][]string

func NewUniqueFilter() UniqueFilter {
	return make(UniqueFilter)
}

func (uf UniqueFilter) Filter(msg parse.Message) bool {
	key := msg.MsgType() + strconv.Itoa(int(msg.SensorID()))
	record := msg.Record()

	if prev, ok := uf[key]; ok && equal(prev, record) {
		return false
	}

	uf[key] = record
	return true
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
