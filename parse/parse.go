package parse

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bemasher/rtlook/csv"
	"github.com/bemasher/rtlook/pwm"
)

const (
	TimeFormat = "2006-01-02T15:04:05.000"
)

var (
	parserMutex sync.Mutex
	parsers     = make(map[string]NewParserFunc)
)

type NewParserFunc func(levelLimit int, log logrus.FieldLogger) Parser

// Given a name and a constructor, register a parser for use. Later used by
// underscore importing each parser package:
//
//	import _ "github.com/bemasher/rtlook/rubicson"
func Register(name string, parserFn NewParserFunc) {
	parserMutex.Lock()
	defer parserMutex.Unlock()

	if parserFn == nil {
		panic("parser: new parser func is nil")
	}
	if _, dup := parsers[name]; dup {
		panic(fmt.Sprintf("parser: parser already registered (%s)", name))
	}
	parsers[name] = parserFn
}

// Given a name and slicer level limit, lookup the parser and make a new one.
func NewParser(name string, levelLimit int, log logrus.FieldLogger) (Parser, error) {
	parserMutex.Lock()
	defer parserMutex.Unlock()

	if parserFn, exists := parsers[name]; exists {
		return parserFn(levelLimit, log), nil
	}
	return nil, fmt.Errorf("invalid protocol: %q", name)
}

// Registered returns the names of all registered parsers.
func Registered() (names []string) {
	parserMutex.Lock()
	defer parserMutex.Unlock()

	for name := range parsers {
		names = append(names, name)
	}
	return
}

// A Parser feeds filtered envelope samples through its protocol's slicer
// and converts completed bursts into messages. Each parser keeps its own
// slicer state, several may consume the same stream independently.
type Parser interface {
	Parse([]int16) []Message
	Cfg() *pwm.Config
	Log(logrus.FieldLogger)
}

type Message interface {
	csv.Recorder
	MsgType() string
	SensorID() uint8
	Temperature() int16
}

// A LogMessage associates a message with the time it was received.
type LogMessage struct {
	Time time.Time
	Type string
	Message
}

func (msg LogMessage) String() string {
	return fmt.Sprintf("{Time:%s %s:%s}", msg.Time.Format(TimeFormat), msg.MsgType(), msg.Message)
}

func (msg LogMessage) Record() (r []string) {
	r = append(r, msg.Time.Format(time.RFC3339Nano))
	r = append(r, msg.Message.Record()...)
	return r
}

// A FilterChain takes a list of filters and applies them iteratively to
// messages sent through the chain.
type FilterChain []MessageFilter

func (fc *FilterChain) Add(filter MessageFilter) {
	*fc = append(*fc, filter)
}

func (fc FilterChain) Match(msg Message) bool {
	if len(fc) == 0 {
		return true
	}

	for _, filter := range fc {
		if !filter.Filter(msg) {
			return false
		}
	}

	return true
}

type MessageFilter interface {
	Filter(Message) bool
}

// FormatTemp renders tenths of a degree Celsius the way the sensors'
// displays do: sign, whole degrees, one decimal.
func FormatTemp(tenths int16) string {
	sign := ""
	if tenths < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%d", sign, abs(int(tenths)/10), abs(int(tenths)%10))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TempRecord is FormatTemp for csv output.
func TempRecord(tenths int16) string {
	return strconv.FormatFloat(float64(tenths)/10, 'f', 1, 64)
}
