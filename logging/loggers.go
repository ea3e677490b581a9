package logging

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// const
const (
	PanicLevel = "panic"
	FatalLevel = "fatal"
	ErrorLevel = "error"
	WarnLevel  = "warn"
	InfoLevel  = "info"
	DebugLevel = "debug"
	TraceLevel = "trace"
)

const (
	//PANIC log level
	PANIC uint32 = iota
	//FATAL has list msg
	FATAL
	//ERROR has list msg
	ERROR
	//WARN only log
	WARN
	//INFO only log
	INFO
	//DEBUG only log
	DEBUG
	//TRACE only log
	TRACE
)

const (
	//MsgFormatSingle use info
	MsgFormatSingle uint32 = iota
	//MsgFormatMulti use show all func call relation
	MsgFormatMulti
)

// LogFormat is to log format
type LogFormat = map[string]interface{}

type Logger struct {
	*logrus.Logger
}

func NewLogger() *Logger {
	return &Logger{
		Logger: logrus.New(),
	}
}

// Options configures Init.
type Options struct {
	// Dir holds rotated log files. Empty disables file output.
	Dir      string
	Filename string
	Level    string
	// Age is the retention of rotated files in years, 0 keeps them forever.
	Age uint32
	// Console receives CPrint output; nil means os.Stderr.
	Console io.Writer
	// DisableCPrint routes CPrint to the file logger only.
	DisableCPrint bool
}

var (
	mu   sync.Mutex
	clog *Logger
	vlog *Logger
)

// IsValidLevel reports whether level is one of the level names above.
func IsValidLevel(level string) bool {
	switch level {
	case PanicLevel, FatalLevel, ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel:
		return true
	}
	return false
}

func convertLevel(level string) logrus.Level {
	switch level {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	case TraceLevel:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Init loggers. vlog writes only to rotated files under opts.Dir, clog writes
// to the console as well.
func Init(opts Options) error {
	var fileHooker logrus.Hook
	if opts.Dir != "" {
		hook, err := NewFileRotateHooker(opts.Dir, opts.Filename, opts.Age, nil)
		if err != nil {
			return err
		}
		fileHooker = hook
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	newLogger := func(out io.Writer) *Logger {
		l := NewLogger()
		LoadFunctionHooker(l)
		if fileHooker != nil {
			l.Hooks.Add(fileHooker)
		}
		l.Out = out
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		l.Level = convertLevel(opts.Level)
		return l
	}

	v := newLogger(ioutil.Discard)
	c := v
	if !opts.DisableCPrint {
		c = newLogger(console)
	}

	mu.Lock()
	vlog, clog = v, c
	mu.Unlock()

	v.WithFields(logrus.Fields{
		"path":  opts.Dir,
		"level": opts.Level,
	}).Debug("Logger Configuration.")
	return nil
}

func loggers() (*Logger, *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if clog == nil {
		vlog = NewLogger()
		vlog.Out = ioutil.Discard
		clog = NewLogger()
		clog.Out = os.Stderr
		clog.Level = logrus.WarnLevel
	}
	return clog, vlog
}

// GetGID return gid
func GetGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// CPrint into stderr + log
func CPrint(level uint32, msg string, formats ...LogFormat) {
	c, _ := loggers()
	output(c, level, msg, formats)
}

// VPrint into log
func VPrint(level uint32, msg string, formats ...LogFormat) {
	_, v := loggers()
	output(v, level, msg, formats)
}

func output(l *Logger, level uint32, msg string, formats []LogFormat) {
	fields := mergeLogFormats(formats...)
	switch level {
	case PANIC, FATAL, ERROR:
		fields[callRelationKey] = MsgFormatMulti
	default:
		fields[callRelationKey] = MsgFormatSingle
	}
	entry := l.WithFields(fields)

	switch level {
	case PANIC:
		entry.Panic(msg)
	case FATAL:
		entry.Fatal(msg)
	case WARN:
		entry.Warn(msg)
	case INFO:
		entry.Info(msg)
	case DEBUG:
		entry.Debug(msg)
	case TRACE:
		entry.Trace(msg)
	default:
		entry.Error(msg)
	}
}

// mergeLogFormats merges LogFormats.
// Same key would be covered by later-presented values.
func mergeLogFormats(formats ...LogFormat) LogFormat {
	format := LogFormat{}
	for _, data := range formats {
		for k, v := range data {
			format[k] = v
		}
	}
	format["tid"] = GetGID()
	return format
}
