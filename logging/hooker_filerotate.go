package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// NewFileRotateHooker enables daily rotated log files under path.
// age is the retention in years; 0 keeps every file.
func NewFileRotateHooker(path, filename string, age uint32, formatter logrus.Formatter) (logrus.Hook, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve log dir %s: %v", path, err)
		}
		path = abs
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create log dir %s: %v", path, err)
	}

	options := []rotatelogs.Option{
		rotatelogs.WithLinkName(filepath.Join(path, filename+".log")),
		rotatelogs.WithRotationTime(24 * time.Hour),
	}
	if age > 0 {
		options = append(options, rotatelogs.WithMaxAge(time.Duration(age)*365*24*time.Hour))
	}
	writer, err := rotatelogs.New(filepath.Join(path, filename+"-%Y%m%d-%d.log"), options...)
	if err != nil {
		return nil, fmt.Errorf("create rotate logs: %v", err)
	}

	return lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, formatter), nil
}
