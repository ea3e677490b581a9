package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxCallRelation is the number of caller frames recorded for MsgFormatMulti.
const maxCallRelation = 3

// callRelationKey carries the per-entry MsgFormat from output to the hook.
// The hook removes it before the entry is formatted.
const callRelationKey = "_call_relation"

type functionHooker struct{}

// callers returns up to n frames above the logging package and logrus.
func callers(n int) []runtime.Frame {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(2, pcs)]

	var out []runtime.Frame
	frames := runtime.CallersFrames(pcs)
	for len(out) < n {
		f, more := frames.Next()
		if !isInternalFrame(f) {
			out = append(out, f)
		}
		if !more {
			break
		}
	}
	return out
}

func isInternalFrame(f runtime.Frame) bool {
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	return strings.Contains(f.Function, "github.com/sirupsen/logrus") ||
		strings.Contains(f.Function, "shasum/logging.")
}

func shortFuncName(fn string) string {
	if index := strings.LastIndex(fn, "/"); index >= 0 {
		return fn[index+1:]
	}
	return fn
}

func (h *functionHooker) fire(entry *logrus.Entry) {
	frames := callers(1)
	if len(frames) == 0 {
		return
	}
	f := frames[0]
	entry.Data["func"] = shortFuncName(f.Function)
	entry.Data["line"] = f.Line
	entry.Data["file"] = filepath.Base(f.File)
}

func (h *functionHooker) fires(entry *logrus.Entry) {
	for i, f := range callers(maxCallRelation) {
		entry.Data["f"+strconv.Itoa(i)] = fmt.Sprintf("{%s,%s,%d}", filepath.Base(f.File), shortFuncName(f.Function), f.Line)
	}
}

func (h *functionHooker) Fire(entry *logrus.Entry) error {
	relation, _ := entry.Data[callRelationKey].(uint32)
	delete(entry.Data, callRelationKey)
	if relation == MsgFormatMulti {
		h.fires(entry)
	} else {
		h.fire(entry)
	}
	return nil
}

func (h *functionHooker) Levels() []logrus.Level {
	return logrus.AllLevels
}

// LoadFunctionHooker loads a function hooker to the logger
func LoadFunctionHooker(logger *Logger) {
	logger.Hooks.Add(&functionHooker{})
}
