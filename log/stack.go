package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const pkgPath = "github.com/onyx-protocol/neovm/log."

// caller returns the file and line of the nearest caller outside
// this package, or "?:?".
func caller() string {
	var pcs [16]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, pkgPath) || strings.HasSuffix(f.File, "_test.go") {
			return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			return "?:?"
		}
	}
}
