// Package log writes structured log entries as K=V pairs.
// By default, output is written to stdout; this can be changed with SetOutput.
//
// Every entry carries the run ID stored in its context (see WithRunID),
// so that the lines produced by one script run, or one verification
// batch, can be picked out of a shared log.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/onyx-protocol/neovm/errors"
)

const rfc3339NanoFixed = "2006-01-02T15:04:05.000000000Z07:00"

var (
	logWriterMu sync.Mutex // protects the following
	logWriter   io.Writer  = os.Stdout
	prefix      []byte

	// pairDelims separate K=V pairs. Keys containing them are
	// rewritten and values containing them are quoted, so that
	// an entry splits back into its pairs unambiguously.
	pairDelims      = " ,;|&\t\n\r"
	illegalKeyChars = pairDelims + `="`
)

// Conventional key names for log entries
const (
	KeyCaller = "at"    // location of caller
	KeyTime   = "t"     // time of call
	KeyRunID  = "runid" // run ID from context
	KeyJob    = "job"   // job index within a batch, from context

	KeyMessage = "message" // produced by Printf
	KeyError   = "error"   // produced by Error
	KeyStack   = "stack"   // printed on the lines after the entry

	keyLogError = "log-error" // for errors produced by the log package itself
)

// UnknownRunID is logged when the context carries no run ID.
const UnknownRunID = "unknown_run_id"

type ctxKey int

const (
	runIDKey ctxKey = iota
	jobKey
)

// WithRunID returns a copy of ctx that carries the given run ID.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunID returns the run ID stored in ctx, or UnknownRunID.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return UnknownRunID
}

// WithJob returns a copy of ctx that carries a batch job index.
func WithJob(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, jobKey, n)
}

// SetOutput sets the log output to w.
func SetOutput(w io.Writer) {
	logWriterMu.Lock()
	logWriter = w
	logWriterMu.Unlock()
}

// SetPrefix sets K=V pairs written at the start of every entry,
// such as the name of the program.
func SetPrefix(keyval ...interface{}) {
	if len(keyval)%2 != 0 {
		panic(fmt.Sprintf("odd-length prefix args: %v", keyval))
	}
	var b []byte
	for i := 0; i < len(keyval); i += 2 {
		b = appendPair(b, keyval[i], keyval[i+1])
		b = append(b, ' ')
	}
	logWriterMu.Lock()
	prefix = b
	logWriterMu.Unlock()
}

// Printkv prints a structured log entry to the log output.
// Log fields are specified as a variadic sequence of
// alternating keys and values. Duplicate keys are preserved.
//
// Each entry starts with the run ID from ctx, the file and line
// of the caller, a timestamp and, when ctx carries one, the batch
// job index.
//
// A KeyStack value of type []byte or []errors.StackFrame is not
// printed inline but on the lines following the entry. Failing
// that, the stack of a KeyError value is printed there.
func Printkv(ctx context.Context, keyvals ...interface{}) {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "", keyLogError, "odd number of log params")
	}

	b := make([]byte, 0, 128)
	b = appendPair(b, KeyRunID, RunID(ctx))
	b = append(b, ' ')
	b = append(b, KeyCaller+"="...)
	b = append(b, caller()...)
	b = append(b, ' ')
	b = appendPair(b, KeyTime, time.Now().UTC().Format(rfc3339NanoFixed))
	if n, ok := ctx.Value(jobKey).(int); ok {
		b = append(b, " "+KeyJob+"="...)
		b = strconv.AppendInt(b, int64(n), 10)
	}

	var stack interface{}
	for i := 0; i < len(keyvals); i += 2 {
		k, v := keyvals[i], keyvals[i+1]
		if k == KeyStack && isStackVal(v) {
			stack = v
			continue
		}
		if e, ok := v.(error); ok && k == KeyError && stack == nil {
			stack = errors.Stack(e)
		}
		b = append(b, ' ')
		b = appendPair(b, k, v)
	}
	b = append(b, '\n')
	b = appendStack(b, stack)

	logWriterMu.Lock()
	defer logWriterMu.Unlock()
	logWriter.Write(prefix)
	logWriter.Write(b) // ignore errors
}

// Printf prints a log entry containing a message assigned to the
// "message" key. Arguments are handled as in fmt.Printf.
func Printf(ctx context.Context, format string, a ...interface{}) {
	Printkv(ctx, KeyMessage, fmt.Sprintf(format, a...))
}

// Error prints a log entry containing an error message assigned to
// the "error" key, prefixed by a, which is handled as in fmt.Print.
func Error(ctx context.Context, err error, a ...interface{}) {
	if len(a) > 0 {
		err = errors.Wrap(err, a...)
	}
	Printkv(ctx, KeyError, err)
}

func appendStack(b []byte, v interface{}) []byte {
	switch v := v.(type) {
	case []byte:
		if len(v) > 0 {
			b = append(b, v...)
			b = append(b, '\n')
		}
	case []errors.StackFrame:
		for _, f := range v {
			b = append(b, f.String()...)
			b = append(b, '\n')
		}
	}
	return b
}

func isStackVal(v interface{}) bool {
	switch v.(type) {
	case []byte, []errors.StackFrame:
		return true
	}
	return false
}

func appendPair(b []byte, k, v interface{}) []byte {
	b = append(b, formatKey(k)...)
	b = append(b, '=')
	return append(b, formatValue(v)...)
}

// formatKey replaces delimiter and quote characters in k with
// hyphens.
func formatKey(k interface{}) string {
	s := fmt.Sprint(k)
	if s == "" {
		return "?"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalKeyChars, r) {
			return '-'
		}
		return r
	}, s)
}

// formatValue quotes v if it contains a delimiter.
func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, pairDelims) {
		return strconv.Quote(s)
	}
	return s
}
