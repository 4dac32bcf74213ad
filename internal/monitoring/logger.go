package monitoring

import (
	"log"
	"strings"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// logWriter adapts Logf to an io.Writer for APIs that want a *log.Logger,
// such as http.Server.ErrorLog.
type logWriter struct {
	prefix string
}

func (w logWriter) Write(p []byte) (int, error) {
	Logf("%s%s", w.prefix, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// NewStdLogger returns a *log.Logger whose output goes through Logf.
func NewStdLogger(prefix string) *log.Logger {
	return log.New(logWriter{prefix: prefix}, "", 0)
}
