// Package monitoring carries the diagnostic logger for the orchestration
// pipeline. Every recovered failure is reported here before the fallback is
// attempted, so root causes stay visible even when the client sees a success.
package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into the returned slice until restore is called.
// Intended for tests asserting that recoveries are logged.
func Capture() (lines *[]string, restore func()) {
	prev := Logf
	captured := &[]string{}
	Logf = func(format string, v ...interface{}) {
		*captured = append(*captured, fmt.Sprintf(format, v...))
	}
	return captured, func() { Logf = prev }
}
