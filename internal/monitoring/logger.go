// Package monitoring holds the diagnostic logging hook shared by the solver
// packages.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or batch sweeps can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into a slice until the returned restore function is
// called. Intended for tests that assert on solver log lines.
func Capture() (lines *[]string, restore func()) {
	original := Logf
	var (
		mu       sync.Mutex
		captured []string
	)
	Logf = func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, fmt.Sprintf(format, v...))
	}
	return &captured, func() { Logf = original }
}
