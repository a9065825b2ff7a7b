package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var (
	crashHook atomic.Pointer[func(r any)]

	// Swapped by tests
	crashOutput io.Writer = os.Stderr
	exit                  = os.Exit
)

// SetCrashHandler registers cleanup that runs before the crash report is printed
// The terminal host uses it to restore the tty and flush the logger; nil clears it
func SetCrashHandler(fn func(r any)) {
	if fn == nil {
		crashHook.Store(nil)
		return
	}
	crashHook.Store(&fn)
}

// HandleCrash runs the registered cleanup, prints the panic with its stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if hook := crashHook.Load(); hook != nil {
		// Cleanup must not mask the original panic
		func() {
			defer func() { _ = recover() }()
			(*hook)(r)
		}()
	}

	fmt.Fprintf(crashOutput, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())

	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use instead of the go keyword so a panic restores the terminal before exiting
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
