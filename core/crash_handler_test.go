package core

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureCrash swaps the exit and output hooks for the duration of a test
func captureCrash(t *testing.T) (*bytes.Buffer, <-chan int) {
	t.Helper()
	var (
		buf bytes.Buffer
		mu  sync.Mutex
	)
	codes := make(chan int, 1)

	prevOut, prevExit := crashOutput, exit
	crashOutput = &lockedWriter{w: &buf, mu: &mu}
	exit = func(code int) { codes <- code }
	t.Cleanup(func() {
		crashOutput, exit = prevOut, prevExit
		SetCrashHandler(nil)
	})
	return &buf, codes
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func TestGoRecoversAndRunsHandler(t *testing.T) {
	buf, codes := captureCrash(t)

	seen := make(chan any, 1)
	SetCrashHandler(func(r any) { seen <- r })

	Go(func() { panic("boom") })

	select {
	case code := <-codes:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("crash handler did not exit")
	}
	assert.Equal(t, "boom", <-seen)
	assert.Contains(t, buf.String(), "CRASH DETECTED: boom")
}

func TestHandleCrashSurvivesPanickingHook(t *testing.T) {
	buf, codes := captureCrash(t)
	SetCrashHandler(func(any) { panic("hook failed") })

	HandleCrash("original")

	require.Equal(t, 1, <-codes)
	assert.Contains(t, buf.String(), "original")
}

func TestHandleCrashIgnoresNil(t *testing.T) {
	_, codes := captureCrash(t)
	HandleCrash(nil)
	assert.Empty(t, codes)
}

func TestGoRunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("function did not run")
	}
}
