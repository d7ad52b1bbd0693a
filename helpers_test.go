package lod

import (
	"bytes"
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// fakeSettings is a Settings with fixed values
type fakeSettings struct {
	laptop   string
	desktop  string
	runner   string
	app      string
	arg      string
	cleanups atomic.Int32
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		laptop:  "/tmp/lod/laptop.scpt",
		desktop: "/tmp/lod/desktop.scpt",
		runner:  DefaultScriptRunner,
		app:     "caffeinate",
		arg:     "-d",
	}
}

func (s *fakeSettings) ScriptPath(mode Mode) string {
	if mode == ModeLaptop {
		return s.laptop
	}
	return s.desktop
}

func (s *fakeSettings) ScriptRunner() string {
	return s.runner
}

func (s *fakeSettings) Caffeination() (string, string, bool) {
	return s.app, s.arg, s.app != ""
}

func (s *fakeSettings) Cleanup() error {
	s.cleanups.Add(1)
	return nil
}

// lockedBuffer collects log output written from several goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// recordingHandler remembers every message it was handed
type recordingHandler struct {
	mu   sync.Mutex
	msgs []Message
}

func (h *recordingHandler) Handle(_ context.Context, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *recordingHandler) kinds() []MessageKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]MessageKind, len(h.msgs))
	for i, m := range h.msgs {
		kinds[i] = m.Kind
	}
	return kinds
}
