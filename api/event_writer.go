package api

import (
	"bytes"
	"sync"
)

// ProgressWriter is an io.Writer that broadcasts each write as a log
// event over the session's WebSocket stream, replacing the teacher's
// stdout/stderr-broadcasting EventWriter: this domain has no running
// process to capture output from, so the writer only relays text that
// a caller writes to it to any connected client.
type ProgressWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	buffer      bytes.Buffer
	mutex       sync.Mutex
}

// NewProgressWriter creates a writer that broadcasts to sessionID's subscribers.
func NewProgressWriter(broadcaster *Broadcaster, sessionID string) *ProgressWriter {
	return &ProgressWriter{broadcaster: broadcaster, sessionID: sessionID}
}

// Write implements io.Writer, broadcasting the written bytes as a log event.
func (w *ProgressWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastLog(w.sessionID, string(p))
	}
	return n, err
}

// Buffer returns everything written so far.
func (w *ProgressWriter) Buffer() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.buffer.String()
}
