package logger

import (
	"bytes"
	"sync"
)

// LineWriter buffers partial writes and logs one entry per complete line.
// Call Flush once the producer is done to log a trailing unterminated line.
type LineWriter struct {
	mu     sync.Mutex
	logger *Logger
	level  Level
	buf    bytes.Buffer
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		w.logLine(w.buf.Next(idx + 1))
	}
	return len(p), nil
}

// Flush logs whatever is buffered after the last newline.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.logLine(w.buf.Next(w.buf.Len()))
	}
}

func (w *LineWriter) logLine(b []byte) {
	if line := string(bytes.TrimRight(b, "\r\n")); line != "" {
		w.logger.logWithCustomLevel(w.level, "%s", line)
	}
}
