// Package activitylog appends timestamped audit lines to a plaintext file.
// Writes are fire-and-forget: a slow or failing disk never blocks or fails
// the request that triggered the entry.
package activitylog

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Logger writes activity lines to an append-only file through a buffered
// channel drained by a background goroutine.
type Logger struct {
	file  *os.File
	lines chan string
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// New opens (creating if needed) the log file at path and starts the
// background writer.
func New(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log %s: %w", path, err)
	}

	l := &Logger{
		file:  file,
		lines: make(chan string, 128),
		done:  make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Logger) run() {
	defer close(l.done)
	for line := range l.lines {
		if _, err := l.file.WriteString(line); err != nil {
			log.Printf("Failed to write activity log entry: %v", err)
		}
	}
}

// Logf queues one formatted line, prefixed with a sortable UTC timestamp.
// Safe to call on a nil Logger. If the buffer is full the line is dropped.
func (l *Logger) Logf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s\n",
		time.Now().UTC().Format(time.RFC3339),
		fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.lines <- line:
	default:
		log.Printf("Activity log buffer full, dropping entry: %s", line)
	}
}

// Close drains any queued lines and closes the file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.lines)
	l.mu.Unlock()

	<-l.done
	return l.file.Close()
}
