package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger writes events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a FileLogger that appends to the given path,
// creating the file with permissions 0644 if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log writes an event to the log file.
// Encoding errors are ignored; logging must not disrupt arbitration.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the log file. Safe to call multiple times; subsequent
// Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// Reader decodes a recorded event stream.
type Reader struct {
	decoder *cbor.Decoder
}

// NewReader creates a Reader over the stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: NewDecoder(r)}
}

// Next returns the next event, or io.EOF at end of stream.
func (r *Reader) Next() (Event, error) {
	var ev Event
	if err := r.decoder.Decode(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
