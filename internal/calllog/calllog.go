// Package calllog records upstream call outcomes for auditing. Recording is
// fire-and-forget: entries ride a buffered channel to a single writer
// goroutine and are dropped, never blocking, when the buffer is full.
package calllog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"videorelay/internal/infra"
)

// Entry is one audited upstream call.
type Entry struct {
	Timestamp  int64    `json:"ts"`
	Credential string   `json:"credential,omitempty"`
	Model      string   `json:"model"`
	Success    bool     `json:"success"`
	StatusCode int      `json:"status_code"`
	ElapsedMS  int64    `json:"elapsed_ms"`
	MediaURLs  []string `json:"media_urls,omitempty"`
	Error      string   `json:"error,omitempty"`
	Country    string   `json:"country,omitempty"`
}

const bufferSize = 256

// Recorder appends entries as JSON lines to a log file. A nil Recorder is
// valid and discards everything, so wiring the sink stays optional. Entries
// recorded after Close are discarded; detached workers may outlive the sink.
type Recorder struct {
	mu      sync.Mutex
	closed  bool
	entries chan Entry
	done    chan struct{}
	file    *os.File
	logger  infra.Logger
}

// NewRecorder opens (or creates) the log file at path and starts the writer.
func NewRecorder(path string, logger infra.Logger) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("calllog: ensure directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("calllog: open log file: %w", err)
	}
	r := &Recorder{
		entries: make(chan Entry, bufferSize),
		done:    make(chan struct{}),
		file:    file,
		logger:  logger,
	}
	go r.run()
	return r, nil
}

// Record enqueues an entry. It never blocks and never panics or surfaces an
// error into the caller; entries are dropped on a full buffer or after Close.
func (r *Recorder) Record(e Entry) {
	if r == nil {
		return
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}
	e.Credential = maskCredential(e.Credential)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.entries <- e:
	default:
		r.logger.Warn().Msg("calllog: buffer full, entry dropped")
	}
}

// Close drains pending entries and closes the log file. Further Record calls
// become no-ops; calling Close again is safe.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	close(r.entries)
	<-r.done
	return r.file.Close()
}

func (r *Recorder) run() {
	defer close(r.done)
	enc := json.NewEncoder(r.file)
	for e := range r.entries {
		if err := enc.Encode(e); err != nil {
			r.logger.Error().Err(err).Msg("calllog: write entry failed")
		}
	}
}

// maskCredential keeps just enough of the credential to correlate entries.
func maskCredential(credential string) string {
	if credential == "" {
		return ""
	}
	if len(credential) <= 8 {
		return "***"
	}
	return credential[:4] + "***" + credential[len(credential)-4:]
}
