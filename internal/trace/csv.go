// Package trace writes scheduler events as CSV, one row per event.
package trace

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync"

	"rrsched/internal/sched"
)

var header = []string{"tick", "event", "task_id", "name", "priority", "remaining", "device", "ready", "active"}

// CSVWriter is a sched.Observer. Rows are flushed as they are written so a
// trace survives a scenario that never finishes.
type CSVWriter struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	err    error
}

var _ sched.Observer = (*CSVWriter)(nil)

// Create opens path for CSV logging of events, truncating it.
func Create(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cw, err := newCSVWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

// NewCSVWriter writes the header to w and returns the observer.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	return newCSVWriter(w, nil)
}

func newCSVWriter(w io.Writer, c io.Closer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w), closer: c}
	if err := cw.write(header); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *CSVWriter) Observe(ev sched.Event) {
	rec := []string{
		strconv.FormatUint(ev.Tick, 10),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.Task), 10),
		ev.Name,
		strconv.Itoa(ev.Priority),
		strconv.Itoa(ev.Remaining),
		strconv.Itoa(ev.Device),
		strconv.Itoa(ev.Ready),
		strconv.Itoa(ev.Active),
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.err == nil {
		cw.err = cw.write(rec)
	}
}

func (cw *CSVWriter) write(rec []string) error {
	if err := cw.w.Write(rec); err != nil {
		return err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Err returns the first write error; later events are dropped after it.
func (cw *CSVWriter) Err() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.err
}

// Close flushes and closes the underlying file, if Create opened one.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.w.Flush()
	if cw.closer != nil {
		if err := cw.closer.Close(); err != nil && cw.err == nil {
			cw.err = err
		}
		cw.closer = nil
	}
	return cw.err
}
