package trace

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrsched/internal/sched"
)

func TestCSVWriterRows(t *testing.T) {
	var buf bytes.Buffer
	cw, err := NewCSVWriter(&buf)
	require.NoError(t, err)

	cw.Observe(sched.Event{Tick: 3, Kind: sched.EventDispatch, Task: 2, Name: "A", Priority: 3, Remaining: 2, Device: -1, Ready: 1, Active: 2})
	cw.Observe(sched.Event{Tick: 4, Kind: sched.EventWait, Task: 2, Name: "A", Priority: 3, Remaining: 1, Device: 0, Ready: 0, Active: 2})
	require.NoError(t, cw.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		header,
		{"3", "Dispatch", "2", "A", "3", "2", "-1", "1", "2"},
		{"4", "Wait", "2", "A", "3", "1", "0", "0", "2"},
	}, rows)
}

func TestCSVWriterFromScheduler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	cw, err := Create(path)
	require.NoError(t, err)

	s := sched.New(sched.WithObserver(cw))
	require.NoError(t, s.Init(1, 0))
	_, err = s.SpawnNamed("solo", func(int) { s.Exec() }, 2)
	require.NoError(t, err)
	s.Shutdown()
	require.NoError(t, cw.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	var kinds []string
	for _, row := range rows[1:] {
		kinds = append(kinds, row[1])
	}
	assert.Equal(t, []string{"Spawn", "Dispatch", "Renew", "Exit", "Done"}, kinds)
	assert.Equal(t, "solo", rows[1][3])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriterKeepsFirstError(t *testing.T) {
	_, err := NewCSVWriter(failingWriter{})
	require.EqualError(t, err, "disk full")
}

// shortWriter accepts the header and fails every later write.
type shortWriter struct{ writes int }

func (w *shortWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestCSVWriterCloseReportsRowError(t *testing.T) {
	cw, err := NewCSVWriter(&shortWriter{})
	require.NoError(t, err)

	cw.Observe(sched.Event{Kind: sched.EventDispatch, Task: 1})
	cw.Observe(sched.Event{Kind: sched.EventExit, Task: 1})
	require.EqualError(t, cw.Err(), "disk full")
	require.EqualError(t, cw.Close(), "disk full")
}
