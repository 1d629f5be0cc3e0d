// Package logger records every dispatched command line as newline
// delimited JSON, one entry per line.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spencertipping/pipesh/core/proc"
)

// LogRecorder is a callback that stores entries in an external
// datastore.
type LogRecorder func(e *Entry) error

// Logger captures dispatch events so sessions can be audited after
// the fact.
type Logger struct {
	Record LogRecorder
}

// NewJSONLinesRecorder creates a Logger that exports entries in
// newline delimited JSON object format.
func NewJSONLinesRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Entry) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Entry is one logged event.
type Entry struct {
	TimestampMicros int64     `json:"timestamp_micros"`
	Dispatch        *Dispatch `json:"dispatch,omitempty"`
}

// Dispatch records one fully handled input line: the raw text and one
// stage per launched child.
type Dispatch struct {
	Line   string  `json:"line"`
	Stages []Stage `json:"stages"`
}

// Stage is one launched child within a dispatch.
type Stage struct {
	Argv   []string        `json:"argv"`
	Report proc.ExitReport `json:"report"`
}

// RecordDispatch timestamps and stores one dispatch.
func (l *Logger) RecordDispatch(d *Dispatch) error {
	return l.Record(&Entry{
		TimestampMicros: time.Now().UnixMicro(),
		Dispatch:        d,
	})
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(&entry)
	}
	return nil
}
