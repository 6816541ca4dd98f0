// Package runlog keeps an append-only CSV audit trail of import runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the log.
const (
	ActionPlanned   = "planned"
	ActionImported  = "imported"
	ActionFailed    = "failed"
	ActionSkipped   = "skipped"
	ActionFallback  = "transfer_fallback"
	ActionProcessed = "snapshot_processed"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp  time.Time
	RunID      string
	Account    string
	Action     string
	Details    string
	ImportedID string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,account,action,details,imported_id"

// FileName is the log file inside the state directory.
const FileName = "run-log.csv"

const (
	numFields     = 6
	colTimestamp  = 0
	colRunID      = 1
	colAccount    = 2
	colAction     = 3
	colDetails    = 4
	colImportedID = 5
)

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colAccount] = e.Account
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colImportedID] = e.ImportedID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if _, err := uuid.Parse(record[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
	}

	return Entry{
		Timestamp:  ts,
		RunID:      record[colRunID],
		Account:    record[colAccount],
		Action:     record[colAction],
		Details:    record[colDetails],
		ImportedID: record[colImportedID],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating the file and header
// if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/run-log.csv, or nil if the file does
// not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// ForRun filters entries to one run.
func ForRun(entries []Entry, runID string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
