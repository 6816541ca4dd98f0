package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

const testRunID = "7b0e7c1e-4f7a-4d55-9a0e-2f9f1c3b8a11"

func testEntry() Entry {
	return Entry{
		Timestamp:  testTime,
		RunID:      testRunID,
		Account:    "Chequing",
		Action:     ActionImported,
		Details:    "Salary deposit 100.50",
		ImportedID: "ws_0123456789abcdef",
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Chequing", entries[0].Account)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Account = "TFSA"
	e2.Action = ActionFailed
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionImported, entries[0].Action)
	assert.Equal(t, ActionFailed, entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	original.Details = `notes with "quotes", commas`
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 fields")

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.Error(t, err)

	row = MarshalEntry(testEntry())
	row[colRunID] = "run-1"
	_, err = UnmarshalEntry(row)
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2024, 1, 15, 5, 30, 0, 0, time.FixedZone("EST", -5*3600))
	row := MarshalEntry(e)
	assert.Equal(t, "2024-01-15T10:30:00Z", row[colTimestamp])
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state", "nested")
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	_, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
}

func TestForRun(t *testing.T) {
	other := testEntry()
	other.RunID = NewRunID()
	entries := []Entry{testEntry(), other, testEntry()}

	assert.Len(t, ForRun(entries, testRunID), 2)
	assert.Len(t, ForRun(entries, other.RunID), 1)
	assert.Empty(t, ForRun(entries, "nope"))
}
