package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

const (
	numFields = 2
	colName   = 0
	colID     = 1
)

var header = []string{"ws_account_name", "actual_account_id"}

// ReadMappings reads a two-column mapping CSV with a header row. Rows keep
// file order, which is the order patterns are tried in.
func ReadMappings(r io.Reader) ([]model.AccountMapping, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mappings CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var mappings []model.AccountMapping
	for i, rec := range records[1:] {
		m, err := UnmarshalMapping(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// WriteMappings writes mappings as CSV, including the header.
func WriteMappings(w io.Writer, mappings []model.AccountMapping) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range mappings {
		if err := cw.Write(MarshalMapping(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// LoadMappings reads a mapping CSV from path.
func LoadMappings(path string) ([]model.AccountMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mappings: %w", err)
	}
	defer f.Close()

	mappings, err := ReadMappings(f)
	if err != nil {
		return nil, fmt.Errorf("reading mappings %s: %w", path, err)
	}
	return mappings, nil
}

// MarshalMapping converts a mapping to a CSV row.
func MarshalMapping(m model.AccountMapping) []string {
	row := make([]string, numFields)
	row[colName] = m.WSAccountName
	row[colID] = m.ActualAccountID
	return row
}

// UnmarshalMapping converts a CSV row to a mapping.
func UnmarshalMapping(record []string) (model.AccountMapping, error) {
	if len(record) != numFields {
		return model.AccountMapping{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.AccountMapping{}, fmt.Errorf("empty %s", header[colName])
	}
	acct := strings.TrimSpace(record[colID])
	if acct == "" {
		return model.AccountMapping{}, fmt.Errorf("empty %s for %q", header[colID], name)
	}
	return model.AccountMapping{WSAccountName: name, ActualAccountID: acct}, nil
}
