// Package diag carries soft failures through the import pipeline as values
// so callers can inspect them instead of scraping log output.
package diag

import "fmt"

// Code classifies a warning.
type Code string

const (
	CodeBadDate          Code = "bad_date"
	CodeBadAmount        Code = "bad_amount"
	CodeBadNumber        Code = "bad_number"
	CodeDroppedRecord    Code = "dropped_record"
	CodeInvalidRecord    Code = "invalid_record"
	CodeUnmappedAccount  Code = "unmapped_account"
	CodeTransferFallback Code = "transfer_fallback"
)

// Warning is a recoverable problem found while processing one value.
type Warning struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.Field, w.Message)
}

// List is an ordered collection of warnings.
type List []Warning

// Add appends a formatted warning.
func (l *List) Add(code Code, field, format string, args ...any) {
	*l = append(*l, Warning{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether any warning carries code.
func (l List) Has(code Code) bool {
	return l.Count(code) > 0
}

// Count returns how many warnings carry code.
func (l List) Count(code Code) int {
	n := 0
	for _, w := range l {
		if w.Code == code {
			n++
		}
	}
	return n
}
