// Package journal validates canonical transactions and keeps a CSV archive
// of them.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// ValidationError describes one failed check on a transaction.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of validating one transaction.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// Error joins all validation errors, or returns "" when valid.
func (r Result) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that tx has a date, a finite amount and an account.
func Validate(tx model.Transaction) Result {
	var errs []ValidationError

	if tx.Date == "" {
		errs = append(errs, ValidationError{Field: "Date", Message: "date is required"})
	} else if _, err := time.Parse(dateFormat, tx.Date); err != nil {
		errs = append(errs, ValidationError{Field: "Date", Message: fmt.Sprintf("date %q is not YYYY-MM-DD", tx.Date)})
	}

	if !tx.Amount.Valid {
		errs = append(errs, ValidationError{Field: "Amount", Message: "amount must be a number"})
	}

	if strings.TrimSpace(tx.Account) == "" {
		errs = append(errs, ValidationError{Field: "Account", Message: "account is required"})
	}

	// Notes is a string by construction; an empty memo is allowed.

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// Partition splits txs into valid and invalid transactions. Each invalid
// transaction produces one warning; order is preserved within each side.
func Partition(txs []model.Transaction) (valid, invalid []model.Transaction, warns diag.List) {
	for _, tx := range txs {
		res := Validate(tx)
		if res.IsValid {
			valid = append(valid, tx)
			continue
		}
		invalid = append(invalid, tx)
		warns.Add(diag.CodeInvalidRecord, res.Errors[0].Field, "excluding %q on %q: %s", tx.Payee, tx.Date, res.Error())
	}
	return valid, invalid, warns
}
