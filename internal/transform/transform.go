// Package transform converts raw scraped records into canonical ledger
// transactions.
package transform

import (
	"math"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// DefaultBrandPayee is the payee that small recurring platform credits are
// folded under.
const DefaultBrandPayee = "Wealthsimple"

// Options tunes Transform.
type Options struct {
	// IsAccountMapped reports whether an account name resolves to a ledger
	// account. Without it no record is treated as a transfer.
	IsAccountMapped func(name string) bool
	// BrandPayee replaces referral, interest, bonus, cash back and
	// reimbursement payees. Defaults to DefaultBrandPayee.
	BrandPayee string
}

func (o Options) brand() string {
	if o.BrandPayee == "" {
		return DefaultBrandPayee
	}
	return o.BrandPayee
}

// Transform converts one raw record into a canonical transaction. A missing,
// unreadable or out of range amount yields an invalid Amount rather than zero.
func Transform(rec model.Record, opts Options) (model.Transaction, diag.List) {
	date, warns := ResolveDate(rec)
	tx := model.Transaction{
		Date:    date,
		Account: rec.Account,
		Amount:  SignedCents(rec),
		Payee:   synthesizePayee(rec, opts.brand()),
	}

	target, isTransfer := DetectTransfer(rec, opts.IsAccountMapped)
	tx.Notes = synthesizeNotes(rec, isTransfer)
	if isTransfer {
		tx.IsTransfer = true
		tx.TransferToAccount = target.Account
	}
	return tx, warns
}

var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

var fallbackDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"01/02/2006",
}

// ResolveDate picks date, then filled, then submitted, and normalizes it to
// YYYY-MM-DD. Timestamps keep the calendar day they were written in. It
// returns "" when no candidate is present, with a warning when the chosen
// candidate cannot be read.
func ResolveDate(rec model.Record) (string, diag.List) {
	field, raw := firstDate(rec)
	if raw == "" {
		return "", nil
	}
	if date, ok := normalizeDate(raw); ok {
		return date, nil
	}
	var warns diag.List
	warns.Add(diag.CodeBadDate, field, "unrecognized date %q", raw)
	return "", warns
}

func firstDate(rec model.Record) (string, string) {
	switch {
	case rec.Date != "":
		return "date", rec.Date
	case rec.Filled != "":
		return "filled", rec.Filled
	default:
		return "submitted", rec.Submitted
	}
}

func normalizeDate(raw string) (string, bool) {
	if m := isoPrefix.FindString(raw); m != "" {
		if _, err := time.Parse("2006-01-02", m); err == nil {
			return m, true
		}
		return "", false
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// maxCents bounds both signs so that negating a valid amount never overflows.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// ToCents converts a dollar amount to minor units, rounding half away from
// zero: 10.555 becomes 1056 and -10.555 becomes -1056. It reports false when
// the result does not fit in an int64.
func ToCents(d decimal.Decimal) (int64, bool) {
	c := d.Abs().Shift(2).Round(0)
	if c.GreaterThan(maxCents) {
		return 0, false
	}
	v := c.IntPart()
	if d.IsNegative() {
		v = -v
	}
	return v, true
}

// SignedCents returns the record's amount in minor units with its sign set
// by IsDebit. Amounts too large for int64 cents are invalid.
func SignedCents(rec model.Record) model.Cents {
	if !rec.Amount.Valid {
		return model.Cents{}
	}
	cents, ok := ToCents(rec.Amount.Decimal)
	if !ok {
		return model.Cents{}
	}
	if cents < 0 {
		cents = -cents
	}
	if IsDebit(rec.Type, rec.Amount.Decimal) {
		return model.NewCents(-cents)
	}
	return model.NewCents(cents)
}
