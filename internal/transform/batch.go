package transform

import (
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// Batch transforms every record and drops those without a usable amount,
// recording a warning for each one dropped.
func Batch(recs []model.Record, opts Options) ([]model.Transaction, diag.List) {
	out := make([]model.Transaction, 0, len(recs))
	var warns diag.List
	for _, rec := range recs {
		tx, txWarns := Transform(rec, opts)
		warns = append(warns, txWarns...)
		if !tx.Amount.Valid {
			warns.Add(diag.CodeDroppedRecord, "amount", "dropping %q on %s: amount is missing or out of range", tx.Payee, dateOrUnknown(tx.Date))
			continue
		}
		out = append(out, tx)
	}
	return out, warns
}

func dateOrUnknown(date string) string {
	if date == "" {
		return "unknown date"
	}
	return date
}
