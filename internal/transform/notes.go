package transform

import (
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// synthesizeNotes builds the memo line.
//
// Transfers read "from -> to". Everything else reads
// "subheading - type (email): message quantity [id]". The ": " separator
// appears only when there is a message or a filled quantity; an id on its
// own is appended as " [id]".
func synthesizeNotes(rec model.Record, isTransfer bool) string {
	if isTransfer {
		return rec.From + " -> " + rec.To
	}

	var b strings.Builder
	switch {
	case rec.Subheading != "" && rec.Type != "" && rec.Subheading != rec.Type:
		b.WriteString(rec.Subheading + " - " + rec.Type)
	case rec.Subheading != "":
		b.WriteString(rec.Subheading)
	default:
		b.WriteString(rec.Type)
	}

	if rec.Email != "" {
		b.WriteString(" (" + rec.Email + ")")
	}

	if rec.Message != "" || rec.FilledQuantity != "" {
		var parts []string
		for _, p := range []string{rec.Message, rec.FilledQuantity} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if rec.TransactionID != "" {
			parts = append(parts, "["+rec.TransactionID+"]")
		}
		b.WriteString(": " + strings.Join(parts, " "))
	} else if rec.TransactionID != "" {
		b.WriteString(" [" + rec.TransactionID + "]")
	}

	return strings.TrimSpace(b.String())
}
