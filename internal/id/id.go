// Package id derives the deterministic identifiers the ledger uses to
// deduplicate imports.
package id

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

const (
	// Prefix starts every imported ID.
	Prefix = "ws_"
	// MirrorSuffix marks the synthesized destination leg of a transfer.
	MirrorSuffix = "_mirror"

	hashHexLen = 16
)

// hashInput fixes the key order of the hashed object. Do not reorder.
type hashInput struct {
	Account string  `json:"account"`
	Amount  *int64  `json:"amount"`
	Date    *string `json:"date"`
	Notes   string  `json:"notes"`
	Payee   string  `json:"payee"`
}

// Imported returns the dedup ID for tx: "ws_" followed by the first 16 hex
// characters of the SHA-256 of {account, amount, date, notes, payee}.
// An unknown date or amount is hashed as null.
func Imported(tx model.Transaction) string {
	in := hashInput{
		Account: tx.Account,
		Notes:   tx.Notes,
		Payee:   tx.Payee,
	}
	if tx.Amount.Valid {
		v := tx.Amount.Value
		in.Amount = &v
	}
	if tx.Date != "" {
		d := tx.Date
		in.Date = &d
	}

	sum := sha256.Sum256(canonicalJSON(in))
	return Prefix + hex.EncodeToString(sum[:])[:hashHexLen]
}

func canonicalJSON(in hashInput) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(in); err != nil {
		// Strings and integers always encode.
		panic(fmt.Sprintf("encoding hash input: %v", err))
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// Mirror returns the imported ID of the mirrored leg for a primary ID.
func Mirror(primary string) string {
	return primary + MirrorSuffix
}

// IsMirror reports whether importedID names a mirrored leg.
func IsMirror(importedID string) bool {
	return strings.HasSuffix(importedID, MirrorSuffix)
}
