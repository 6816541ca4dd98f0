// Package parser turns scraped label/value pairs into typed raw records.
package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// Parser interprets scraped fields. The zero value is ready to use and
// resolves relative dates against the wall clock.
type Parser struct {
	// Now resolves "today" and "yesterday". Nil means time.Now.
	Now func() time.Time
}

// New returns a Parser bound to the wall clock.
func New() *Parser {
	return &Parser{Now: time.Now}
}

var std = New()

// ParseField interprets one label/value pair with the default Parser.
func ParseField(name, value string) (model.Record, diag.List) {
	return std.ParseField(name, value)
}

// Assemble merges one block with the default Parser.
func Assemble(b model.Block) (*model.Record, diag.List) {
	return std.Assemble(b)
}

var plainFields = map[string]model.Key{
	"account":          model.KeyAccount,
	"from":             model.KeyFrom,
	"to":               model.KeyTo,
	"status":           model.KeyStatus,
	"type":             model.KeyType,
	"email":            model.KeyEmail,
	"message":          model.KeyMessage,
	"entered quantity": model.KeyEnteredQuantity,
	"filled quantity":  model.KeyFilledQuantity,
	"account number":   model.KeyAccountNumber,
	"transaction id":   model.KeyTransactionID,
}

var dateFields = map[string]model.Key{
	"date":      model.KeyDate,
	"submitted": model.KeySubmitted,
	"filled":    model.KeyFilled,
}

var amountFields = map[string]bool{
	"amount":           true,
	"total":            true,
	"total value":      true,
	"total cost":       true,
	"estimated amount": true,
}

// ParseField interprets one label/value pair. Labels are matched without
// regard to case. Unknown labels yield an empty record and no warning.
func (p *Parser) ParseField(name, value string) (model.Record, diag.List) {
	var rec model.Record
	var warns diag.List

	label := normalizeLabel(name)

	if k, ok := plainFields[label]; ok {
		rec.SetString(k, strings.TrimSpace(value))
		return rec, warns
	}

	if k, ok := dateFields[label]; ok {
		date, ok := p.ParseDate(value)
		if !ok {
			warns.Add(diag.CodeBadDate, k.String(), "unrecognized date %q", value)
		}
		rec.SetString(k, date)
		return rec, warns
	}

	switch {
	case amountFields[label]:
		m, ok := ParseCurrency(value)
		if !ok {
			warns.Add(diag.CodeBadAmount, label, "unrecognized amount %q", value)
			rec.SetDecimal(model.KeyAmount, decimal.NullDecimal{})
			return rec, warns
		}
		amount := m.Amount
		if label == "total cost" {
			amount = amount.Abs().Neg()
		}
		rec.SetDecimal(model.KeyAmount, decimal.NewNullDecimal(amount))
		rec.SetString(model.KeyAmountCurrency, m.Currency)

	case label == "original amount":
		m, ok := ParseCurrency(value)
		if !ok {
			warns.Add(diag.CodeBadAmount, label, "unrecognized amount %q", value)
			rec.SetDecimal(model.KeyOriginalAmount, decimal.NullDecimal{})
			return rec, warns
		}
		rec.SetDecimal(model.KeyOriginalAmount, decimal.NewNullDecimal(m.Amount))
		rec.SetString(model.KeyOriginalCurrency, m.Currency)

	case label == "exchange rate":
		rate, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(value), ",", ""))
		if err != nil {
			warns.Add(diag.CodeBadNumber, label, "unrecognized number %q", value)
			rec.SetDecimal(model.KeyExchangeRate, decimal.NullDecimal{})
			return rec, warns
		}
		rec.SetDecimal(model.KeyExchangeRate, decimal.NewNullDecimal(rate))

	case strings.Contains(label, "spend rewards"):
		m, ok := ParseCurrency(value)
		if !ok {
			warns.Add(diag.CodeBadAmount, label, "unrecognized amount %q", value)
			rec.SetDecimal(model.KeySpendRewards, decimal.NullDecimal{})
			return rec, warns
		}
		rec.SetDecimal(model.KeySpendRewards, decimal.NewNullDecimal(m.Amount))
		rec.SetString(model.KeySpendRewardsCurrency, m.Currency)
	}

	return rec, warns
}

func normalizeLabel(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
