package model

import (
	"github.com/shopspring/decimal"
)

// Key names a single field of a Record.
type Key uint8

const (
	KeyAccount Key = iota
	KeyFrom
	KeyTo
	KeyStatus
	KeyType
	KeyEmail
	KeyMessage
	KeyEnteredQuantity
	KeyFilledQuantity
	KeyAccountNumber
	KeyTransactionID
	KeyDate
	KeySubmitted
	KeyFilled
	KeyAmount
	KeyAmountCurrency
	KeyOriginalAmount
	KeyOriginalCurrency
	KeyExchangeRate
	KeySpendRewards
	KeySpendRewardsCurrency
	KeyDescription
	KeySubheading

	numKeys
)

var keyNames = [numKeys]string{
	"account", "from", "to", "status", "type", "email", "message",
	"enteredQuantity", "filledQuantity", "accountNumber", "transactionId",
	"date", "submitted", "filled",
	"amount", "amountCurrency", "originalAmount", "originalCurrency",
	"exchangeRate", "spendRewards", "spendRewardsCurrency",
	"description", "subheading",
}

func (k Key) String() string {
	if k >= numKeys {
		return "unknown"
	}
	return keyNames[k]
}

// Record is a raw transaction assembled from the label/value pairs of one
// scraped block. Dates are "YYYY-MM-DD" or empty when unknown; amounts are
// null when the source text could not be read.
//
// A Record remembers which keys were written through its setters, so a
// partial Record produced for one field can be merged into another without
// clobbering keys it never touched.
type Record struct {
	Account         string
	From            string
	To              string
	Status          string
	Type            string
	Email           string
	Message         string
	EnteredQuantity string
	FilledQuantity  string
	AccountNumber   string
	TransactionID   string

	Date      string
	Submitted string
	Filled    string

	Amount               decimal.NullDecimal
	AmountCurrency       string
	OriginalAmount       decimal.NullDecimal
	OriginalCurrency     string
	ExchangeRate         decimal.NullDecimal
	SpendRewards         decimal.NullDecimal
	SpendRewardsCurrency string

	Description string
	Subheading  string

	set uint32
}

// Has reports whether k was written to r.
func (r Record) Has(k Key) bool {
	return r.set&(1<<k) != 0
}

// Empty reports whether no key was ever written to r.
func (r Record) Empty() bool {
	return r.set == 0
}

// Keys returns the written keys in declaration order.
func (r Record) Keys() []Key {
	var keys []Key
	for k := Key(0); k < numKeys; k++ {
		if r.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// SetString writes a string-valued key. It is a no-op for decimal keys.
func (r *Record) SetString(k Key, v string) {
	p := r.stringField(k)
	if p == nil {
		return
	}
	*p = v
	r.set |= 1 << k
}

// SetDecimal writes a decimal-valued key. It is a no-op for string keys.
func (r *Record) SetDecimal(k Key, v decimal.NullDecimal) {
	p := r.decimalField(k)
	if p == nil {
		return
	}
	*p = v
	r.set |= 1 << k
}

// Merge copies every key written to src into r. Keys present in both take
// src's value, so merging partials in DOM order yields last-write-wins.
func (r *Record) Merge(src Record) {
	for _, k := range src.Keys() {
		if p := src.stringField(k); p != nil {
			r.SetString(k, *p)
			continue
		}
		r.SetDecimal(k, *src.decimalField(k))
	}
}

func (r *Record) stringField(k Key) *string {
	switch k {
	case KeyAccount:
		return &r.Account
	case KeyFrom:
		return &r.From
	case KeyTo:
		return &r.To
	case KeyStatus:
		return &r.Status
	case KeyType:
		return &r.Type
	case KeyEmail:
		return &r.Email
	case KeyMessage:
		return &r.Message
	case KeyEnteredQuantity:
		return &r.EnteredQuantity
	case KeyFilledQuantity:
		return &r.FilledQuantity
	case KeyAccountNumber:
		return &r.AccountNumber
	case KeyTransactionID:
		return &r.TransactionID
	case KeyDate:
		return &r.Date
	case KeySubmitted:
		return &r.Submitted
	case KeyFilled:
		return &r.Filled
	case KeyAmountCurrency:
		return &r.AmountCurrency
	case KeyOriginalCurrency:
		return &r.OriginalCurrency
	case KeySpendRewardsCurrency:
		return &r.SpendRewardsCurrency
	case KeyDescription:
		return &r.Description
	case KeySubheading:
		return &r.Subheading
	}
	return nil
}

func (r *Record) decimalField(k Key) *decimal.NullDecimal {
	switch k {
	case KeyAmount:
		return &r.Amount
	case KeyOriginalAmount:
		return &r.OriginalAmount
	case KeyExchangeRate:
		return &r.ExchangeRate
	case KeySpendRewards:
		return &r.SpendRewards
	}
	return nil
}
