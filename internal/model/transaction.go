package model

import (
	"encoding/json"
	"strconv"
)

// Cents is an amount in minor currency units. Valid is false when the
// source amount was missing or unreadable.
type Cents struct {
	Value int64
	Valid bool
}

// NewCents returns a valid amount of v minor units.
func NewCents(v int64) Cents {
	return Cents{Value: v, Valid: true}
}

func (c Cents) String() string {
	if !c.Valid {
		return "NaN"
	}
	return strconv.FormatInt(c.Value, 10)
}

// MarshalJSON encodes an invalid amount as null.
func (c Cents) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(c.Value, 10)), nil
}

// UnmarshalJSON decodes null as an invalid amount.
func (c *Cents) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cents{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewCents(v)
	return nil
}

// Transaction is the canonical ledger record produced from one Record.
// Amount is signed: negative for debits, positive for credits.
//
// IsTransfer and TransferToAccount are consumed by the reconciliation
// engine only and are not part of the public JSON shape.
type Transaction struct {
	Date    string // YYYY-MM-DD, empty when unknown
	Account string
	Payee   string
	Notes   string
	Amount  Cents

	IsTransfer        bool
	TransferToAccount string
}

type publicTransaction struct {
	Date    *string `json:"Date"`
	Account string  `json:"Account"`
	Payee   string  `json:"Payee"`
	Notes   string  `json:"Notes"`
	Amount  Cents   `json:"Amount"`
}

// MarshalJSON emits exactly the five public fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	pub := publicTransaction{
		Account: t.Account,
		Payee:   t.Payee,
		Notes:   t.Notes,
		Amount:  t.Amount,
	}
	if t.Date != "" {
		d := t.Date
		pub.Date = &d
	}
	return json.Marshal(pub)
}

// UnmarshalJSON reads the five public fields.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var pub publicTransaction
	if err := json.Unmarshal(data, &pub); err != nil {
		return err
	}
	*t = Transaction{
		Account: pub.Account,
		Payee:   pub.Payee,
		Notes:   pub.Notes,
		Amount:  pub.Amount,
	}
	if pub.Date != nil {
		t.Date = *pub.Date
	}
	return nil
}
