package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/wsbridge/internal/model"
)

var debitKeywords = []string{
	"withdrawal",
	"withdraw",
	"payment",
	"purchase",
	"transfer_out",
	"fee",
	"interest_charge",
}

var creditKeywords = []string{
	"deposit",
	"transfer_in",
	"interest",
	"dividend",
	"refund",
}

// IsDebit classifies a transaction. The checks run in a fixed order:
//  1. a debit keyword in the type means debit;
//  2. otherwise a negative raw amount means debit, even for a credit type
//     such as a negative "deposit";
//  3. otherwise a credit keyword means credit;
//  4. anything else is a credit.
func IsDebit(typ string, raw decimal.Decimal) bool {
	t := strings.ToLower(typ)
	switch {
	case containsAny(t, debitKeywords):
		return true
	case raw.IsNegative():
		return true
	case containsAny(t, creditKeywords):
		return false
	default:
		return false
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Direction says which leg of a transfer a record is shown from.
type Direction int

const (
	// Outbound: the record belongs to the sending account.
	Outbound Direction = iota + 1
	// Inbound: the record belongs to the receiving account.
	Inbound
)

func (d Direction) String() string {
	switch d {
	case Outbound:
		return "outbound"
	case Inbound:
		return "inbound"
	}
	return "none"
}

// Target is the other side of a transfer relative to the current record.
type Target struct {
	Direction Direction
	Account   string
}

// TransferTarget returns the counterpart of current in a from->to movement.
// A record on the sending account targets to; any other record targets from.
func TransferTarget(current, from, to string) Target {
	if current == from {
		return Target{Direction: Outbound, Account: to}
	}
	return Target{Direction: Inbound, Account: from}
}

// DetectTransfer reports whether rec moves money between two distinct
// mapped accounts, and if so which account is on the other side.
func DetectTransfer(rec model.Record, isMapped func(string) bool) (Target, bool) {
	if rec.From == "" || rec.To == "" || rec.From == rec.To {
		return Target{}, false
	}
	if isMapped == nil || !isMapped(rec.From) || !isMapped(rec.To) {
		return Target{}, false
	}
	return TransferTarget(rec.Account, rec.From, rec.To), true
}
