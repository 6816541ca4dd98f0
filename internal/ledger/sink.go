// Package ledger talks to the budgeting ledger that transactions are
// imported into.
package ledger

import (
	"context"
	"fmt"
)

// Account is one ledger account.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OffBudget bool   `json:"offbudget"`
	Closed    bool   `json:"closed"`
}

// Payee is one ledger payee. Transfer payees carry the account they
// transfer into.
type Payee struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TransferAcct string `json:"transfer_acct,omitempty"`
}

// WireRecord is a transaction in the shape the ledger imports. Exactly one
// of Payee (an existing payee ID) or PayeeName is set.
type WireRecord struct {
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	ImportedID string `json:"imported_id"`
	Cleared    bool   `json:"cleared"`
	Account    string `json:"account,omitempty"`
	Payee      string `json:"payee,omitempty"`
	PayeeName  string `json:"payee_name,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Category   string `json:"category,omitempty"`
}

// ImportError is a per-record failure reported by the ledger.
type ImportError struct {
	Message string `json:"message"`
}

// ImportResult lists the transaction IDs created and updated by one batch
// import. Records that matched an existing transaction unchanged appear in
// neither list.
type ImportResult struct {
	Added   []string      `json:"added"`
	Updated []string      `json:"updated"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// Sink is a ledger that can list its directory and import batches.
type Sink interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListPayees(ctx context.Context) ([]Payee, error)
	BatchImport(ctx context.Context, accountID string, records []WireRecord) (ImportResult, error)
}

// Directory is a snapshot of the ledger's accounts and payees.
type Directory struct {
	Accounts []Account
	Payees   []Payee
}

// LoadDirectory fetches accounts and payees from sink.
func LoadDirectory(ctx context.Context, sink Sink) (Directory, error) {
	accounts, err := sink.ListAccounts(ctx)
	if err != nil {
		return Directory{}, fmt.Errorf("listing accounts: %w", err)
	}
	payees, err := sink.ListPayees(ctx)
	if err != nil {
		return Directory{}, fmt.Errorf("listing payees: %w", err)
	}
	return Directory{Accounts: accounts, Payees: payees}, nil
}

// Account returns the account with the given ID.
func (d Directory) Account(id string) (Account, bool) {
	for _, a := range d.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// TransferPayee returns the payee that transfers into accountID.
func (d Directory) TransferPayee(accountID string) (Payee, bool) {
	for _, p := range d.Payees {
		if p.TransferAcct != "" && p.TransferAcct == accountID {
			return p, true
		}
	}
	return Payee{}, false
}
