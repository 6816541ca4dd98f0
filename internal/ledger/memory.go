package ledger

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Sink. Each account gets a transfer payee named
// after it, mirroring how the ledger creates them. Imports are reconciled
// by imported_id.
type Memory struct {
	mu       sync.Mutex
	accounts []Account
	payees   []Payee
	records  map[string][]WireRecord
	fail     map[string]error
	calls    []string
	nextID   int
}

// NewMemory returns a Memory holding accounts.
func NewMemory(accounts ...Account) *Memory {
	m := &Memory{
		records: make(map[string][]WireRecord),
		fail:    make(map[string]error),
	}
	for _, a := range accounts {
		m.AddAccount(a)
	}
	return m
}

// AddAccount adds an account and its transfer payee.
func (m *Memory) AddAccount(a Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append(m.accounts, a)
	m.payees = append(m.payees, Payee{ID: "payee-" + a.ID, Name: a.Name, TransferAcct: a.ID})
}

// AddPayee adds an ordinary payee.
func (m *Memory) AddPayee(p Payee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payees = append(m.payees, p)
}

// RemovePayee drops the payee with the given ID.
func (m *Memory) RemovePayee(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.payees[:0]
	for _, p := range m.payees {
		if p.ID != id {
			out = append(out, p)
		}
	}
	m.payees = out
}

// FailImports makes every BatchImport into accountID return err.
func (m *Memory) FailImports(accountID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[accountID] = err
}

// ListAccounts implements Sink.
func (m *Memory) ListAccounts(context.Context) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Account(nil), m.accounts...), nil
}

// ListPayees implements Sink.
func (m *Memory) ListPayees(context.Context) ([]Payee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Payee(nil), m.payees...), nil
}

// BatchImport implements Sink. A record whose imported_id already exists
// is updated when it differs and ignored when it is identical.
func (m *Memory) BatchImport(ctx context.Context, accountID string, records []WireRecord) (ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, accountID)
	if err := m.fail[accountID]; err != nil {
		return ImportResult{}, err
	}
	if !m.hasAccount(accountID) {
		return ImportResult{}, fmt.Errorf("account %q not found", accountID)
	}

	var res ImportResult
	existing := m.records[accountID]
	for _, r := range records {
		if r.Date == "" {
			res.Errors = append(res.Errors, ImportError{Message: fmt.Sprintf("%s: missing date", r.ImportedID)})
			continue
		}
		idx := -1
		for i, e := range existing {
			if e.ImportedID == r.ImportedID {
				idx = i
				break
			}
		}
		switch {
		case idx < 0:
			existing = append(existing, r)
			m.nextID++
			res.Added = append(res.Added, fmt.Sprintf("tx-%d", m.nextID))
		case existing[idx] != r:
			existing[idx] = r
			res.Updated = append(res.Updated, r.ImportedID)
		}
	}
	m.records[accountID] = existing
	return res, nil
}

func (m *Memory) hasAccount(id string) bool {
	for _, a := range m.accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Records returns what has been imported into accountID.
func (m *Memory) Records(accountID string) []WireRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WireRecord(nil), m.records[accountID]...)
}

// Calls returns the account IDs passed to BatchImport, in call order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
