// Package reconcile turns canonical transactions into per-account ledger
// import batches and runs them.
package reconcile

import (
	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/id"
	"github.com/cleared-dev/wsbridge/internal/ledger"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// Batch is every record destined for one ledger account.
type Batch struct {
	AccountID   string              `json:"accountId"`
	AccountName string              `json:"accountName"`
	Records     []ledger.WireRecord `json:"records"`
}

// Skip counts transactions left out because their account is unmapped.
type Skip struct {
	Account string `json:"account"`
	Count   int    `json:"count"`
}

// Plan is the full set of batches for one run, in first-seen account
// order.
type Plan struct {
	Batches   []Batch `json:"batches"`
	Skipped   []Skip  `json:"skipped,omitempty"`
	Transfers int     `json:"transfers"`
	Fallbacks int     `json:"fallbacks"`
}

// Len returns the number of wire records across all batches.
func (p Plan) Len() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Records)
	}
	return n
}

type planner struct {
	resolver *accounts.Resolver
	dir      ledger.Directory

	plan    Plan
	index   map[string]int
	skipped map[string]int
	warns   diag.List
}

// BuildPlan converts txs to wire records grouped by resolved account.
// Transactions on unmapped accounts are skipped with one warning per
// account. A transfer whose other side cannot be posted as a ledger
// transfer degrades to an ordinary posting by payee name.
func BuildPlan(txs []model.Transaction, resolver *accounts.Resolver, dir ledger.Directory) (Plan, diag.List) {
	p := &planner{
		resolver: resolver,
		dir:      dir,
		index:    make(map[string]int),
		skipped:  make(map[string]int),
	}
	for _, tx := range txs {
		p.add(tx)
	}
	for i := range p.plan.Skipped {
		s := &p.plan.Skipped[i]
		s.Count = p.skipped[s.Account]
		p.warns.Add(diag.CodeUnmappedAccount, "Account", "skipping %d transaction(s) for unmapped account %q", s.Count, s.Account)
	}
	return p.plan, p.warns
}

func (p *planner) add(tx model.Transaction) {
	accountID, ok := p.resolver.Resolve(tx.Account)
	if !ok {
		if p.skipped[tx.Account] == 0 {
			p.plan.Skipped = append(p.plan.Skipped, Skip{Account: tx.Account})
		}
		p.skipped[tx.Account]++
		return
	}

	primaryID := id.Imported(tx)
	rec := ledger.WireRecord{
		Date:       tx.Date,
		Amount:     tx.Amount.Value,
		ImportedID: primaryID,
		Cleared:    true,
		Notes:      tx.Notes,
	}

	if tx.IsTransfer {
		if mirror, targetID, ok := p.transfer(tx, accountID, &rec); ok {
			p.append(accountID, tx.Account, rec)
			p.append(targetID, tx.TransferToAccount, mirror)
			p.plan.Transfers++
			return
		}
		p.plan.Fallbacks++
	}

	rec.PayeeName = tx.Payee
	p.append(accountID, tx.Account, rec)
}

// transfer fills rec's payee with the destination's transfer payee and
// builds the mirrored leg. It reports false, with a warning, when either
// side cannot take part in a ledger transfer.
func (p *planner) transfer(tx model.Transaction, accountID string, rec *ledger.WireRecord) (ledger.WireRecord, string, bool) {
	fallback := func(format string, args ...any) (ledger.WireRecord, string, bool) {
		args = append([]any{tx.Account, tx.TransferToAccount}, args...)
		p.warns.Add(diag.CodeTransferFallback, "TransferToAccount", "posting %q -> %q as an ordinary transaction: "+format, args...)
		return ledger.WireRecord{}, "", false
	}

	targetID, ok := p.resolver.Resolve(tx.TransferToAccount)
	if !ok {
		return fallback("destination is not mapped")
	}
	if targetID == accountID {
		return fallback("both sides map to ledger account %s", targetID)
	}
	if acct, ok := p.dir.Account(targetID); !ok {
		return fallback("ledger account %s does not exist", targetID)
	} else if acct.Closed {
		return fallback("ledger account %s is closed", targetID)
	}
	toPayee, ok := p.dir.TransferPayee(targetID)
	if !ok {
		return fallback("no transfer payee for ledger account %s", targetID)
	}
	fromPayee, ok := p.dir.TransferPayee(accountID)
	if !ok {
		return fallback("no transfer payee for ledger account %s", accountID)
	}

	rec.Payee = toPayee.ID
	mirror := ledger.WireRecord{
		Date:       rec.Date,
		Amount:     -rec.Amount,
		ImportedID: id.Mirror(rec.ImportedID),
		Cleared:    true,
		Payee:      fromPayee.ID,
		Notes:      rec.Notes,
	}
	return mirror, targetID, true
}

func (p *planner) append(accountID, name string, rec ledger.WireRecord) {
	i, ok := p.index[accountID]
	if !ok {
		i = len(p.plan.Batches)
		p.index[accountID] = i
		p.plan.Batches = append(p.plan.Batches, Batch{AccountID: accountID, AccountName: name})
	}
	p.plan.Batches[i].Records = append(p.plan.Batches[i].Records, rec)
}
