// Package pipeline chains the pure conversion steps: scraped blocks to
// records, records to transactions, transactions through validation.
package pipeline

import (
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/journal"
	"github.com/cleared-dev/wsbridge/internal/model"
	"github.com/cleared-dev/wsbridge/internal/parser"
	"github.com/cleared-dev/wsbridge/internal/transform"
)

// Options configures Run.
type Options struct {
	// Parser interprets field values. Nil uses a wall-clock parser.
	Parser    *parser.Parser
	Transform transform.Options
}

// Result holds every stage's output. Transactions is everything that
// survived the finite-amount filter; Valid and Invalid partition it.
type Result struct {
	Blocks       int
	Records      []model.Record
	Transactions []model.Transaction
	Valid        []model.Transaction
	Invalid      []model.Transaction
	Warnings     diag.List
}

// Run converts blocks into canonical transactions.
func Run(blocks []model.Block, opts Options) Result {
	p := opts.Parser
	if p == nil {
		p = parser.New()
	}

	res := Result{Blocks: len(blocks)}

	recs, warns := p.AssembleAll(blocks)
	res.Records = recs
	res.Warnings = append(res.Warnings, warns...)

	txs, warns := transform.Batch(recs, opts.Transform)
	res.Transactions = txs
	res.Warnings = append(res.Warnings, warns...)

	valid, invalid, warns := journal.Partition(txs)
	res.Valid = valid
	res.Invalid = invalid
	res.Warnings = append(res.Warnings, warns...)

	return res
}
