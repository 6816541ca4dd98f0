package parser

import (
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// Assemble merges every field of a block into one record, in document
// order, so a label that repeats takes its last value. It returns nil when
// no field produced anything.
//
// After merging, a missing type falls back to the subheading, and a missing
// account is inferred from a transfer's legs: a negative amount is shown
// from the sending side, anything else from the receiving side.
func (p *Parser) Assemble(b model.Block) (*model.Record, diag.List) {
	var rec model.Record
	var warns diag.List

	for _, f := range b.Fields {
		part, w := p.ParseField(f.Name, f.Value)
		warns = append(warns, w...)
		rec.Merge(part)
	}
	if rec.Empty() {
		return nil, warns
	}

	if b.Description != "" {
		rec.SetString(model.KeyDescription, b.Description)
	}
	if b.Subheading != "" {
		rec.SetString(model.KeySubheading, b.Subheading)
	}

	if rec.Type == "" && rec.Subheading != "" {
		rec.SetString(model.KeyType, rec.Subheading)
	}

	if rec.Account == "" && (rec.From != "" || rec.To != "") {
		account := rec.To
		if rec.Amount.Valid && rec.Amount.Decimal.IsNegative() {
			account = rec.From
		}
		if account != "" {
			rec.SetString(model.KeyAccount, account)
		}
	}

	return &rec, warns
}

// AssembleAll assembles each block and skips the empty ones.
func (p *Parser) AssembleAll(blocks []model.Block) ([]model.Record, diag.List) {
	var recs []model.Record
	var warns diag.List
	for _, b := range blocks {
		rec, w := p.Assemble(b)
		warns = append(warns, w...)
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, warns
}
