package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/ledger"
	"github.com/cleared-dev/wsbridge/internal/logger"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// AccountResult tallies one per-account batch import.
type AccountResult struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Records     int    `json:"records"`
	Imported    int    `json:"imported"`
	Updated     int    `json:"updated"`
	Failed      int    `json:"failed"`
	Duplicates  int    `json:"duplicates"`
	Error       string `json:"error,omitempty"`
}

// Report aggregates every account of a run.
type Report struct {
	Accounts   []AccountResult `json:"accounts"`
	Skipped    []Skip          `json:"skipped,omitempty"`
	Imported   int             `json:"imported"`
	Updated    int             `json:"updated"`
	Failed     int             `json:"failed"`
	Duplicates int             `json:"duplicates"`
}

// HasFailures reports whether any record failed to import.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

// Engine reconciles canonical transactions into a ledger.
type Engine struct {
	sink     ledger.Sink
	resolver *accounts.Resolver
	logger   zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(sink ledger.Sink, resolver *accounts.Resolver, logger zerolog.Logger) *Engine {
	return &Engine{sink: sink, resolver: resolver, logger: logger}
}

// Plan loads the ledger directory and builds the import plan for txs.
func (e *Engine) Plan(ctx context.Context, txs []model.Transaction) (Plan, diag.List, error) {
	dir, err := ledger.LoadDirectory(ctx, e.sink)
	if err != nil {
		return Plan{}, nil, fmt.Errorf("loading ledger directory: %w", err)
	}
	plan, warns := BuildPlan(txs, e.resolver, dir)
	logger.Warnings(e.logger, warns)
	return plan, warns, nil
}

// DryRun is Plan without side effects on the ledger.
func (e *Engine) DryRun(ctx context.Context, txs []model.Transaction) (Plan, diag.List, error) {
	return e.Plan(ctx, txs)
}

// Import plans txs and executes the plan.
func (e *Engine) Import(ctx context.Context, txs []model.Transaction) (Report, Plan, diag.List, error) {
	plan, warns, err := e.Plan(ctx, txs)
	if err != nil {
		return Report{}, Plan{}, nil, err
	}
	return e.Execute(ctx, plan), plan, warns, nil
}

// Execute sends each batch to the ledger, one account at a time in plan
// order. A failed batch marks only that account's records as failed.
func (e *Engine) Execute(ctx context.Context, plan Plan) Report {
	rep := Report{Skipped: plan.Skipped}
	for _, b := range plan.Batches {
		res := e.importBatch(ctx, b)
		rep.Accounts = append(rep.Accounts, res)
		rep.Imported += res.Imported
		rep.Updated += res.Updated
		rep.Failed += res.Failed
		rep.Duplicates += res.Duplicates
	}
	return rep
}

func (e *Engine) importBatch(ctx context.Context, b Batch) AccountResult {
	res := AccountResult{AccountID: b.AccountID, AccountName: b.AccountName, Records: len(b.Records)}
	log := e.logger.With().Str("account", b.AccountName).Str("account_id", b.AccountID).Logger()

	out, err := e.sink.BatchImport(ctx, b.AccountID, b.Records)
	if err != nil {
		res.Failed = len(b.Records)
		res.Error = err.Error()
		log.Error().Err(err).Int("records", len(b.Records)).Msg("batch import failed")
		return res
	}

	res.Imported = len(out.Added)
	res.Updated = len(out.Updated)
	res.Failed = len(out.Errors)
	res.Duplicates = max(len(b.Records)-res.Imported-res.Updated-res.Failed, 0)
	for _, ie := range out.Errors {
		log.Warn().Str("error", ie.Message).Msg("record rejected")
	}
	log.Info().
		Int("imported", res.Imported).
		Int("updated", res.Updated).
		Int("failed", res.Failed).
		Int("duplicates", res.Duplicates).
		Msg("batch imported")
	return res
}
