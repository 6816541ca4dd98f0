package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/config"
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/gitops"
	"github.com/cleared-dev/wsbridge/internal/importer"
	"github.com/cleared-dev/wsbridge/internal/journal"
	"github.com/cleared-dev/wsbridge/internal/model"
	"github.com/cleared-dev/wsbridge/internal/reconcile"
	"github.com/cleared-dev/wsbridge/internal/runlog"
)

func newImportCommand(a *app) *cobra.Command {
	var dryRun bool
	var keep bool

	cmd := &cobra.Command{
		Use:   "import [snapshot...]",
		Short: "Convert snapshots and import them into the ledger",
		Long: "Reads the given snapshot files, or every snapshot in the import directory,\n" +
			"reconciles the transactions against the ledger and records the run in\n" +
			"the run log. Exits non-zero when any record fails to import.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(true)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Import.DryRun = dryRun
			}
			if keep {
				cfg.Import.MoveProcessed = false
			}
			return a.runImport(cmd.Context(), cmd.OutOrStdout(), cfg, args)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "plan the import without writing to the ledger")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave snapshots in place after a successful import")

	return cmd
}

func (a *app) runImport(ctx context.Context, out io.Writer, cfg *config.Config, paths []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	files, err := listSnapshots(cfg.Import.Dir, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No snapshots in %s\n", cfg.Import.Dir)
		return nil
	}

	runID := runlog.NewRunID()
	log := a.logger.With().Str("run_id", runID).Logger()

	b, err := convert(cfg, resolver, files, log)
	if err != nil {
		return err
	}

	sink, err := a.newSink(cfg, log)
	if err != nil {
		return err
	}
	engine := reconcile.NewEngine(sink, resolver, log)

	rl := &runRecorder{runID: runID, now: time.Now()}

	if cfg.Import.DryRun {
		plan, warns, err := engine.DryRun(ctx, b.result.Valid)
		if err != nil {
			return err
		}
		rl.plan(plan)
		rl.fallbacks(warns)
		if err := runlog.Append(cfg.Import.StateDir, rl.entries); err != nil {
			return err
		}
		printPlan(out, runID, plan, len(b.result.Invalid))
		return nil
	}

	rep, plan, warns, err := engine.Import(ctx, b.result.Valid)
	if err != nil {
		return err
	}
	rl.report(rep)
	rl.fallbacks(warns)

	archived, err := archive(cfg, resolver, rep, b.result.Valid)
	if err != nil {
		return err
	}
	log.Info().Int("archived", archived).Str("dir", cfg.Import.ArchiveDir).Msg("archived transactions")
	if err := commitArchive(cfg, runID, archived, log); err != nil {
		return err
	}

	if cfg.Import.MoveProcessed && !rep.HasFailures() {
		for _, f := range b.files {
			if err := importer.MarkProcessed(filepath.Dir(f.Path), f.Name); err != nil {
				return err
			}
			rl.add("", runlog.ActionProcessed, f.Name, "")
		}
	}

	if err := runlog.Append(cfg.Import.StateDir, rl.entries); err != nil {
		return err
	}

	printReport(out, runID, plan, rep, len(b.result.Invalid))
	if rep.HasFailures() {
		return fmt.Errorf("%d record(s) failed to import", rep.Failed)
	}
	return nil
}

// archive keeps a local copy of every transaction whose account imported
// without a batch error.
func archive(cfg *config.Config, resolver *accounts.Resolver, rep reconcile.Report, txs []model.Transaction) (int, error) {
	failed := make(map[string]bool)
	for _, r := range rep.Accounts {
		if r.Error != "" {
			failed[r.AccountID] = true
		}
	}

	var keep []model.Transaction
	for _, tx := range txs {
		accountID, ok := resolver.Resolve(tx.Account)
		if !ok || failed[accountID] {
			continue
		}
		keep = append(keep, tx)
	}
	return journal.NewStore(cfg.Import.ArchiveDir).Append(keep)
}

// commitArchive records newly archived rows in the archive's git history.
func commitArchive(cfg *config.Config, runID string, archived int, log zerolog.Logger) error {
	dir := cfg.Import.ArchiveDir
	if !cfg.Import.GitCommit || archived == 0 || !gitops.IsRepo(dir) {
		return nil
	}
	changed, err := gitops.HasChanges(dir)
	if err != nil || !changed {
		return err
	}
	hash, err := gitops.CommitAll(dir, fmt.Sprintf("import: %d transaction(s)\n\nRun %s", archived, runID), gitops.DefaultAuthor)
	if err != nil {
		return fmt.Errorf("committing archive: %w", err)
	}
	log.Info().Str("commit", hash).Msg("committed archive")
	return nil
}

// runRecorder accumulates run log entries for one run.
type runRecorder struct {
	runID   string
	now     time.Time
	entries []runlog.Entry
}

func (r *runRecorder) add(account, action, details, importedID string) {
	r.entries = append(r.entries, runlog.Entry{
		Timestamp:  r.now,
		RunID:      r.runID,
		Account:    account,
		Action:     action,
		Details:    details,
		ImportedID: importedID,
	})
}

func (r *runRecorder) plan(p reconcile.Plan) {
	for _, b := range p.Batches {
		for _, rec := range b.Records {
			r.add(b.AccountName, runlog.ActionPlanned, fmt.Sprintf("%s %d %s", rec.Date, rec.Amount, rec.Notes), rec.ImportedID)
		}
	}
	r.skips(p.Skipped)
}

func (r *runRecorder) report(rep reconcile.Report) {
	for _, a := range rep.Accounts {
		r.add(a.AccountName, runlog.ActionImported,
			fmt.Sprintf("imported=%d updated=%d duplicates=%d", a.Imported, a.Updated, a.Duplicates), "")
		if a.Failed > 0 {
			details := fmt.Sprintf("failed=%d", a.Failed)
			if a.Error != "" {
				details += " " + a.Error
			}
			r.add(a.AccountName, runlog.ActionFailed, details, "")
		}
	}
	r.skips(rep.Skipped)
}

func (r *runRecorder) skips(skipped []reconcile.Skip) {
	for _, s := range skipped {
		r.add(s.Account, runlog.ActionSkipped, fmt.Sprintf("%d unmapped transaction(s)", s.Count), "")
	}
}

func (r *runRecorder) fallbacks(warns diag.List) {
	for _, w := range warns {
		if w.Code == diag.CodeTransferFallback {
			r.add("", runlog.ActionFallback, w.Message, "")
		}
	}
}

func printPlan(out io.Writer, runID string, plan reconcile.Plan, invalid int) {
	bold := color.New(color.Bold)
	bold.Fprintf(out, "Dry run %s\n", runID)
	for _, b := range plan.Batches {
		fmt.Fprintf(out, "  %-30s %4d record(s)\n", b.AccountName, len(b.Records))
	}
	printSkips(out, plan.Skipped, invalid)
	fmt.Fprintf(out, "Would send %d record(s): %d transfer(s), %d fallback(s)\n", plan.Len(), plan.Transfers, plan.Fallbacks)
}

func printReport(out io.Writer, runID string, plan reconcile.Plan, rep reconcile.Report, invalid int) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	bold.Fprintf(out, "Run %s\n", runID)
	for _, a := range rep.Accounts {
		line := fmt.Sprintf("  %-30s imported %d  updated %d  duplicates %d  failed %d",
			a.AccountName, a.Imported, a.Updated, a.Duplicates, a.Failed)
		if a.Failed > 0 {
			line = red(line)
		}
		fmt.Fprintln(out, line)
	}
	printSkips(out, rep.Skipped, invalid)
	if plan.Fallbacks > 0 {
		fmt.Fprintf(out, "%d transfer(s) posted as ordinary transactions\n", plan.Fallbacks)
	}

	summary := fmt.Sprintf("Imported %d, updated %d, duplicates %d, failed %d",
		rep.Imported, rep.Updated, rep.Duplicates, rep.Failed)
	if rep.HasFailures() {
		fmt.Fprintln(out, red(summary))
	} else {
		fmt.Fprintln(out, green(summary))
	}
}

func printSkips(out io.Writer, skipped []reconcile.Skip, invalid int) {
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, s := range skipped {
		fmt.Fprintln(out, yellow(fmt.Sprintf("Skipped %d transaction(s) for unmapped account %q", s.Count, s.Account)))
	}
	if invalid > 0 {
		fmt.Fprintln(out, yellow(fmt.Sprintf("Excluded %d invalid transaction(s)", invalid)))
	}
}
