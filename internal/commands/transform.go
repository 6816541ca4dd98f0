package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/journal"
	"github.com/cleared-dev/wsbridge/internal/model"
)

func newTransformCommand(a *app) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "transform [snapshot...]",
		Short: "Convert snapshots to canonical transactions without importing",
		Long: "Reads the given snapshot files, or every snapshot in the import directory,\n" +
			"and writes the valid canonical transactions as CSV or JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}
			files, err := listSnapshots(cfg.Import.Dir, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no snapshots found in %s", cfg.Import.Dir)
			}

			b, err := convert(cfg, resolver, files, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer f.Close()
				out = f
			}

			if err := writeTransactions(out, format, b.result.Valid); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d snapshot(s), %d block(s): %d valid, %d invalid, %d warning(s)\n",
				len(files), b.result.Blocks, len(b.result.Valid), len(b.result.Invalid), len(b.result.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func writeTransactions(w io.Writer, format string, txs []model.Transaction) error {
	if format == "json" {
		if txs == nil {
			txs = []model.Transaction{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(txs); err != nil {
			return fmt.Errorf("encoding transactions: %w", err)
		}
		return nil
	}
	return journal.WriteTransactions(w, txs)
}
