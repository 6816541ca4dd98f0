package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/stats"
)

func newStatsCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [snapshot...]",
		Short: "Summarize the transactions in snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			summary := stats.Compute(b.result.Transactions)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			_, err = fmt.Fprint(out, summary.Human())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}
