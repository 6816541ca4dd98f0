package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/config"
	"github.com/cleared-dev/wsbridge/internal/gitops"
)

func newInitCommand(a *app) *cobra.Command {
	var accountsCSV string
	var force bool
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter wsbridge.yaml and snapshot directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, accountsCSV, force, useGit)
		},
	}

	cmd.Flags().StringVar(&accountsCSV, "accounts-csv", "", "seed account mappings from a ws_account_name,actual_account_id CSV")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing wsbridge.yaml")
	cmd.Flags().BoolVar(&useGit, "git", false, "version the archive directory with git")

	return cmd
}

func runInit(out io.Writer, dir, accountsCSV string, force, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg := config.Default()
	if accountsCSV != "" {
		mappings, err := accounts.LoadMappings(accountsCSV)
		if err != nil {
			return err
		}
		cfg.Accounts = mappings
	}

	for _, d := range []string{
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, "processed"),
		cfg.Import.StateDir,
		cfg.Import.ArchiveDir,
	} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if useGit {
		archiveDir := filepath.Join(dir, cfg.Import.ArchiveDir)
		if !gitops.IsRepo(archiveDir) {
			if err := gitops.Init(archiveDir); err != nil {
				return err
			}
		}
		cfg.Import.GitCommit = true
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := cfg.Import.StateDir + "/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("Initialized"), cfgPath)
	if len(cfg.Accounts) == 0 {
		fmt.Fprintln(out, "Add account mappings under accounts: and set ledger.budget_id before importing.")
	} else {
		fmt.Fprintf(out, "Seeded %d account mapping(s) from %s\n", len(cfg.Accounts), accountsCSV)
	}
	return nil
}
