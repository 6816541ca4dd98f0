package commands

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/buildinfo"
	"github.com/cleared-dev/wsbridge/internal/config"
	"github.com/cleared-dev/wsbridge/internal/ledger"
	"github.com/cleared-dev/wsbridge/internal/logger"
)

// app carries what every subcommand needs.
type app struct {
	configPath string
	logger     zerolog.Logger
	newSink    func(cfg *config.Config, log zerolog.Logger) (ledger.Sink, error)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{
		logger:  logger.New(),
		newSink: httpSink,
	})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wsbridge",
		Short:   "Import Wealthsimple activity into Actual Budget",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.FileName, "path to wsbridge.yaml")

	rootCmd.AddCommand(
		newInitCommand(a),
		newTransformCommand(a),
		newStatsCommand(a),
		newImportCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

func httpSink(cfg *config.Config, log zerolog.Logger) (ledger.Sink, error) {
	if err := cfg.ValidateLedger(); err != nil {
		return nil, err
	}
	client, err := ledger.NewHTTPClient(ledger.HTTPConfig{
		BaseURL:  cfg.Ledger.URL,
		APIKey:   cfg.Ledger.APIKey,
		BudgetID: cfg.Ledger.BudgetID,
		Attempts: cfg.Ledger.Retry.Attempts,
		Delay:    cfg.Ledger.Retry.Delay,
	}, log.With().Str("component", "ledger").Logger())
	if err != nil {
		return nil, err
	}
	return client, nil
}

// loadConfig reads the config file and applies environment overrides.
// When the file is absent and required is false, defaults are used.
// Relative paths inside the config resolve against the file's directory.
func (a *app) loadConfig(required bool) (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	switch {
	case err == nil:
	case !required && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	base := filepath.Dir(a.configPath)
	cfg.Import.Dir = resolvePath(base, cfg.Import.Dir)
	cfg.Import.StateDir = resolvePath(base, cfg.Import.StateDir)
	cfg.Import.ArchiveDir = resolvePath(base, cfg.Import.ArchiveDir)
	if cfg.AccountsFile != "" {
		cfg.AccountsFile = resolvePath(base, cfg.AccountsFile)
	}
	return cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
