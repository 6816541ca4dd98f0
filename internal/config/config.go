// Package config loads wsbridge.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/importer"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// FileName is the default config file name.
const FileName = "wsbridge.yaml"

// Config represents the top-level wsbridge.yaml configuration.
type Config struct {
	Ledger       LedgerConfig           `yaml:"ledger"`
	Accounts     []model.AccountMapping `yaml:"accounts"`
	AccountsFile string                 `yaml:"accounts_file,omitempty"`
	Transform    TransformConfig        `yaml:"transform"`
	Scrape       importer.Selectors     `yaml:"scrape"`
	Import       ImportConfig           `yaml:"import"`
	Serve        ServeConfig            `yaml:"serve"`
}

// LedgerConfig locates the actual-http-api server and budget.
type LedgerConfig struct {
	URL      string      `yaml:"url"`
	APIKey   string      `yaml:"api_key"`
	BudgetID string      `yaml:"budget_id"`
	Retry    RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of failed ledger requests.
type RetryConfig struct {
	Attempts uint          `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// TransformConfig tunes transaction synthesis.
type TransformConfig struct {
	BrandPayee string `yaml:"brand_payee"`
}

// ImportConfig controls where snapshots are read from and where run state
// is kept.
type ImportConfig struct {
	Dir           string `yaml:"dir"`
	StateDir      string `yaml:"state_dir"`
	ArchiveDir    string `yaml:"archive_dir"`
	DryRun        bool   `yaml:"dry_run"`
	MoveProcessed bool   `yaml:"move_processed"`
	// GitCommit commits the archive after each import when it is a git
	// repository.
	GitCommit bool `yaml:"git_commit"`
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a wsbridge.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new setup.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			URL: "http://localhost:5007",
			Retry: RetryConfig{
				Attempts: 3,
				Delay:    time.Second,
			},
		},
		Transform: TransformConfig{
			BrandPayee: "Wealthsimple",
		},
		Scrape: importer.DefaultSelectors(),
		Import: ImportConfig{
			Dir:           "snapshots",
			StateDir:      ".wsbridge",
			ArchiveDir:    "archive",
			MoveProcessed: true,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8087",
		},
	}
}

// Mappings returns the inline account mappings followed by those in
// AccountsFile, if set.
func (c *Config) Mappings() ([]model.AccountMapping, error) {
	out := append([]model.AccountMapping(nil), c.Accounts...)
	if c.AccountsFile == "" {
		return out, nil
	}
	extra, err := accounts.LoadMappings(c.AccountsFile)
	if err != nil {
		return nil, err
	}
	return append(out, extra...), nil
}

// Resolver compiles the account mappings.
func (c *Config) Resolver() (*accounts.Resolver, error) {
	mappings, err := c.Mappings()
	if err != nil {
		return nil, err
	}
	return accounts.NewResolver(mappings)
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	mappings, err := c.Mappings()
	if err != nil {
		errs = append(errs, err)
	}
	if err == nil && len(mappings) == 0 {
		errs = append(errs, errors.New("accounts: at least one mapping is required"))
	}
	for i, m := range mappings {
		if strings.TrimSpace(m.WSAccountName) == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: ws_account_name is empty", i))
		}
		if strings.TrimSpace(m.ActualAccountID) == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: actual_account_id is empty", i))
		}
		if _, err := accounts.Compile(m); err != nil {
			errs = append(errs, fmt.Errorf("accounts[%d]: %w", i, err))
		}
	}

	if c.Ledger.Retry.Attempts == 0 {
		errs = append(errs, errors.New("ledger.retry.attempts must be at least 1"))
	}
	if c.Ledger.Retry.Delay < 0 {
		errs = append(errs, errors.New("ledger.retry.delay must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateLedger reports missing ledger connection settings.
func (c *Config) ValidateLedger() error {
	var errs []error
	if c.Ledger.URL == "" {
		errs = append(errs, errors.New("ledger.url is required"))
	}
	if c.Ledger.BudgetID == "" {
		errs = append(errs, errors.New("ledger.budget_id is required"))
	}
	return errors.Join(errs...)
}
