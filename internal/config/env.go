package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "WSBRIDGE_"

// ApplyEnv overrides settings from WSBRIDGE_* environment variables:
// LEDGER_URL, LEDGER_API_KEY, LEDGER_BUDGET_ID, BRAND_PAYEE, SERVE_ADDR,
// IMPORT_DIR and STATE_DIR. Unset variables leave the file value alone.
func ApplyEnv(cfg *Config) error {
	k := koanf.New(".")
	cb := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", cb), nil); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	for key, dst := range map[string]*string{
		"ledger_url":       &cfg.Ledger.URL,
		"ledger_api_key":   &cfg.Ledger.APIKey,
		"ledger_budget_id": &cfg.Ledger.BudgetID,
		"brand_payee":      &cfg.Transform.BrandPayee,
		"serve_addr":       &cfg.Serve.Addr,
		"import_dir":       &cfg.Import.Dir,
		"state_dir":        &cfg.Import.StateDir,
	} {
		if k.Exists(key) {
			*dst = k.String(key)
		}
	}
	return nil
}
