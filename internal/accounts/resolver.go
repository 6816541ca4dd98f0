// Package accounts maps scraped account names to ledger account IDs.
package accounts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// Kind says how a pattern is matched.
type Kind int

const (
	// Exact compares names case-insensitively.
	Exact Kind = iota
	// Regex matches the whole name, case-insensitively.
	Regex
)

func (k Kind) String() string {
	if k == Regex {
		return "regex"
	}
	return "exact"
}

const metachars = `\.+*?()|[]{}^$`

// Pattern is one compiled mapping entry.
type Pattern struct {
	Source    string
	Kind      Kind
	AccountID string

	re *regexp.Regexp
}

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	if p.Kind == Regex {
		return p.re.MatchString(name)
	}
	return strings.EqualFold(p.Source, name)
}

// Compile builds a pattern. Sources containing regex metacharacters are
// treated as anchored, case-insensitive regular expressions.
func Compile(m model.AccountMapping) (Pattern, error) {
	p := Pattern{Source: m.WSAccountName, AccountID: m.ActualAccountID}
	if !strings.ContainsAny(m.WSAccountName, metachars) {
		return p, nil
	}
	re, err := regexp.Compile(`(?i)^(?:` + m.WSAccountName + `)$`)
	if err != nil {
		return Pattern{}, fmt.Errorf("compiling account pattern %q: %w", m.WSAccountName, err)
	}
	p.Kind = Regex
	p.re = re
	return p, nil
}

// Resolver resolves account names against an ordered pattern list.
type Resolver struct {
	patterns []Pattern
}

// NewResolver compiles mappings once, preserving their order.
func NewResolver(mappings []model.AccountMapping) (*Resolver, error) {
	patterns := make([]Pattern, 0, len(mappings))
	for _, m := range mappings {
		p, err := Compile(m)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return &Resolver{patterns: patterns}, nil
}

// Resolve returns the account ID of the first pattern that matches name.
// Later patterns are never consulted once one matches.
func (r *Resolver) Resolve(name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	for _, p := range r.patterns {
		if p.Match(name) {
			return p.AccountID, true
		}
	}
	return "", false
}

// IsMapped reports whether name resolves to any account.
func (r *Resolver) IsMapped(name string) bool {
	_, ok := r.Resolve(name)
	return ok
}

// Patterns returns the compiled patterns in declaration order.
func (r *Resolver) Patterns() []Pattern {
	if r == nil {
		return nil
	}
	out := make([]Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Len returns the number of patterns.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.patterns)
}
