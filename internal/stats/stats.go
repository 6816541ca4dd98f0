// Package stats summarizes a batch of canonical transactions.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// UnknownType keys transactions whose notes are empty.
const UnknownType = "unknown"

// DateRange is the earliest and latest known date, "" when none.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary is the result of Compute. Money totals are in dollars.
type Summary struct {
	Total        int             `json:"total"`
	ByType       map[string]int  `json:"byType"`
	ByAccount    map[string]int  `json:"byAccount"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	NetAmount    decimal.Decimal `json:"netAmount"`
	DateRange    DateRange       `json:"dateRange"`
}

// Compute folds txs into a Summary. Types are keyed by the first word of
// Notes. Credits and debits are absolute sums; transactions without a
// finite amount are counted but not summed.
func Compute(txs []model.Transaction) Summary {
	s := Summary{
		ByType:    make(map[string]int),
		ByAccount: make(map[string]int),
	}

	var credits, debits int64
	for _, tx := range txs {
		s.Total++
		s.ByType[typeKey(tx.Notes)]++
		s.ByAccount[tx.Account]++

		if tx.Amount.Valid {
			switch {
			case tx.Amount.Value > 0:
				credits += tx.Amount.Value
			case tx.Amount.Value < 0:
				debits -= tx.Amount.Value
			}
		}

		if tx.Date == "" {
			continue
		}
		if s.DateRange.Start == "" || tx.Date < s.DateRange.Start {
			s.DateRange.Start = tx.Date
		}
		if tx.Date > s.DateRange.End {
			s.DateRange.End = tx.Date
		}
	}

	s.TotalCredits = decimal.New(credits, -2)
	s.TotalDebits = decimal.New(debits, -2)
	s.NetAmount = s.TotalCredits.Sub(s.TotalDebits)
	return s
}

func typeKey(notes string) string {
	f := strings.Fields(notes)
	if len(f) == 0 {
		return UnknownType
	}
	return f[0]
}

// Human renders the summary as a plain text report. Histogram rows are
// ordered by count, then key.
func (s Summary) Human() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transactions: %d\n", s.Total)
	if s.DateRange.Start != "" {
		fmt.Fprintf(&b, "Date range:   %s to %s\n", s.DateRange.Start, s.DateRange.End)
	}
	fmt.Fprintf(&b, "Credits:      %s\n", s.TotalCredits.StringFixed(2))
	fmt.Fprintf(&b, "Debits:       %s\n", s.TotalDebits.StringFixed(2))
	fmt.Fprintf(&b, "Net:          %s\n", s.NetAmount.StringFixed(2))

	writeHistogram(&b, "By account", s.ByAccount)
	writeHistogram(&b, "By type", s.ByType)
	return b.String()
}

func writeHistogram(b *strings.Builder, title string, h map[string]int) {
	if len(h) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range sortedKeys(h) {
		name := k
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(b, "  %-30s %d\n", name, h[k])
	}
}

func sortedKeys(h map[string]int) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if h[keys[i]] != h[keys[j]] {
			return h[keys[i]] > h[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
