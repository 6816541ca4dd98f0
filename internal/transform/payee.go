package transform

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

var (
	// "Transfer to Savings", "Payment from ACME Corp"
	counterpartyPattern = regexp.MustCompile(`(?i)^(?:transfer|payment)\s+(?:to|from)\s+(.+)$`)
	// "AMAZON.CA *1234", "Visa ****4242", "STORE 004512"
	maskedSuffixPattern = regexp.MustCompile(`(?i)^(.+?)\s+(?:[#*•x]+\s*\d{2,}|\d{3,})$`)
	// "Uber Eats on 03/14"
	onDatePattern = regexp.MustCompile(`(?i)^(.+?)\s+on\s+\d{1,2}/\d{1,2}$`)

	payeePatterns = []*regexp.Regexp{counterpartyPattern, maskedSuffixPattern, onDatePattern}

	payeeDisallowed = regexp.MustCompile(`[^\w\-&.' ]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

const maxPayeeLen = 100

var typeLabels = []struct {
	keyword string
	label   string
}{
	{"deposit", "Deposit"},
	{"withdrawal", "Withdrawal"},
	{"transfer", "Transfer"},
	{"dividend", "Dividend"},
	{"interest", "Interest"},
	{"fee", "Fee"},
	{"refund", "Refund"},
	{"purchase", "Purchase"},
	{"payment", "Payment"},
	{"referral", "Referral"},
	{"bonus", "Bonus"},
	{"cash back", "Cash back"},
	{"cashback", "Cash back"},
	{"reimbursement", "Reimbursement"},
}

// Platform credits reported under these payees are folded into the brand.
var brandFolded = map[string]bool{
	"Referral":      true,
	"Interest":      true,
	"Bonus":         true,
	"Cash back":     true,
	"Reimbursement": true,
}

func synthesizePayee(rec model.Record, brand string) string {
	payee := ""
	if rec.Description != "" {
		payee = cleanPayee(extractPayee(rec.Description))
	}
	if payee == "" {
		payee = typeLabel(rec.Type)
	}
	if brandFolded[payee] {
		return brand
	}
	return payee
}

func extractPayee(desc string) string {
	for _, re := range payeePatterns {
		if m := re.FindStringSubmatch(desc); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return desc
}

func cleanPayee(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = payeeDisallowed.ReplaceAllString(s, "")
	if r := []rune(s); len(r) > maxPayeeLen {
		s = string(r[:maxPayeeLen])
	}
	return strings.TrimSpace(s)
}

func typeLabel(typ string) string {
	t := strings.ToLower(typ)
	for _, tl := range typeLabels {
		if strings.Contains(t, tl.keyword) {
			return tl.label
		}
	}
	return "Unknown"
}
