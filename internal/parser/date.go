package parser

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Tried in order; the second covers markup that drops the space before the time.
var dateLayouts = []string{
	"January 2, 2006 3:04 PM",
	"January 2, 20063:04 PM",
	"January 2, 2006",
}

var (
	spaceRun  = regexp.MustCompile(`\s+`)
	yearDigit = regexp.MustCompile(`(\d{4})(\d)`)
)

// ParseDate converts scraped date text to YYYY-MM-DD using the calendar
// fields as written, with no timezone shift. Empty input yields ("", true);
// unrecognized input yields ("", false). "today" and "yesterday" resolve
// against p.Now.
func (p *Parser) ParseDate(text string) (string, bool) {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return "", true
	}

	switch strings.ToLower(text) {
	case "today":
		return p.now().Format(isoDate), true
	case "yesterday":
		return p.now().AddDate(0, 0, -1).Format(isoDate), true
	}

	// AM/PM must be upper case for time.Parse; month names match in any case.
	text = strings.ToUpper(yearDigit.ReplaceAllString(text, "$1 $2"))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

func (p *Parser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
