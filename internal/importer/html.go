package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// Selectors locate the parts of an activity block in a saved page.
// Row, Label, Value, Description and Subheading are relative to Block.
type Selectors struct {
	Block       string `yaml:"block"`
	Row         string `yaml:"row"`
	Label       string `yaml:"label"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
	Subheading  string `yaml:"subheading"`
}

// DefaultSelectors match the expanded activity detail markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Block:       "[data-activity-block]",
		Row:         "dl > div",
		Label:       "dt",
		Value:       "dd",
		Description: "h3",
		Subheading:  "em",
	}
}

// withDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&s.Block, d.Block},
		{&s.Row, d.Row},
		{&s.Label, d.Label},
		{&s.Value, d.Value},
		{&s.Description, d.Description},
		{&s.Subheading, d.Subheading},
	} {
		if strings.TrimSpace(*f.dst) == "" {
			*f.dst = f.def
		}
	}
	return s
}

// HTMLReader extracts blocks from a saved activity page.
type HTMLReader struct {
	sel Selectors
}

// NewHTMLReader returns a reader using sel; empty selectors take defaults.
func NewHTMLReader(sel Selectors) *HTMLReader {
	return &HTMLReader{sel: sel.withDefaults()}
}

// Format returns the reader name.
func (*HTMLReader) Format() string { return "html" }

// Read parses the page. Rows without a label are skipped; a row without a
// value element yields an empty value.
func (h *HTMLReader) Read(r io.Reader) ([]model.Block, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var blocks []model.Block
	doc.Find(h.sel.Block).Each(func(_ int, s *goquery.Selection) {
		b := model.Block{
			Description: firstText(s, h.sel.Description),
			Subheading:  firstText(s, h.sel.Subheading),
		}
		s.Find(h.sel.Row).Each(func(_ int, row *goquery.Selection) {
			name := firstText(row, h.sel.Label)
			if name == "" {
				return
			}
			b.Fields = append(b.Fields, model.RawField{Name: name, Value: firstText(row, h.sel.Value)})
		})
		blocks = append(blocks, b)
	})
	return blocks, nil
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
