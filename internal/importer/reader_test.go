package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/wsbridge/internal/model"
)

func TestJSONReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Block
	}{
		{"empty", "  ", nil},
		{"empty array", "[]", []model.Block{}},
		{
			"array",
			`[{"fields":[{"name":"Type","value":"Deposit"},{"name":"Message","value":null}],"description":"Salary","subheading":"Deposit"}]`,
			[]model.Block{{
				Fields:      []model.RawField{{Name: "Type", Value: "Deposit"}, {Name: "Message"}},
				Description: "Salary",
				Subheading:  "Deposit",
			}},
		},
		{
			"wrapped",
			`{"capturedAt":"2024-01-20","blocks":[{"fields":[],"description":"Fee"}]}`,
			[]model.Block{{Fields: []model.RawField{}, Description: "Fee"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&JSONReader{}).Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONReader_Malformed(t *testing.T) {
	for _, input := range []string{"[", `{"blocks": "x"}`, "nope"} {
		_, err := (&JSONReader{}).Read(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestHTMLReader_Testdata(t *testing.T) {
	f, err := os.Open("testdata/activity.html")
	require.NoError(t, err)
	defer f.Close()

	blocks, err := NewHTMLReader(Selectors{}).Read(f)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, model.Block{
		Description: "Salary deposit",
		Subheading:  "Deposit",
		Fields: []model.RawField{
			{Name: "Account", Value: "Chequing"},
			{Name: "Date", Value: "January 15, 2024 9:30 AM"},
			{Name: "Amount", Value: "+ $100.50 CAD"},
			{Name: "Transaction ID", Value: "t1"},
		},
	}, blocks[0])

	second := blocks[1]
	assert.Equal(t, "Transfer to TFSA", second.Description)
	require.Len(t, second.Fields, 5)
	assert.Equal(t, model.RawField{Name: "Amount", Value: "\u2212 $500.00"}, second.Fields[3])
	assert.Equal(t, model.RawField{Name: "Message", Value: ""}, second.Fields[4])
}

func TestHTMLReader_CustomSelectors(t *testing.T) {
	page := `<table>
<tbody class="tx"><tr class="title"><td>Coffee</td></tr>
<tr class="kv"><th>Amount</th><td>$4.50</td></tr></tbody>
</table>`
	rd := NewHTMLReader(Selectors{Block: "tbody.tx", Row: "tr.kv", Label: "th", Value: "td", Description: "tr.title td"})

	blocks, err := rd.Read(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Coffee", blocks[0].Description)
	assert.Empty(t, blocks[0].Subheading)
	assert.Equal(t, []model.RawField{{Name: "Amount", Value: "$4.50"}}, blocks[0].Fields)
}

func TestHTMLReader_NoBlocks(t *testing.T) {
	blocks, err := NewHTMLReader(Selectors{}).Read(strings.NewReader("<p>nothing here</p>"))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestSelectors_WithDefaults(t *testing.T) {
	got := Selectors{Block: ".b"}.withDefaults()
	want := DefaultSelectors()
	want.Block = ".b"
	assert.Equal(t, want, got)
}
