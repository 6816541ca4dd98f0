package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/model"
)

func fields(pairs ...string) []model.RawField {
	var out []model.RawField
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.RawField{Name: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func TestAssemble_Empty(t *testing.T) {
	rec, warns := Assemble(model.Block{})
	assert.Nil(t, rec)
	assert.Empty(t, warns)

	rec, _ = Assemble(model.Block{
		Fields:      fields("Reward tier", "Gold"),
		Description: "ignored without fields",
	})
	assert.Nil(t, rec)
}

func TestAssemble_MergesInOrder(t *testing.T) {
	rec, warns := Assemble(model.Block{
		Fields: fields(
			"Account", "Chequing",
			"Status", "Pending",
			"Amount", "$10.00",
			"Status", "Completed",
			"Date", "January 15, 2024",
		),
		Description: "Coffee Shop",
		Subheading:  "Purchase",
	})
	require.NotNil(t, rec)
	assert.Empty(t, warns)
	assert.Equal(t, "Chequing", rec.Account)
	assert.Equal(t, "Completed", rec.Status)
	assert.Equal(t, "2024-01-15", rec.Date)
	assert.Equal(t, "Coffee Shop", rec.Description)
	assert.Equal(t, "Purchase", rec.Subheading)
	assert.Equal(t, "Purchase", rec.Type)
}

func TestAssemble_TypeWins(t *testing.T) {
	rec, _ := Assemble(model.Block{
		Fields:     fields("Type", "Deposit"),
		Subheading: "Direct deposit",
	})
	require.NotNil(t, rec)
	assert.Equal(t, "Deposit", rec.Type)
	assert.Equal(t, "Direct deposit", rec.Subheading)
}

func TestAssemble_InfersAccountFromTransfer(t *testing.T) {
	rec, _ := Assemble(model.Block{
		Fields: fields("From", "Chequing", "To", "TFSA", "Amount", "−$500.00"),
	})
	require.NotNil(t, rec)
	assert.Equal(t, "Chequing", rec.Account)

	rec, _ = Assemble(model.Block{
		Fields: fields("From", "Chequing", "To", "TFSA", "Amount", "$500.00"),
	})
	require.NotNil(t, rec)
	assert.Equal(t, "TFSA", rec.Account)

	// An unreadable amount is not negative.
	rec, _ = Assemble(model.Block{
		Fields: fields("From", "Chequing", "To", "TFSA", "Amount", "?"),
	})
	require.NotNil(t, rec)
	assert.Equal(t, "TFSA", rec.Account)
}

func TestAssemble_ExplicitAccountKept(t *testing.T) {
	rec, _ := Assemble(model.Block{
		Fields: fields("Account", "Cash", "From", "Chequing", "To", "TFSA", "Amount", "-$5.00"),
	})
	require.NotNil(t, rec)
	assert.Equal(t, "Cash", rec.Account)
}

func TestAssemble_CollectsWarnings(t *testing.T) {
	rec, warns := Assemble(model.Block{
		Fields: fields("Date", "someday", "Amount", "lots"),
	})
	require.NotNil(t, rec)
	assert.True(t, warns.Has(diag.CodeBadDate))
	assert.True(t, warns.Has(diag.CodeBadAmount))
	assert.False(t, rec.Amount.Valid)
}

func TestAssembleAll_SkipsEmpty(t *testing.T) {
	recs, _ := New().AssembleAll([]model.Block{
		{Fields: fields("Type", "Deposit")},
		{},
		{Fields: fields("Type", "Fee")},
	})
	require.Len(t, recs, 2)
	assert.Equal(t, "Deposit", recs[0].Type)
	assert.Equal(t, "Fee", recs[1].Type)
}
