package journal

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/wsbridge/internal/id"
	"github.com/cleared-dev/wsbridge/internal/model"
)

func tx(date, account, payee, notes string, cents int64) model.Transaction {
	return model.Transaction{
		Date:    date,
		Account: account,
		Payee:   payee,
		Notes:   notes,
		Amount:  model.NewCents(cents),
	}
}

func TestRoundTrip(t *testing.T) {
	transfer := tx("2024-02-01", "Chequing", "Transfer", "Chequing -> TFSA", -50000)
	transfer.IsTransfer = true
	transfer.TransferToAccount = "TFSA"

	txs := []model.Transaction{
		tx("2024-01-15", "Chequing", "Salary deposit", "deposit [t1]", 10050),
		tx("2024-01-16", "Chequing", "Tim Hortons", "", -275),
		transfer,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, txs, got)
}

func TestMarshalTransaction(t *testing.T) {
	in := tx("2024-01-15", "Chequing", "Salary deposit", "deposit [t1]", 10050)
	row := MarshalTransaction(in)

	require.Len(t, row, numFields)
	assert.Equal(t, "100.50", row[colAmount])
	assert.Equal(t, "", row[colTransferTo])
	assert.Equal(t, id.Imported(in), row[colImportedID])

	row = MarshalTransaction(tx("2024-01-15", "Chequing", "Fee", "", -5))
	assert.Equal(t, "-0.05", row[colAmount])
}

func TestInvalidAmountRoundTrip(t *testing.T) {
	in := model.Transaction{Date: "2024-01-15", Account: "Chequing", Payee: "Broken"}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{in}))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Amount.Valid)
}

func TestSpecialCharactersInNotes(t *testing.T) {
	in := tx("2024-01-15", "Chequing", `Joe's "Bar", Grill`, "line one\nline two", -1234)

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{in}))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.Payee, got[0].Payee)
	assert.Equal(t, in.Notes, got[0].Notes)
}

func TestAppendTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{tx("2024-01-01", "A", "P", "", 1)}))
	require.NoError(t, AppendTransactions(&buf, []model.Transaction{tx("2024-01-02", "A", "Q", "", 2)}))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Q", got[1].Payee)
	assert.Equal(t, 1, strings.Count(buf.String(), Header))
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadTransactions_HeaderOnly(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{"short row", []string{"2024-01-01", "A"}},
		{"bad amount", []string{"2024-01-01", "A", "P", "", "ten", "", ""}},
		{"sub-cent amount", []string{"2024-01-01", "A", "P", "", "1.005", "", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTransaction(tt.row)
			assert.Error(t, err)
		})
	}
}

func TestReadTransactions_ReportsRow(t *testing.T) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	require.NoError(t, cw.Write(strings.Split(Header, ",")))
	require.NoError(t, cw.Write([]string{"2024-01-01", "A", "P", "", "1.00", "", ""}))
	require.NoError(t, cw.Write([]string{"2024-01-01", "A", "P", "", "x", "", ""}))
	cw.Flush()

	_, err := ReadTransactions(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
