package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/wsbridge/internal/id"
	"github.com/cleared-dev/wsbridge/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "date,account,payee,notes,amount,transfer_to,imported_id"

const (
	numFields     = 7
	dateFormat    = "2006-01-02"
	colDate       = 0
	colAccount    = 1
	colPayee      = 2
	colNotes      = 3
	colAmount     = 4
	colTransferTo = 5
	colImportedID = 6
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes txs including the header.
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendTransactions writes txs without a header.
func AppendTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts tx to a CSV row. Amounts are written in
// dollars with two decimals; an invalid amount is written empty.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = tx.Date
	row[colAccount] = tx.Account
	row[colPayee] = tx.Payee
	row[colNotes] = tx.Notes
	if tx.Amount.Valid {
		row[colAmount] = decimal.New(tx.Amount.Value, -2).StringFixed(2)
	}
	if tx.IsTransfer {
		row[colTransferTo] = tx.TransferToAccount
	}
	row[colImportedID] = id.Imported(tx)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. A non-empty
// transfer_to marks the row as a transfer. The imported_id column is
// derived data and is not read back.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	tx := model.Transaction{
		Date:              record[colDate],
		Account:           record[colAccount],
		Payee:             record[colPayee],
		Notes:             record[colNotes],
		TransferToAccount: record[colTransferTo],
		IsTransfer:        record[colTransferTo] != "",
	}

	if raw := record[colAmount]; raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
		if !d.Shift(2).IsInteger() {
			return model.Transaction{}, fmt.Errorf("amount %q has more than 2 decimal places", raw)
		}
		tx.Amount = model.NewCents(d.Shift(2).IntPart())
	}

	return tx, nil
}
