package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/id"
	"github.com/cleared-dev/wsbridge/internal/model"
)

const fileName = "transactions.csv"

// Store archives canonical transactions as one CSV file per month under
// root/YYYY/MM/transactions.csv.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Append validates txs and appends the ones not already archived, keyed by
// imported ID. It writes nothing if any transaction is invalid, and returns
// how many rows were added.
func (s *Store) Append(txs []model.Transaction) (int, error) {
	byMonth := make(map[string][]model.Transaction)
	var months []string
	for _, tx := range txs {
		if res := Validate(tx); !res.IsValid {
			return 0, fmt.Errorf("validation failed for %q on %q: %s", tx.Payee, tx.Date, res.Error())
		}
		m := tx.Date[:7]
		if _, seen := byMonth[m]; !seen {
			months = append(months, m)
		}
		byMonth[m] = append(byMonth[m], tx)
	}

	added := 0
	for _, m := range months {
		n, err := s.appendMonth(m, byMonth[m])
		if err != nil {
			return added, err
		}
		added += n
	}
	return added, nil
}

func (s *Store) appendMonth(month string, txs []model.Transaction) (int, error) {
	existing, err := s.readFile(s.monthPath(month))
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing)+len(txs))
	for _, tx := range existing {
		seen[id.Imported(tx)] = true
	}

	var fresh []model.Transaction
	for _, tx := range txs {
		key := id.Imported(tx)
		if seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, tx)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	path := s.monthPath(month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating archive dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return 0, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTransactions(f, fresh); err != nil {
		return 0, fmt.Errorf("appending transactions: %w", err)
	}
	return len(fresh), nil
}

// ReadMonth reads all archived transactions for year/month.
func (s *Store) ReadMonth(year, month int) ([]model.Transaction, error) {
	return s.readFile(s.monthPath(fmt.Sprintf("%04d-%02d", year, month)))
}

// ReadAll reads every archived month in chronological order.
func (s *Store) ReadAll() ([]model.Transaction, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", fileName))
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	sort.Strings(paths)

	var all []model.Transaction
	for _, p := range paths {
		txs, err := s.readFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}

func (s *Store) readFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}
	return txs, nil
}

// monthPath maps "YYYY-MM" to its file.
func (s *Store) monthPath(month string) string {
	year, mm, _ := strings.Cut(month, "-")
	return filepath.Join(s.root, year, mm, fileName)
}
