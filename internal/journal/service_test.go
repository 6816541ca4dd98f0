package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/wsbridge/internal/model"
)

func TestAppend_NewMonth(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	n, err := store.Append([]model.Transaction{
		tx("2024-01-15", "Chequing", "Salary", "deposit [t1]", 10050),
		tx("2024-01-20", "Chequing", "Rent", "", -150000),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = os.Stat(filepath.Join(dir, "2024", "01", "transactions.csv"))
	require.NoError(t, err)

	got, err := store.ReadMonth(2024, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Rent", got[1].Payee)
}

func TestAppend_SkipsDuplicates(t *testing.T) {
	store := NewStore(t.TempDir())
	salary := tx("2024-01-15", "Chequing", "Salary", "deposit [t1]", 10050)

	n, err := store.Append([]model.Transaction{salary, salary})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Append([]model.Transaction{salary, tx("2024-01-16", "Chequing", "Coffee", "", -300)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.ReadMonth(2024, 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAppend_SplitsByMonth(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	n, err := store.Append([]model.Transaction{
		tx("2024-02-01", "Chequing", "B", "", 2),
		tx("2024-01-31", "Chequing", "A", "", 1),
		tx("2023-12-31", "Chequing", "Z", "", 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, p := range []string{"2023/12", "2024/01", "2024/02"} {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p), "transactions.csv"))
		assert.NoError(t, err, p)
	}

	all, err := store.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Z", "A", "B"}, []string{all[0].Payee, all[1].Payee, all[2].Payee})
}

func TestAppend_ValidationFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Append([]model.Transaction{
		tx("2024-01-15", "Chequing", "Good", "", 1),
		tx("", "Chequing", "Bad", "", 2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	all, err := store.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReadMonth_NonExistent(t *testing.T) {
	got, err := NewStore(t.TempDir()).ReadMonth(2030, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
