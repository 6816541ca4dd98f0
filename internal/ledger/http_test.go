package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPConfig{
		BaseURL:  srv.URL + "/",
		APIKey:   "secret",
		BudgetID: "budget-1",
		Attempts: 3,
		Delay:    time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{BudgetID: "b"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewHTTPClient(HTTPConfig{BaseURL: "http://localhost"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestHTTPClient_ListAccounts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/budgets/budget-1/accounts", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		writeJSON(w, map[string]any{"data": []Account{
			{ID: "a1", Name: "Chequing"},
			{ID: "a2", Name: "Old", Closed: true},
		}})
	}))

	accts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "Chequing", accts[0].Name)
	assert.True(t, accts[1].Closed)
}

func TestHTTPClient_ListPayees(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/budgets/budget-1/payees", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"p1","name":"Chequing","transfer_acct":"a1"},{"id":"p2","name":"Coffee"}]}`))
	}))

	payees, err := c.ListPayees(context.Background())
	require.NoError(t, err)
	require.Len(t, payees, 2)
	assert.Equal(t, "a1", payees[0].TransferAcct)
	assert.Empty(t, payees[1].TransferAcct)
}

func TestHTTPClient_BatchImport(t *testing.T) {
	var got importRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/budgets/budget-1/accounts/a1/transactions/import", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{"data": ImportResult{Added: []string{"t1"}, Updated: []string{"t2"}}})
	}))

	records := []WireRecord{
		{Date: "2024-01-15", Amount: 10050, ImportedID: "ws_1", Cleared: true, PayeeName: "Salary"},
		{Date: "2024-01-16", Amount: -500, ImportedID: "ws_2", Cleared: true, Payee: "p2", Notes: "x"},
	}
	res, err := c.BatchImport(context.Background(), "a1", records)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, res.Added)
	assert.Equal(t, []string{"t2"}, res.Updated)
	assert.Equal(t, records, got.Transactions)
}

func TestWireRecord_JSONOmitsEmpty(t *testing.T) {
	b, err := json.Marshal(WireRecord{Date: "2024-01-15", Amount: -5, ImportedID: "ws_1", Cleared: true, PayeeName: "Fee"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-15","amount":-5,"imported_id":"ws_1","cleared":true,"payee_name":"Fee"}`, string(b))
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{"data": []Account{{ID: "a1"}}})
	}))

	accts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accts, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, map[string]any{"data": []Payee{}})
	}))

	_, err := c.ListPayees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))

	_, err := c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "bad key", se.Body)
}

func TestHTTPClient_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.BatchImport(context.Background(), "a1", nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_BadJSONNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":`))
	}))

	_, err := c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
	assert.Equal(t, int32(1), calls.Load())
}
