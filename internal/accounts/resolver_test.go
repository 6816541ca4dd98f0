package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/wsbridge/internal/model"
)

func newResolver(t *testing.T, pairs ...string) *Resolver {
	t.Helper()
	require.Zero(t, len(pairs)%2)
	var mappings []model.AccountMapping
	for i := 0; i < len(pairs); i += 2 {
		mappings = append(mappings, model.AccountMapping{WSAccountName: pairs[i], ActualAccountID: pairs[i+1]})
	}
	r, err := NewResolver(mappings)
	require.NoError(t, err)
	return r
}

func TestCompile_Kind(t *testing.T) {
	tests := []struct {
		source string
		want   Kind
	}{
		{"Chequing", Exact},
		{"Cash account", Exact},
		{"Self-directed", Exact},
		{"TFSA.*", Regex},
		{"RRSP|RSP", Regex},
		{"Crypto (BTC)", Regex},
		{"^Cash$", Regex},
	}
	for _, tt := range tests {
		p, err := Compile(model.AccountMapping{WSAccountName: tt.source, ActualAccountID: "x"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Kind, "source %q", tt.source)
	}
}

func TestCompile_BadRegex(t *testing.T) {
	_, err := Compile(model.AccountMapping{WSAccountName: "TFSA(", ActualAccountID: "x"})
	assert.Error(t, err)

	_, err = NewResolver([]model.AccountMapping{{WSAccountName: "[", ActualAccountID: "x"}})
	assert.Error(t, err)
}

func TestResolve_Exact(t *testing.T) {
	r := newResolver(t, "Chequing", "acct-1")

	id, ok := r.Resolve("chequing")
	require.True(t, ok)
	assert.Equal(t, "acct-1", id)

	_, ok = r.Resolve("Chequing 2")
	assert.False(t, ok)
	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestResolve_RegexIsAnchored(t *testing.T) {
	r := newResolver(t, "TFSA.*", "acct-tfsa", "RRSP|Spousal RRSP", "acct-rrsp")

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"TFSA", "acct-tfsa", true},
		{"tfsa self-directed", "acct-tfsa", true},
		{"My TFSA", "", false},
		{"rrsp", "acct-rrsp", true},
		{"Spousal RRSP", "acct-rrsp", true},
		{"RRSP extra", "", false},
	}
	for _, tt := range tests {
		id, ok := r.Resolve(tt.name)
		assert.Equal(t, tt.ok, ok, "name %q", tt.name)
		assert.Equal(t, tt.want, id, "name %q", tt.name)
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	r := newResolver(t,
		"Cash.*", "acct-first",
		"Cash", "acct-second",
		".*", "acct-catchall",
	)

	for _, name := range []string{"Cash", "cash", "Cash USD"} {
		id, ok := r.Resolve(name)
		require.True(t, ok)
		assert.Equal(t, "acct-first", id, "name %q", name)
	}

	id, ok := r.Resolve("Anything")
	require.True(t, ok)
	assert.Equal(t, "acct-catchall", id)
}

func TestResolver_IsMappedAndPatterns(t *testing.T) {
	r := newResolver(t, "Chequing", "acct-1", "TFSA.*", "acct-2")

	assert.True(t, r.IsMapped("CHEQUING"))
	assert.False(t, r.IsMapped("Savings"))
	assert.Equal(t, 2, r.Len())

	ps := r.Patterns()
	require.Len(t, ps, 2)
	assert.Equal(t, "Chequing", ps[0].Source)
	assert.Equal(t, Regex, ps[1].Kind)
	assert.Equal(t, "regex", ps[1].Kind.String())
}

func TestResolver_Nil(t *testing.T) {
	var r *Resolver
	assert.False(t, r.IsMapped("x"))
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Patterns())
}
