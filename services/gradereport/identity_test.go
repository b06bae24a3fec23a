package gradereport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveIdentity(t *testing.T) {
	identity, found := ResolveIdentity(samplePage)
	require.True(t, found)
	require.Equal(t, "1X23B044", identity.Raw)
	require.Equal(t, "1X", identity.Prefix)
	require.Equal(t, "23", identity.Year)
	require.Equal(t, "B", identity.Department)
}

func TestResolveIdentityNotFound(t *testing.T) {
	identity, found := ResolveIdentity("<html><body>no id here</body></html>")
	require.False(t, found)
	require.Equal(t, UnknownID, identity.Raw)
}

func TestCheckEligibility(t *testing.T) {
	rules := DefaultRules()

	resolve := func(id string) Identity {
		identity, found := ResolveIdentity(id)
		require.True(t, found)
		return identity
	}

	require.NoError(t, resolve("1X23B044").CheckEligibility(rules))
	require.NoError(t, resolve("1X24B001").CheckEligibility(rules))

	require.ErrorIs(t, resolve("1A23B044").CheckEligibility(rules), ErrWrongCohort)
	require.ErrorIs(t, resolve("1X23C044").CheckEligibility(rules), ErrWrongCohort)
	require.ErrorIs(t, resolve("1X25B044").CheckEligibility(rules), ErrWrongYear)

	// an unresolved id passes the gate, the report just lands on the
	// shared bucket
	unknown, found := ResolveIdentity("nothing")
	require.False(t, found)
	require.NoError(t, unknown.CheckEligibility(rules))
}

func TestHashID(t *testing.T) {
	// fixed vectors, rows in production databases are keyed this way
	require.Equal(
		t,
		"9a6ca18221ab8b25bc550004caeb240ca8fd25d99691ca654b0c6d02436da805",
		HashID("1X23B044"),
	)
	require.Equal(
		t,
		"1c49881a7f2c94f587ad102fb3dc0e2e96f4df3e7ff8d36262b7d43fd78cb82e",
		HashID(UnknownID),
	)
}
