package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	_, err := m.LoadSeatsIOKey()
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveSeatsIOKey("abc=="))
	require.NoError(t, m.SaveResultsDSN("postgres://u:p@h/db"))

	key, err := m.LoadSeatsIOKey()
	require.NoError(t, err)
	assert.Equal(t, "abc==", key)

	dsn, err := m.LoadResultsDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", dsn)

	require.NoError(t, m.ClearAll())
	_, err = m.LoadResultsDSN()
	assert.ErrorIs(t, err, ErrNotFound)

	// clearing twice is fine
	require.NoError(t, m.ClearAll())
}
