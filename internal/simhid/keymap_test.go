package simhid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microsoft/mu-hid-go/internal/simhid"
)

func TestKeyForRune(t *testing.T) {
	u, mods, ok := simhid.KeyForRune('a')
	require.True(t, ok)
	require.Equal(t, uint8(0x04), u)
	require.Equal(t, uint8(0), mods)

	u, mods, ok = simhid.KeyForRune('A')
	require.True(t, ok)
	require.Equal(t, uint8(0x04), u)
	require.Equal(t, simhid.ModLeftShift, mods)

	u, mods, ok = simhid.KeyForRune('!')
	require.True(t, ok)
	require.Equal(t, uint8(0x1E), u)
	require.Equal(t, simhid.ModLeftShift, mods)

	_, _, ok = simhid.KeyForRune('é')
	require.False(t, ok)
}
