package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantTimeEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "admin123", "admin123", true},
		{"both empty", "", "", true},
		{"differ in last byte", "admin123", "admin124", false},
		{"differ in first byte", "admin123", "bdmin123", false},
		{"length mismatch", "admin123", "admin1234", false},
		{"prefix", "admin", "admin123", false},
		{"case", "Admin123", "admin123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ConstantTimeEquals(tt.a, tt.b))
		})
	}
}

func TestComparers(t *testing.T) {
	comparers := map[string]SecretComparer{
		"plain":  PlainComparer{},
		"argon2": Argon2Comparer{},
	}

	for name, c := range comparers {
		t.Run(name, func(t *testing.T) {
			stored, err := c.Prepare("user123")
			require.NoError(t, err)

			require.True(t, c.Equal("user123", stored))
			require.False(t, c.Equal("user124", stored))
			require.False(t, c.Equal("", stored))
		})
	}
}

func TestArgon2Comparer_StoresHash(t *testing.T) {
	stored, err := Argon2Comparer{}.Prepare("user123")
	require.NoError(t, err)
	require.NotEqual(t, "user123", stored)

	// a plaintext stored value is not a valid hash and never matches
	require.False(t, Argon2Comparer{}.Equal("user123", "user123"))
}
