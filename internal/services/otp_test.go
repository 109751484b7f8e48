package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeWidth(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(5)
		require.NoError(t, err)
		require.Len(t, code, 5)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestNormalizeCodeWidthInvariant(t *testing.T) {
	// "42" and "00042" are the same code at width 5.
	assert.Equal(t, normalizeCode("00042", 5), normalizeCode("42", 5))
	assert.NotEqual(t, normalizeCode("00042", 5), normalizeCode("43", 5))
}

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"00042", "00042"},
		{"42", "00042"},
		{"4 2", "00042"},
		{"042-", "00042"},
		{"0", "00000"},
		{"", "00000"},
		{"123456", "123456"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeCode(tc.in, 5), "input %q", tc.in)
	}
}
