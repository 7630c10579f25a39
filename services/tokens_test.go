package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected symbol %q", r)
		}
	}
}

func TestGenerateInvitationToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		token, err := GenerateInvitationToken()
		require.NoError(t, err)
		require.Len(t, token, 32)
		for _, r := range token {
			assert.True(t, strings.ContainsRune(alphanumericAlphabet, r), "unexpected symbol %q", r)
		}
		_, dup := seen[token]
		require.False(t, dup, "token repeated")
		seen[token] = struct{}{}
	}
}

func TestRandomStringCoversAlphabet(t *testing.T) {
	// 2000 символов из 10 цифр: вероятность пропустить цифру пренебрежимо мала
	s, err := randomString(2000, digitAlphabet)
	require.NoError(t, err)
	for _, d := range digitAlphabet {
		assert.Contains(t, s, string(d))
	}
}
