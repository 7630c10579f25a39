package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":              true,
		"organizer@club.es":    true,
		"first.last@sub.co.uk": true,
		"":                     false,
		"no-at-sign.com":       false,
		"a b@c.com":            false,
		"@b.com":               false,
	}
	for email, want := range cases {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com "))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("masculino-a"))
	assert.True(t, IsValidSlug("sub-18-femenino"))
	assert.False(t, IsValidSlug("Masculino"))
	assert.False(t, IsValidSlug("-lead"))
	assert.False(t, IsValidSlug("double--dash"))
	assert.False(t, IsValidSlug(""))
}

func TestHashCode(t *testing.T) {
	hash, err := HashCode("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckCodeHash("123456", hash))
	assert.False(t, CheckCodeHash("654321", hash))
}

func TestTrimToNil(t *testing.T) {
	assert.Nil(t, TrimToNil(nil))
	blank := "   "
	assert.Nil(t, TrimToNil(&blank))
	v := " x "
	require.NotNil(t, TrimToNil(&v))
	assert.Equal(t, "x", *TrimToNil(&v))
}

func TestNewValidatorUsesJSONNames(t *testing.T) {
	type input struct {
		Slug string `json:"slug" validate:"slug"`
	}
	err := NewValidator().Struct(input{Slug: "Not A Slug"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'slug'")
}
