package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIdentifier_RoundTrip(t *testing.T) {
	iban := "FR3312739000308258528819Q90"

	hash, err := HashIdentifier(iban)
	require.NoError(t, err)

	assert.NotEqual(t, iban, hash)
	assert.True(t, VerifyIdentifier(hash, iban))
	assert.False(t, VerifyIdentifier(hash, "FR7616958000017809448907587"))
}

func TestHashIdentifier_Salted(t *testing.T) {
	first, err := HashIdentifier("FR7616958000017809448907587")
	require.NoError(t, err)
	second, err := HashIdentifier("FR7616958000017809448907587")
	require.NoError(t, err)

	// Same plaintext, different salts, different hashes; both still verify.
	assert.NotEqual(t, first, second)
	assert.True(t, VerifyIdentifier(first, "FR7616958000017809448907587"))
	assert.True(t, VerifyIdentifier(second, "FR7616958000017809448907587"))
}

func TestVerifyIdentifier_MalformedHash(t *testing.T) {
	tests := []string{
		"",
		"not-a-hash",
		"$2a$zz$garbage",
	}
	for _, hash := range tests {
		assert.False(t, VerifyIdentifier(hash, "FR3312739000308258528819Q90"), "hash: %q", hash)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher("test-app-key")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("0.20")
	require.NoError(t, err)
	assert.NotEqual(t, "0.20", encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "0.20", decrypted)
}

func TestCipher_OutputNotDeterministic(t *testing.T) {
	c, err := NewCipher("test-app-key")
	require.NoError(t, err)

	first, err := c.Encrypt("target-account-id")
	require.NoError(t, err)
	second, err := c.Encrypt("target-account-id")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipher_DecryptErrors(t *testing.T) {
	c, err := NewCipher("test-app-key")
	require.NoError(t, err)

	_, err = c.Decrypt("not base64!!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestCipher_WrongKey(t *testing.T) {
	first, err := NewCipher("key-one")
	require.NoError(t, err)
	second, err := NewCipher("key-two")
	require.NoError(t, err)

	encrypted, err := first.Encrypt("secret value")
	require.NoError(t, err)

	_, err = second.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestNewCipher_EmptyKey(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
