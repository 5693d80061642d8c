package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialService(t *testing.T) {
	svc := NewCredentialService()
	assert.NotNil(t, svc)
	assert.IsType(t, &credentialService{}, svc)
}

func TestCredentialService_GenerateSecret(t *testing.T) {
	svc := NewCredentialService()

	t.Run("Success_GenerateSecret", func(t *testing.T) {
		plainSecret, hashedSecret, err := svc.GenerateSecret()
		require.NoError(t, err)

		assert.NotEmpty(t, plainSecret)
		assert.NotEmpty(t, hashedSecret)
		assert.NotEqual(t, plainSecret, hashedSecret)

		// Plain secret is base64 URL-encoded 32 bytes
		decoded, err := base64.URLEncoding.DecodeString(plainSecret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)

		// Hash verifies against the plain secret
		assert.True(t, svc.CompareSecret(plainSecret, hashedSecret))
	})

	t.Run("Success_GenerateUniqueSecrets", func(t *testing.T) {
		plain1, hash1, err := svc.GenerateSecret()
		require.NoError(t, err)

		plain2, hash2, err := svc.GenerateSecret()
		require.NoError(t, err)

		assert.NotEqual(t, plain1, plain2)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCredentialService_CompareSecret(t *testing.T) {
	svc := NewCredentialService()

	plainSecret, hashedSecret, err := svc.GenerateSecret()
	require.NoError(t, err)

	t.Run("Success_MatchingSecret", func(t *testing.T) {
		assert.True(t, svc.CompareSecret(plainSecret, hashedSecret))
	})

	t.Run("Failure_WrongSecret", func(t *testing.T) {
		assert.False(t, svc.CompareSecret("wrong-secret", hashedSecret))
	})

	t.Run("Failure_MalformedHash", func(t *testing.T) {
		assert.False(t, svc.CompareSecret(plainSecret, "not-a-hash"))
	})
}

func TestCredentialService_HashSecret(t *testing.T) {
	svc := NewCredentialService()

	hash1, err := svc.HashSecret("my-secret")
	require.NoError(t, err)

	hash2, err := svc.HashSecret("my-secret")
	require.NoError(t, err)

	// Argon2id salts every hash; the same input must not produce the same hash
	assert.NotEqual(t, hash1, hash2)
	assert.True(t, svc.CompareSecret("my-secret", hash1))
	assert.True(t, svc.CompareSecret("my-secret", hash2))
}
