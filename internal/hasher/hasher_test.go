package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test(t *testing.T) {
	t.Run("The base hasher package test", func(t *testing.T) {
		hash, err := Hash("secret")
		require.NoError(t, err, "The `Hash()` should not return error")
		require.NotEmpty(t, hash)
		assert.NotEqual(t, "secret", hash, "The hash should not retain the plaintext")

		err = Verify(hash, "secret")
		assert.NoError(t, err, "The `Verify()` should accept the original password")

		err = Verify(hash, "wrong")
		assert.Error(t, err, "The `Verify()` should reject a wrong password")
	})

	t.Run("Two hashes of the same password differ", func(t *testing.T) {
		first, err := Hash("secret")
		require.NoError(t, err)
		second, err := Hash("secret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "bcrypt salts should make the hashes distinct")
	})
}
