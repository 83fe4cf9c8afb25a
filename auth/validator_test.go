package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRegister(t *testing.T) {
	valid := RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "ComplexPass123!",
	}

	t.Run("should accept a valid request", func(t *testing.T) {
		require.NoError(t, ValidateRegister(valid))
	})

	t.Run("should reject a malformed email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		require.Error(t, ValidateRegister(req))
	})

	t.Run("should reject a short username", func(t *testing.T) {
		req := valid
		req.Username = "ab"
		require.Error(t, ValidateRegister(req))
	})

	t.Run("should reject a short password", func(t *testing.T) {
		req := valid
		req.Password = "Short1!"
		require.Error(t, ValidateRegister(req))
	})

	t.Run("should reject a password without the full character mix", func(t *testing.T) {
		for _, password := range []string{
			"alllowercase1!",
			"ALLUPPERCASE1!",
			"NoDigitsAtAll!",
			"NoSpecials1234",
		} {
			req := valid
			req.Password = password
			require.Error(t, ValidateRegister(req), password)
		}
	})
}

func TestPasswordHash_Round_Trip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("ComplexPass123!")
	req.NoError(err)
	req.NotContains(hash, "ComplexPass123!")

	match, err := ComparePassword("ComplexPass123!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPass123!", hash)
	req.NoError(err)
	req.False(match)
}
