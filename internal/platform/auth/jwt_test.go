package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", 24*time.Hour)

	token, err := m.Generate("demo@test.com", "Demo User")
	require.NoError(t, err)

	claims, err := m.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "demo@test.com", claims.Email)
	assert.Equal(t, "Demo User", claims.Name)

	claims, err = m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "demo@test.com", claims.Email)
}

func TestValidateExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour).WithClock(func() time.Time { return issued })

	token, err := m.Generate("demo@test.com", "Demo User")
	require.NoError(t, err)

	m.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Generate("a@b.c", "A")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewJWTManager("two", time.Hour).Validate("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
