package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userDomain "github.com/ridecab/service-ride/internal/domain/user"
	"github.com/ridecab/service-ride/internal/platform/apperror"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u, err := userDomain.NewUser("demo@test.com", "Demo User", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	got, err := repo.FindByEmail(ctx, " DEMO@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())

	got, err = repo.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "Demo User", got.Name())

	dup, _ := userDomain.NewUser("demo@test.com", "Other", "hash")
	err = repo.Save(ctx, dup)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = repo.FindByEmail(ctx, "nobody@test.com")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
