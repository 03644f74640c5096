package cmd

import (
	"context"
	"testing"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository/memory"
	"car-rental/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository(zap.NewNop())

	require.NoError(t, Seed(ctx, repo, zap.NewNop()))

	owner, err := repo.User.FindByEmail(ctx, "owner@carrental.local")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, entity.RoleOwner, owner.Role)
	assert.True(t, utils.CheckPasswordHash(SeedPassword, owner.PasswordHash))

	cars, err := repo.Car.FindAll(ctx, entity.CarFilter{OwnerID: &owner.ID})
	require.NoError(t, err)
	assert.Len(t, cars, len(seedCars))
	for _, car := range cars {
		assert.True(t, car.CanBeBooked())
	}

	t.Run("second run changes nothing", func(t *testing.T) {
		require.NoError(t, Seed(ctx, repo, zap.NewNop()))

		users, err := repo.User.FindAll(ctx, entity.UserFilter{})
		require.NoError(t, err)
		assert.Len(t, users, 3)

		cars, err := repo.Car.FindAll(ctx, entity.CarFilter{})
		require.NoError(t, err)
		assert.Len(t, cars, len(seedCars))
	})
}
