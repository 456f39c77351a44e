package ports

import (
	"context"
	"testing"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSceneStoreContract runs a suite of tests to verify that a SceneStore
// implementation adheres to the interface contract. The store must be empty.
func RunSceneStoreContract(t *testing.T, store SceneStore) {
	ctx := context.Background()

	t.Run("Latest Before Publish", func(t *testing.T) {
		_, err := store.Latest(ctx)
		assert.ErrorIs(t, err, domain.ErrNoScene)
	})

	t.Run("Publish and Latest", func(t *testing.T) {
		scene := domain.Scene{
			Frame:   3,
			Hero:    domain.Entity{ID: 1, Kind: domain.KindHero, X: 400, Y: 570},
			Enemies: []domain.Entity{{ID: 2, Kind: domain.KindEnemy, X: 10, Y: 40}},
			Shots:   []domain.Entity{},
			Score:   5,
		}
		require.NoError(t, store.Publish(ctx, scene))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), got.Frame)
		assert.Equal(t, scene.Hero, got.Hero)
		assert.Equal(t, scene.Enemies, got.Enemies)
		assert.Equal(t, 5, got.Score)
	})

	t.Run("Latest Wins", func(t *testing.T) {
		require.NoError(t, store.Publish(ctx, domain.Scene{Frame: 10}))
		require.NoError(t, store.Publish(ctx, domain.Scene{Frame: 11}))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(11), got.Frame)
	})

	t.Run("Returned Scene Is Isolated", func(t *testing.T) {
		require.NoError(t, store.Publish(ctx, domain.Scene{
			Frame:   12,
			Enemies: []domain.Entity{{ID: 9, Y: 1}},
		}))
		got, err := store.Latest(ctx)
		require.NoError(t, err)
		got.Enemies[0].Y = 999

		again, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, again.Enemies[0].Y)
	})
}
