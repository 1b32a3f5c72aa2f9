package repository_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-api/internal/model"
	"github.com/tuanvumaihuynh/product-api/internal/repository"
)

func newRedisRepo(t *testing.T) (repository.ProductRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return repository.NewRedisProductRepository(client, "products"), mr
}

func TestRedisProductRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Should assign an id to a new product", func(t *testing.T) {
		repo, mr := newRedisRepo(t)

		saved, err := repo.Save(ctx, model.Product{Name: "Pen", Price: 1.5})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "Pen", saved.Name)
		assert.Equal(t, 1.5, saved.Price)

		doc := mr.HGet("products", saved.ID)
		assert.JSONEq(t, `{"name":"Pen","price":1.5}`, doc)
	})

	t.Run("Should replace an existing product", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		saved, err := repo.Save(ctx, model.Product{Name: "Pen", Price: 1.5})
		require.NoError(t, err)

		updated, err := repo.Save(ctx, model.Product{ID: saved.ID, Name: "Pencil", Price: 0.5})
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, found)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestRedisProductRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return ErrProductNotFound for unknown id", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})

	t.Run("Should fail on a corrupt document", func(t *testing.T) {
		repo, mr := newRedisRepo(t)
		mr.HSet("products", "broken", "not json")

		_, err := repo.FindByID(ctx, "broken")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrProductNotFound)
	})
}

func TestRedisProductRepository_FindAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return an empty slice when there are no products", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("Should return products in creation order", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		var want []model.Product
		for _, name := range []string{"a", "b", "c"} {
			p, err := repo.Save(ctx, model.Product{Name: name, Price: 1})
			require.NoError(t, err)
			want = append(want, p)
		}

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, products)
	})
}

func TestRedisProductRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete an existing product", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		saved, err := repo.Save(ctx, model.Product{Name: "Pen", Price: 1})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, saved))

		_, err = repo.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})

	t.Run("Should return ErrProductNotFound when already gone", func(t *testing.T) {
		repo, _ := newRedisRepo(t)

		err := repo.Delete(ctx, model.Product{ID: "missing"})
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}

func TestRedisProductRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t)

	for range 3 {
		_, err := repo.Save(ctx, model.Product{Name: "x", Price: 1})
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteAll(ctx))
	assert.False(t, mr.Exists("products"))

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	require.NoError(t, repo.DeleteAll(ctx))
}
