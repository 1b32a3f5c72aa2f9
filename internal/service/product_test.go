package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-api/internal/apperr"
	"github.com/tuanvumaihuynh/product-api/internal/model"
	"github.com/tuanvumaihuynh/product-api/internal/repository"
	"github.com/tuanvumaihuynh/product-api/internal/service"
	"github.com/tuanvumaihuynh/product-api/pkg/ptr"
	"github.com/tuanvumaihuynh/product-api/pkg/validator"
	"github.com/tuanvumaihuynh/product-api/pkg/zerror"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, product model.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newService(t *testing.T) (service.ProductService, *mockProductRepository) {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	repo := &mockProductRepository{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	return service.NewProductService(repo, v), repo
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, zerror.StatusNotFound, zErr.Status())
	assert.Equal(t, apperr.ProductNotFoundErrorCode, zErr.Code())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

var stored = model.Product{ID: "p-1", Name: "Pen", Price: 1.5}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the stored product", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", ctx, "p-1").Return(stored, nil)

		product, err := svc.GetProduct(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, stored, product)
	})

	t.Run("Should map a missing product to not found", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", ctx, "nope").Return(model.Product{}, repository.ErrProductNotFound)

		_, err := svc.GetProduct(ctx, "nope")
		assertNotFound(t, err)
	})

	t.Run("Should wrap other repository errors", func(t *testing.T) {
		svc, repo := newService(t)
		boom := errors.New("boom")
		repo.On("FindByID", ctx, "p-1").Return(model.Product{}, boom)

		_, err := svc.GetProduct(ctx, "p-1")
		assert.ErrorIs(t, err, boom)

		var zErr zerror.ZError
		assert.False(t, errors.As(err, &zErr))
	})
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should save a new product without id", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("Save", ctx, model.Product{Name: "Pen", Price: 0}).
			Return(model.Product{ID: "p-9", Name: "Pen", Price: 0}, nil)

		product, err := svc.CreateProduct(ctx, service.CreateProductParams{Name: ptr.New("Pen"), Price: ptr.New(0.0)})
		require.NoError(t, err)
		assert.Equal(t, "p-9", product.ID)
	})

	t.Run("Should reject missing and invalid fields", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateProduct(ctx, service.CreateProductParams{Name: ptr.New("  "), Price: ptr.New(-1.0)})

		var validationErrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Len(t, validationErrs, 2)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should keep the stored id and replace name and price", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "p-1").Return(stored, nil)
		repo.On("Save", ctx, model.Product{ID: "p-1", Name: "Pencil", Price: 2}).
			Return(model.Product{ID: "p-1", Name: "Pencil", Price: 2}, nil)

		product, err := svc.UpdateProduct(ctx, "p-1", func() (service.UpdateProductParams, error) {
			return service.UpdateProductParams{Name: ptr.New("Pencil"), Price: ptr.New(2.0)}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, model.Product{ID: "p-1", Name: "Pencil", Price: 2}, product)
	})

	t.Run("Should return not found for an unknown product", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repository.ErrProductNotFound)

		_, err := svc.UpdateProduct(ctx, "nope", func() (service.UpdateProductParams, error) {
			return service.UpdateProductParams{Name: ptr.New("Pencil"), Price: ptr.New(2.0)}, nil
		})
		assertNotFound(t, err)
	})

	t.Run("Should prefer not found over a bad body", func(t *testing.T) {
		for range 20 {
			svc, repo := newService(t)
			repo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repository.ErrProductNotFound).
				After(5 * time.Millisecond)

			_, err := svc.UpdateProduct(ctx, "nope", func() (service.UpdateProductParams, error) {
				return service.UpdateProductParams{}, errors.New("bad json")
			})
			assertNotFound(t, err)
		}
	})

	t.Run("Should surface decode errors", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "p-1").Return(stored, nil)
		decodeErr := errors.New("bad json")

		_, err := svc.UpdateProduct(ctx, "p-1", func() (service.UpdateProductParams, error) {
			return service.UpdateProductParams{}, decodeErr
		})
		assert.ErrorIs(t, err, decodeErr)
	})

	t.Run("Should require name and price", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "p-1").Return(stored, nil)

		_, err := svc.UpdateProduct(ctx, "p-1", func() (service.UpdateProductParams, error) {
			return service.UpdateProductParams{Price: ptr.New(2.0)}, nil
		})

		var validationErrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Equal(t, "name", validationErrs[0].Field())
	})
}

func TestProductService_PatchProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should only change the provided fields", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "p-1").Return(stored, nil)
		repo.On("Save", ctx, model.Product{ID: "p-1", Name: "Pen", Price: 9.99}).
			Return(model.Product{ID: "p-1", Name: "Pen", Price: 9.99}, nil)

		product, err := svc.PatchProduct(ctx, "p-1", func() (service.PatchProductParams, error) {
			return service.PatchProductParams{Price: ptr.New(9.99)}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, model.Product{ID: "p-1", Name: "Pen", Price: 9.99}, product)
	})

	t.Run("Should return not found for an unknown product", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repository.ErrProductNotFound)

		_, err := svc.PatchProduct(ctx, "nope", func() (service.PatchProductParams, error) {
			return service.PatchProductParams{Name: ptr.New("x")}, nil
		})
		assertNotFound(t, err)
	})

	t.Run("Should reject a negative price", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", mock.Anything, "p-1").Return(stored, nil)

		_, err := svc.PatchProduct(ctx, "p-1", func() (service.PatchProductParams, error) {
			return service.PatchProductParams{Price: ptr.New(-3.0)}, nil
		})

		var validationErrs govalidator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete the stored product", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", ctx, "p-1").Return(stored, nil)
		repo.On("Delete", ctx, stored).Return(nil)

		require.NoError(t, svc.DeleteProduct(ctx, "p-1"))
	})

	t.Run("Should return not found without deleting", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", ctx, "nope").Return(model.Product{}, repository.ErrProductNotFound)

		assertNotFound(t, svc.DeleteProduct(ctx, "nope"))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found when deleted concurrently", func(t *testing.T) {
		svc, repo := newService(t)
		repo.On("FindByID", ctx, "p-1").Return(stored, nil)
		repo.On("Delete", ctx, stored).Return(repository.ErrProductNotFound)

		assertNotFound(t, svc.DeleteProduct(ctx, "p-1"))
	})
}

func TestProductService_ListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	repo.On("FindAll", ctx).Return([]model.Product{stored}, nil).Once()
	repo.On("DeleteAll", ctx).Return(nil)
	repo.On("FindAll", ctx).Return([]model.Product{}, nil).Once()

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{stored}, products)

	require.NoError(t, svc.DeleteAllProducts(ctx))

	products, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
