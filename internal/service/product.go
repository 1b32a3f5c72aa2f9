package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/product-api/internal/apperr"
	"github.com/tuanvumaihuynh/product-api/internal/model"
	"github.com/tuanvumaihuynh/product-api/internal/repository"
	"github.com/tuanvumaihuynh/product-api/pkg/validator"
)

type CreateProductParams struct {
	Name  *string  `json:"name" validate:"required,notblank"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type UpdateProductParams struct {
	Name  *string  `json:"name" validate:"required,notblank"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// PatchProductParams fields left nil keep their stored value.
type PatchProductParams struct {
	Name  *string  `json:"name" validate:"omitempty,notblank"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

// DecodeFunc produces the request params. It runs concurrently with the product lookup.
type DecodeFunc[T any] func() (T, error)

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, decode DecodeFunc[UpdateProductParams]) (model.Product, error)
	PatchProduct(ctx context.Context, id string, decode DecodeFunc[PatchProductParams]) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DeleteAllProducts(ctx context.Context) error
}

type productService struct {
	productRepo repository.ProductRepository
	validator   validator.Validator
}

func NewProductService(
	productRepo repository.ProductRepository,
	validator validator.Validator,
) ProductService {
	return &productService{
		productRepo: productRepo,
		validator:   validator,
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository find all: %w", err)
	}

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, mapRepositoryErr("product repository find by id", err)
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, fmt.Errorf("validate create product params: %w", err)
	}

	product, err := s.productRepo.Save(ctx, model.Product{
		Name:  *params.Name,
		Price: *params.Price,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository save: %w", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, decode DecodeFunc[UpdateProductParams]) (model.Product, error) {
	existing, params, err := lookupAndDecode(ctx, s, id, decode)
	if err != nil {
		return model.Product{}, err
	}

	product, err := s.productRepo.Save(ctx, model.Product{
		ID:    existing.ID,
		Name:  *params.Name,
		Price: *params.Price,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository save: %w", err)
	}

	return product, nil
}

func (s *productService) PatchProduct(ctx context.Context, id string, decode DecodeFunc[PatchProductParams]) (model.Product, error) {
	existing, params, err := lookupAndDecode(ctx, s, id, decode)
	if err != nil {
		return model.Product{}, err
	}

	merged := existing
	if params.Name != nil {
		merged.Name = *params.Name
	}
	if params.Price != nil {
		merged.Price = *params.Price
	}

	product, err := s.productRepo.Save(ctx, merged)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository save: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryErr("product repository find by id", err)
	}

	if err := s.productRepo.Delete(ctx, product); err != nil {
		return mapRepositoryErr("product repository delete", err)
	}

	return nil
}

func (s *productService) DeleteAllProducts(ctx context.Context) error {
	if err := s.productRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("product repository delete all: %w", err)
	}

	return nil
}

// lookupAndDecode loads the stored product and decodes the validated params concurrently.
// Both sides run to completion. A missing product takes precedence over a bad body.
func lookupAndDecode[T any](ctx context.Context, s *productService, id string, decode DecodeFunc[T]) (model.Product, T, error) {
	var (
		existing  model.Product
		params    T
		lookupErr error
		g         errgroup.Group
	)

	g.Go(func() error {
		product, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			lookupErr = mapRepositoryErr("product repository find by id", err)
			return lookupErr
		}
		existing = product
		return nil
	})
	g.Go(func() error {
		decoded, err := decode()
		if err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
		if err := s.validator.Validate(decoded); err != nil {
			return fmt.Errorf("validate params: %w", err)
		}
		params = decoded
		return nil
	})

	err := g.Wait()
	if lookupErr != nil {
		return model.Product{}, params, lookupErr
	}
	if err != nil {
		return model.Product{}, params, err
	}

	return existing, params, nil
}

func mapRepositoryErr(op string, err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return apperr.ProductNotFoundErr.WrapParent(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
