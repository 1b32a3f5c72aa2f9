package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-api/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the product document store.
type ProductRepository interface {
	// FindAll returns every product, oldest first.
	FindAll(ctx context.Context) ([]model.Product, error)
	// FindByID returns ErrProductNotFound when no product has the given id.
	FindByID(ctx context.Context, id string) (model.Product, error)
	// Save inserts or replaces the product. A product without id gets a new one.
	Save(ctx context.Context, product model.Product) (model.Product, error)
	// Delete returns ErrProductNotFound when the product is already gone.
	Delete(ctx context.Context, product model.Product) error
	// DeleteAll removes every product.
	DeleteAll(ctx context.Context) error
}

// productDocument is the stored representation of a product, keyed by its id.
type productDocument struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newProductID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
