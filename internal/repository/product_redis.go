package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvumaihuynh/product-api/internal/model"
)

var _ ProductRepository = (*redisProductRepository)(nil)

// redisProductRepository keeps every product as a JSON document in a single redis hash, keyed by product id.
type redisProductRepository struct {
	client redis.Cmdable
	key    string
}

func NewRedisProductRepository(client redis.Cmdable, key string) ProductRepository {
	return &redisProductRepository{
		client: client,
		key:    key,
	}
}

// FindAll sorts by id. Ids are UUIDv7 so this is creation order.
func (r redisProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	documents, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall products: %w", err)
	}

	products := make([]model.Product, 0, len(documents))
	for id, document := range documents {
		product, err := decodeProduct(id, document)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})

	return products, nil
}

func (r redisProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	document, err := r.client.HGet(ctx, r.key, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("hget product: %w", err)
	}

	return decodeProduct(id, document)
}

func (r redisProductRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
	if product.ID == "" {
		id, err := newProductID()
		if err != nil {
			return model.Product{}, fmt.Errorf("generate product id: %w", err)
		}
		product.ID = id
	}

	document, err := json.Marshal(productDocument{Name: product.Name, Price: product.Price})
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal product document: %w", err)
	}

	if err := r.client.HSet(ctx, r.key, product.ID, document).Err(); err != nil {
		return model.Product{}, fmt.Errorf("hset product: %w", err)
	}

	return product, nil
}

func (r redisProductRepository) Delete(ctx context.Context, product model.Product) error {
	deleted, err := r.client.HDel(ctx, r.key, product.ID).Result()
	if err != nil {
		return fmt.Errorf("hdel product: %w", err)
	}
	if deleted == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r redisProductRepository) DeleteAll(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("del products: %w", err)
	}

	return nil
}

func decodeProduct(id, document string) (model.Product, error) {
	var doc productDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return model.Product{}, fmt.Errorf("unmarshal product document %s: %w", id, err)
	}

	return model.Product{
		ID:    id,
		Name:  doc.Name,
		Price: doc.Price,
	}, nil
}
