package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/product-api/internal/event"
	"github.com/tuanvumaihuynh/product-api/internal/model"
	"github.com/tuanvumaihuynh/product-api/internal/storage/db"
	"github.com/tuanvumaihuynh/product-api/pkg/outbox"
)

var _ ProductRepository = (*productRepository)(nil)

// productRepository keeps products as JSONB documents and records every change in the outbox
// within the same transaction.
type productRepository struct {
	db            db.DB
	outboxMsgRepo OutboxMsgRepository
}

func NewProductRepository(db db.DB, outboxMsgRepo OutboxMsgRepository) ProductRepository {
	return &productRepository{
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (r productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document
		FROM products
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, document
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("find product: %w", err)
	}

	return product, nil
}

func (r productRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
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

	var saved model.Product
	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		now := time.Now()
		row := tx.QueryRow(ctx, `
			INSERT INTO products (id, document, created_at, updated_at)
			VALUES (@id, @document, @now, @now)
			ON CONFLICT (id) DO UPDATE
			SET document   = EXCLUDED.document,
				updated_at = EXCLUDED.updated_at
			RETURNING id, document
		`, pgx.NamedArgs{
			"id":       product.ID,
			"document": json.RawMessage(document),
			"now":      now,
		})

		saved, err = scanProduct(row)
		if err != nil {
			return fmt.Errorf("upsert product: %w", err)
		}

		return r.appendOutboxMsg(ctx, tx, event.TopicProductSaved, &saved.ID, event.ProductSavedEvent{
			ProductID: saved.ID,
			Name:      saved.Name,
			Price:     saved.Price,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return saved, nil
}

func (r productRepository) Delete(ctx context.Context, product model.Product) error {
	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": product.ID})
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}

		return r.appendOutboxMsg(ctx, tx, event.TopicProductDeleted, &product.ID, event.ProductDeletedEvent{
			ProductID: product.ID,
		})
	}); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (r productRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products`)
		if err != nil {
			return fmt.Errorf("delete all products: %w", err)
		}

		return r.appendOutboxMsg(ctx, tx, event.TopicProductCleared, nil, event.ProductClearedEvent{
			DeletedCount: tag.RowsAffected(),
		})
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (r productRepository) appendOutboxMsg(ctx context.Context, tx db.DB, topic string, partitionKey *string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := r.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: partitionKey,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		id       string
		document []byte
	)
	if err := row.Scan(&id, &document); err != nil {
		return model.Product{}, err
	}

	var doc productDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return model.Product{}, fmt.Errorf("unmarshal product document %s: %w", id, err)
	}

	return model.Product{
		ID:    id,
		Name:  doc.Name,
		Price: doc.Price,
	}, nil
}
