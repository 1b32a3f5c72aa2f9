package event

import (
	"context"
	"log/slog"
)

const (
	TopicProductSaved   = "product.saved"
	TopicProductDeleted = "product.deleted"
	TopicProductCleared = "product.cleared"
)

type ProductSavedEvent struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type ProductDeletedEvent struct {
	ProductID string `json:"product_id"`
}

type ProductClearedEvent struct {
	DeletedCount int64 `json:"deleted_count"`
}

func (s *Service) handleProductSavedEvent(ctx context.Context, ev ProductSavedEvent) error {
	s.logger.InfoContext(ctx, "handling product saved event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event", slog.String("product_id", ev.ProductID))
	return nil
}

func (s *Service) handleProductClearedEvent(ctx context.Context, ev ProductClearedEvent) error {
	s.logger.InfoContext(ctx, "handling product cleared event", slog.Int64("deleted_count", ev.DeletedCount))
	return nil
}
