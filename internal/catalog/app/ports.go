package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductReader interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int, error)
}
