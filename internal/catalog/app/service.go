package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	repo ProductReader
}

func NewService(repo ProductReader) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit, offset int) (domain.Page, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		return domain.Page{}, ErrInvalidInput
	}

	products, total, err := s.repo.List(ctx, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{
		Products: products,
		Offset:   offset,
		Limit:    limit,
		Total:    total,
	}
	if next := offset + len(products); len(products) > 0 && next < total {
		page.NextOffset = &next
	}
	return page, nil
}
