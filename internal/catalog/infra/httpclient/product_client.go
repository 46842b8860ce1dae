package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductClient struct {
	client *resty.Client
}

type listResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *ProductClient) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&p).
		Get("/products/{id}")
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.Product{}, app.ErrNotFound
	}
	if resp.IsError() {
		return domain.Product{}, fmt.Errorf("get product %s: status %d", id, resp.StatusCode())
	}
	return p, nil
}

func (c *ProductClient) List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int, error) {
	var out listResponse
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetResult(&out)
	if query != "" {
		req.SetQueryParam("query", query)
	}

	resp, err := req.Get("/products")
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if resp.IsError() {
		return nil, 0, fmt.Errorf("list products: status %d", resp.StatusCode())
	}
	return out.Products, out.Total, nil
}
