package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	InStock     bool            `json:"inStock"`
}

// Page is one offset-paginated slice of the catalog.
type Page struct {
	Products   []Product `json:"products"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	NextOffset *int      `json:"nextOffset,omitempty"`
}
