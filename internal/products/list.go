package product

import (
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Filter describes the supported product filters. Nil fields are ignored.
type Filter struct {
	Name     *string
	PriceGte *decimal.Decimal
	PriceLte *decimal.Decimal
	StockGte *int
	StockLte *int
}

// ListQuery captures the inputs needed to filter, order and page products.
type ListQuery struct {
	Filter     Filter
	OrderBy    []string
	Pagination pagination.Params
}

// ListResult is one page of products plus the filtered total.
type ListResult struct {
	Page       pagination.Page[models.Product]
	TotalCount int64
}
