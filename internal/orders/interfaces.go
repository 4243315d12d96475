package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and the rows they reference.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListOrders(ctx context.Context, query ListQuery) (*ListResult, error)
}

// Filter enumerates the supported order filters. Nil fields are ignored.
type Filter struct {
	TotalAmountGte *decimal.Decimal
	TotalAmountLte *decimal.Decimal
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	CustomerName   *string
	ProductName    *string
	ProductID      *string
}

// ListQuery captures filter, ordering and paging for allOrders.
type ListQuery struct {
	Filter     Filter
	OrderBy    []string
	Pagination pagination.Params
}

// ListResult is one page of orders, with customer and products loaded.
type ListResult struct {
	Page       pagination.Page[models.Order]
	TotalCount int64
}
