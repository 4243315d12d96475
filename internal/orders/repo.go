package orders

import (
	"context"

	"github.com/angelmondragon/crm-backend/internal/repo"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var orderFields = repo.OrderFields{
	"id":           "id",
	"customer_id":  "customer_id",
	"total_amount": "total_amount",
	"order_date":   "order_date",
	"created_at":   "created_at",
}

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

// CreateOrder inserts the order and its order_products rows. The referenced
// products must already exist and are not rewritten.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Omit("Customer", "Products.*").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Customer").
		Preload("Products").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

const (
	orderHasProduct = "EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = orders.id AND op.product_id = ?)"
	orderHasNamed   = "EXISTS (SELECT 1 FROM order_products op JOIN products p ON p.id = op.product_id WHERE op.order_id = orders.id AND LOWER(p.name) LIKE ? " + repo.LikeEscape + ")"
	orderOfNamed    = "EXISTS (SELECT 1 FROM customers c WHERE c.id = orders.customer_id AND LOWER(c.name) LIKE ? " + repo.LikeEscape + ")"
)

func (r *repository) ListOrders(ctx context.Context, query ListQuery) (*ListResult, error) {
	offset, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filtered := func() *gorm.DB {
		return applyFilter(r.DB(ctx).Model(&models.Order{}), query.Filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	qb, err := repo.ApplyOrdering(filtered(), "orders", orderFields, query.OrderBy)
	if err != nil {
		return nil, err
	}

	var rows []models.Order
	err = qb.Preload("Customer").
		Preload("Products").
		Offset(offset).
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Page:       pagination.Paginate(rows, query.Pagination.Limit, offset),
		TotalCount: total,
	}, nil
}

func applyFilter(qb *gorm.DB, filter Filter) *gorm.DB {
	if filter.TotalAmountGte != nil {
		qb = qb.Where("orders.total_amount >= ?", *filter.TotalAmountGte)
	}
	if filter.TotalAmountLte != nil {
		qb = qb.Where("orders.total_amount <= ?", *filter.TotalAmountLte)
	}
	if filter.OrderDateGte != nil {
		qb = qb.Where("orders.order_date >= ?", filter.OrderDateGte.UTC())
	}
	if filter.OrderDateLte != nil {
		qb = qb.Where("orders.order_date <= ?", filter.OrderDateLte.UTC())
	}
	if filter.CustomerName != nil {
		qb = qb.Where(orderOfNamed, repo.Contains(*filter.CustomerName))
	}
	if filter.ProductName != nil {
		qb = qb.Where(orderHasNamed, repo.Contains(*filter.ProductName))
	}
	if filter.ProductID != nil {
		id, err := uuid.Parse(*filter.ProductID)
		if err != nil {
			// an id that cannot exist matches nothing
			return qb.Where("1 = 0")
		}
		qb = qb.Where(orderHasProduct, id)
	}
	return qb
}
