package product

import (
	"context"

	"github.com/angelmondragon/crm-backend/internal/repo"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var orderFields = repo.OrderFields{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

// Repository wires together all product persistence helpers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// CreateProduct inserts the product.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products matching ids; missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts returns a filtered, ordered page of products.
func (r *Repository) ListProducts(ctx context.Context, query ListQuery) (*ListResult, error) {
	offset, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filtered := func() *gorm.DB {
		return applyFilter(r.DB(ctx).Model(&models.Product{}), query.Filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	qb, err := repo.ApplyOrdering(filtered(), "products", orderFields, query.OrderBy)
	if err != nil {
		return nil, err
	}

	var rows []models.Product
	if err := qb.Offset(offset).Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return &ListResult{
		Page:       pagination.Paginate(rows, query.Pagination.Limit, offset),
		TotalCount: total,
	}, nil
}

func applyFilter(qb *gorm.DB, filter Filter) *gorm.DB {
	if filter.Name != nil {
		qb = qb.Where("LOWER(products.name) LIKE ? "+repo.LikeEscape, repo.Contains(*filter.Name))
	}
	if filter.PriceGte != nil {
		qb = qb.Where("products.price >= ?", *filter.PriceGte)
	}
	if filter.PriceLte != nil {
		qb = qb.Where("products.price <= ?", *filter.PriceLte)
	}
	if filter.StockGte != nil {
		qb = qb.Where("products.stock >= ?", *filter.StockGte)
	}
	if filter.StockLte != nil {
		qb = qb.Where("products.stock <= ?", *filter.StockLte)
	}
	return qb
}

// ListBelowStock returns products with stock under threshold in id order. On
// Postgres the rows stay locked until the surrounding transaction ends.
func (r *Repository) ListBelowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	qb := r.DB(ctx).Where("stock < ?", threshold).Order("id ASC")
	if r.IsPostgres() {
		qb = qb.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []models.Product
	if err := qb.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateStock persists a new stock level for one product.
func (r *Repository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", stock).Error
}
