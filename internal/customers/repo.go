package customers

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/crm-backend/internal/repo"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEmailTaken is returned when the unique email index rejects an insert.
var ErrEmailTaken = errors.New("customer email already exists")

const emailConstraint = "idx_customers_email"

var orderFields = repo.OrderFields{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"phone":      "phone",
	"created_at": "created_at",
}

// Repository defines persistence operations for customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	DeleteWithoutOrdersSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return customer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	offset, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filtered := func() *gorm.DB {
		return applyFilter(r.DB(ctx).Model(&models.Customer{}), query.Filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	qb, err := repo.ApplyOrdering(filtered(), "customers", orderFields, query.OrderBy)
	if err != nil {
		return nil, err
	}

	var rows []models.Customer
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
		qb = qb.Where("LOWER(customers.name) LIKE ? "+repo.LikeEscape, repo.Contains(*filter.Name))
	}
	if filter.Email != nil {
		qb = qb.Where("LOWER(customers.email) LIKE ? "+repo.LikeEscape, repo.Contains(*filter.Email))
	}
	if filter.CreatedAtGte != nil {
		qb = qb.Where("customers.created_at >= ?", filter.CreatedAtGte.UTC())
	}
	if filter.CreatedAtLte != nil {
		qb = qb.Where("customers.created_at <= ?", filter.CreatedAtLte.UTC())
	}
	if filter.PhonePattern != nil {
		qb = qb.Where("customers.phone LIKE ? "+repo.LikeEscape, repo.StartsWith(*filter.PhonePattern))
	}
	return qb
}

const (
	noRecentOrderOfCustomer = "NOT EXISTS (SELECT 1 FROM orders recent WHERE recent.customer_id = customers.id AND recent.order_date >= ?)"
	noRecentOrderOfOwner    = "NOT EXISTS (SELECT 1 FROM orders recent WHERE recent.customer_id = orders.customer_id AND recent.order_date >= ?)"
)

// DeleteWithoutOrdersSince removes customers with no order dated on or after
// cutoff, along with their older orders and order_products rows. Call it on a
// transaction-bound repository.
func (r *repository) DeleteWithoutOrdersSince(ctx context.Context, cutoff time.Time) (int64, error) {
	conn := r.DB(ctx)
	cutoff = cutoff.UTC()

	deleteLinks := "DELETE FROM " + models.OrderProductsTable + " WHERE order_id IN (SELECT orders.id FROM orders WHERE " + noRecentOrderOfOwner + ")"
	if err := conn.Exec(deleteLinks, cutoff).Error; err != nil {
		return 0, err
	}
	if err := conn.Where(noRecentOrderOfOwner, cutoff).Delete(&models.Order{}).Error; err != nil {
		return 0, err
	}
	res := conn.Where(noRecentOrderOfCustomer, cutoff).Delete(&models.Customer{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
