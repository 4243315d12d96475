package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/crm-backend/internal/validation"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultLowStockThreshold = 10
	DefaultLowStockIncrement = 10
)

// Service exposes product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*CreateProductResult, error)
	ListProducts(ctx context.Context, query ListQuery) (*ListResult, error)
	RestockLowStock(ctx context.Context) (*RestockResult, error)
}

// CreateProductInput holds the raw payload to create a product. Price is kept
// as text so malformed values surface as validation messages.
type CreateProductInput struct {
	Name  string
	Price string
	Stock *int
}

// CreateProductResult carries the product or the validation messages, never both.
type CreateProductResult struct {
	Product *models.Product
	Errors  []string
}

// RestockResult lists the replenished products with their new stock.
type RestockResult struct {
	Products []models.Product
	Message  string
}

// ServiceParams groups the dependencies for NewService.
type ServiceParams struct {
	Repo              *Repository
	Tx                db.TxRunner
	LowStockThreshold int
	LowStockIncrement int
}

type service struct {
	repo      *Repository
	tx        db.TxRunner
	threshold int
	increment int
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	threshold := params.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	increment := params.LowStockIncrement
	if increment <= 0 {
		increment = DefaultLowStockIncrement
	}
	return &service{repo: params.Repo, tx: params.Tx, threshold: threshold, increment: increment}, nil
}

// CreateProduct validates and inserts the product.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*CreateProductResult, error) {
	errs := validation.ValidateName(input.Name)
	price, priceErrs := validation.ValidateNewProduct(input.Price, input.Stock)
	errs = append(errs, priceErrs...)
	if len(errs) > 0 {
		return &CreateProductResult{Errors: errs}, nil
	}

	product := &models.Product{Name: strings.TrimSpace(input.Name), Price: price}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return &CreateProductResult{Product: created, Errors: []string{}}, nil
}

func (s *service) ListProducts(ctx context.Context, query ListQuery) (*ListResult, error) {
	res, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return res, nil
}

// RestockLowStock raises every product under the threshold by the increment in
// one transaction.
func (s *service) RestockLowStock(ctx context.Context) (*RestockResult, error) {
	var updated []models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		low, err := txRepo.ListBelowStock(ctx, s.threshold)
		if err != nil {
			return err
		}
		for i := range low {
			low[i].Stock += s.increment
			if err := txRepo.UpdateStock(ctx, low[i].ID, low[i].Stock); err != nil {
				return err
			}
		}
		updated = low
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock low stock products")
	}
	if updated == nil {
		updated = []models.Product{}
	}
	return &RestockResult{
		Products: updated,
		Message:  fmt.Sprintf("Updated %d product(s).", len(updated)),
	}, nil
}
