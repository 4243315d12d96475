package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/crm-backend/internal/validation"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MsgNoProducts = "At least one product must be provided."

// Service defines order operations beyond repository reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	ListOrders(ctx context.Context, query ListQuery) (*ListResult, error)
}

// CreateOrderInput carries raw ids as received from the caller.
type CreateOrderInput struct {
	CustomerID string
	ProductIDs []string
	OrderDate  *time.Time
}

// CreateOrderResult carries the created order or the reference errors.
type CreateOrderResult struct {
	Order  *models.Order
	Errors []string
}

// rejection aborts the create transaction with caller-facing messages.
type rejection struct {
	messages []string
}

func (r *rejection) Error() string {
	return strings.Join(r.messages, "; ")
}

func reject(messages ...string) error {
	return &rejection{messages: messages}
}

// ServiceParams groups the dependencies for NewService.
type ServiceParams struct {
	Repo Repository
	Tx   db.TxRunner
	Now  func() time.Time
}

type service struct {
	repo Repository
	tx   db.TxRunner
	now  func() time.Time
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, tx: params.Tx, now: now}, nil
}

// CreateOrder resolves the customer and products, computes the total from the
// current prices and inserts the order with its product links atomically.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		customer, err := s.resolveCustomer(ctx, txRepo, input.CustomerID)
		if err != nil {
			return err
		}
		products, err := s.resolveProducts(ctx, txRepo, input.ProductIDs)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return reject(MsgNoProducts)
		}

		orderDate := s.now()
		if input.OrderDate != nil {
			orderDate = *input.OrderDate
		}
		order := &models.Order{
			CustomerID:  customer.ID,
			Products:    products,
			TotalAmount: validation.ComputeOrderTotal(products),
			OrderDate:   orderDate.UTC(),
		}
		if _, err := txRepo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		order.Customer = customer
		created = order
		return nil
	})

	var rejected *rejection
	switch {
	case errors.As(err, &rejected):
		return &CreateOrderResult{Errors: rejected.messages}, nil
	case err != nil:
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return &CreateOrderResult{Order: created, Errors: []string{}}, nil
}

func (s *service) resolveCustomer(ctx context.Context, txRepo Repository, raw string) (*models.Customer, error) {
	invalid := reject(fmt.Sprintf("Invalid customer ID: %s", raw))
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, invalid
	}
	customer, err := txRepo.FindCustomer(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return customer, nil
}

// resolveProducts loads the distinct products in request order and reports
// every id that does not resolve, in request order.
func (s *service) resolveProducts(ctx context.Context, txRepo Repository, raw []string) ([]models.Product, error) {
	type requested struct {
		raw    string
		id     uuid.UUID
		parsed bool
	}

	reqs := make([]requested, 0, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	seen := map[uuid.UUID]bool{}
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		reqs = append(reqs, requested{raw: value, id: id, parsed: err == nil})
		if err == nil && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	found, err := txRepo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var messages []string
	reported := map[string]bool{}
	added := map[uuid.UUID]bool{}
	products := make([]models.Product, 0, len(ids))
	for _, req := range reqs {
		p, ok := byID[req.id]
		if !req.parsed || !ok {
			if !reported[req.raw] {
				reported[req.raw] = true
				messages = append(messages, fmt.Sprintf("Invalid product ID: %s", req.raw))
			}
			continue
		}
		if !added[p.ID] {
			added[p.ID] = true
			products = append(products, p)
		}
	}
	if len(messages) > 0 {
		return nil, reject(messages...)
	}
	return products, nil
}

func (s *service) ListOrders(ctx context.Context, query ListQuery) (*ListResult, error) {
	res, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return res, nil
}
