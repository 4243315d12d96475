package customers

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
	"gorm.io/gorm"
)

const (
	MsgCreated          = "Customer created"
	MsgValidationFailed = "Validation failed"
)

// Service exposes customer mutations, listing and maintenance.
type Service interface {
	CreateCustomer(ctx context.Context, input CreateInput) (*CreateResult, error)
	BulkCreateCustomers(ctx context.Context, rows []CreateInput) (*BulkResult, error)
	ListCustomers(ctx context.Context, query ListQuery) (*ListResult, error)
	DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error)
}

// CreateInput is one customer to create. Phone is optional.
type CreateInput struct {
	Name  string
	Email string
	Phone *string
}

func (in CreateInput) phone() string {
	if in.Phone == nil {
		return ""
	}
	return *in.Phone
}

func (in CreateInput) rules() validation.CustomerInput {
	return validation.CustomerInput{Name: in.Name, Email: in.Email, Phone: in.phone()}
}

func (in CreateInput) model() *models.Customer {
	return &models.Customer{Name: strings.TrimSpace(in.Name), Email: in.Email, Phone: in.phone()}
}

// CreateResult carries either the created customer or the validation messages.
type CreateResult struct {
	Customer *models.Customer
	Message  string
	Errors   []string
}

// BulkResult lists the persisted customers and the row-tagged failures.
type BulkResult struct {
	Customers []models.Customer
	Errors    []string
}

// ServiceParams groups the dependencies for NewService.
type ServiceParams struct {
	Repo Repository
	Tx   db.TxRunner
}

type service struct {
	repo Repository
	tx   db.TxRunner
}

// NewService constructs a customer service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CreateInput) (*CreateResult, error) {
	msgs, err := validation.ValidateNewCustomer(ctx, s.repo, input.rules())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer email")
	}
	if len(msgs) > 0 {
		return &CreateResult{Message: MsgValidationFailed, Errors: msgs}, nil
	}

	customer, err := s.repo.Create(ctx, input.model())
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return &CreateResult{Message: MsgValidationFailed, Errors: []string{validation.MsgEmailExists}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	return &CreateResult{Customer: customer, Message: MsgCreated, Errors: []string{}}, nil
}

// BulkCreateCustomers validates and inserts every row inside one transaction.
// Each insert runs in its own savepoint so a failed row leaves earlier rows
// intact. Rows created earlier in the batch count for the email check.
func (s *service) BulkCreateCustomers(ctx context.Context, rows []CreateInput) (*BulkResult, error) {
	result := &BulkResult{Customers: []models.Customer{}, Errors: []string{}}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i, row := range rows {
			msgs, err := validation.ValidateNewCustomer(ctx, txRepo, row.rules())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer email")
			}
			if len(msgs) > 0 {
				result.Errors = append(result.Errors, rowError(i, strings.Join(msgs, "; ")))
				continue
			}

			customer := row.model()
			err = tx.Transaction(func(sp *gorm.DB) error {
				_, err := s.repo.WithTx(sp).Create(ctx, customer)
				return err
			})
			switch {
			case errors.Is(err, ErrEmailTaken):
				result.Errors = append(result.Errors, rowError(i, validation.MsgEmailExists))
			case err != nil:
				result.Errors = append(result.Errors, rowError(i, err.Error()))
			default:
				result.Customers = append(result.Customers, *customer)
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk create customers")
	}
	return result, nil
}

func rowError(index int, msg string) string {
	return fmt.Sprintf("Row %d: %s", index+1, msg)
}

func (s *service) ListCustomers(ctx context.Context, query ListQuery) (*ListResult, error) {
	res, err := s.repo.List(ctx, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return res, nil
}

// DeleteInactive removes every customer without an order dated on or after cutoff.
func (s *service) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).DeleteWithoutOrdersSince(ctx, cutoff)
		deleted = n
		return err
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inactive customers")
	}
	return deleted, nil
}
