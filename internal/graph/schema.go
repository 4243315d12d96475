// Package graph exposes the CRM entities over GraphQL: list queries with
// filters, ordering and cursor pagination, plus the create and restock
// mutations.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/angelmondragon/crm-backend/internal/orders"
	product "github.com/angelmondragon/crm-backend/internal/products"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/graphql-go/graphql"
)

const HelloMessage = "Hello, GraphQL!"

// Params groups the services the resolvers delegate to.
type Params struct {
	Customers customers.Service
	Products  product.Service
	Orders    orders.Service
	Logger    *logger.Logger
}

// Request is one GraphQL operation as received over HTTP.
type Request struct {
	Query         string
	Variables     map[string]any
	OperationName string
}

// Schema executes requests against the CRM schema.
type Schema struct {
	schema graphql.Schema
}

type resolver struct {
	customers customers.Service
	products  product.Service
	orders    orders.Service
	logg      *logger.Logger
}

// NewSchema builds the executable schema.
func NewSchema(params Params) (*Schema, error) {
	if params.Customers == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	r := &resolver{customers: params.Customers, products: params.Products, orders: params.Orders, logg: params.Logger}
	objects := newObjectTypes()
	inputs := newInputTypes()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(objects, inputs),
		Mutation: r.mutationType(objects, inputs),
	})
	if err != nil {
		return nil, fmt.Errorf("building graphql schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// Execute runs one operation. Resolver failures are reported in the result's
// errors, never as a Go error.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// publicError turns a service error into the message a client sees. Validation
// messages pass through; anything else is logged and masked.
func (r *resolver) publicError(ctx context.Context, err error) error {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeValidation {
		return errors.New(typed.Message())
	}

	r.logg.Error(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "graphql resolver failed", err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "")
	}
	return errors.New(typed.Public())
}
