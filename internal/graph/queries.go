package graph

import (
	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/angelmondragon/crm-backend/internal/orders"
	product "github.com/angelmondragon/crm-backend/internal/products"
	"github.com/graphql-go/graphql"
)

func (r *resolver) queryType(objects *objectTypes, inputs *inputTypes) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": {
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) {
					return HelloMessage, nil
				},
			},
			"allCustomers": {
				Type:    objects.customerConnection,
				Args:    listArgs(inputs.customerFilter),
				Resolve: r.allCustomers,
			},
			"allProducts": {
				Type:    objects.productConnection,
				Args:    listArgs(inputs.productFilter),
				Resolve: r.allProducts,
			},
			"allOrders": {
				Type:    objects.orderConnection,
				Args:    listArgs(inputs.orderFilter),
				Resolve: r.allOrders,
			},
		},
	})
}

func (r *resolver) allCustomers(p graphql.ResolveParams) (any, error) {
	args := parseListArgs(p.Args)
	res, err := r.customers.ListCustomers(p.Context, customers.ListQuery{
		Filter:     customerFilter(args.filter),
		OrderBy:    args.orderBy,
		Pagination: args.pagination,
	})
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	return connectionOf(res.Page, res.TotalCount), nil
}

func (r *resolver) allProducts(p graphql.ResolveParams) (any, error) {
	args := parseListArgs(p.Args)
	filter, err := productFilter(args.filter)
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	res, err := r.products.ListProducts(p.Context, product.ListQuery{
		Filter:     filter,
		OrderBy:    args.orderBy,
		Pagination: args.pagination,
	})
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	return connectionOf(res.Page, res.TotalCount), nil
}

func (r *resolver) allOrders(p graphql.ResolveParams) (any, error) {
	args := parseListArgs(p.Args)
	filter, err := orderFilter(args.filter)
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	res, err := r.orders.ListOrders(p.Context, orders.ListQuery{
		Filter:     filter,
		OrderBy:    args.orderBy,
		Pagination: args.pagination,
	})
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	return connectionOf(res.Page, res.TotalCount), nil
}
