package graph

import (
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/graphql-go/graphql"
)

func customerOf(source any) *models.Customer {
	switch v := source.(type) {
	case *models.Customer:
		return v
	case models.Customer:
		return &v
	}
	return nil
}

func productOf(source any) *models.Product {
	switch v := source.(type) {
	case *models.Product:
		return v
	case models.Product:
		return &v
	}
	return nil
}

func orderOf(source any) *models.Order {
	switch v := source.(type) {
	case *models.Order:
		return v
	case models.Order:
		return &v
	}
	return nil
}

// field builds a resolver that reads one value off a typed source.
func field[T any](of func(any) *T, get func(*T) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		src := of(p.Source)
		if src == nil {
			return nil, nil
		}
		return get(src), nil
	}
}

type objectTypes struct {
	customer *graphql.Object
	product  *graphql.Object
	order    *graphql.Object
	pageInfo *graphql.Object

	customerConnection *graphql.Object
	productConnection  *graphql.Object
	orderConnection    *graphql.Object
}

func newObjectTypes() *objectTypes {
	t := &objectTypes{}

	t.customer = graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":        {Type: graphql.NewNonNull(graphql.ID), Resolve: field(customerOf, func(c *models.Customer) any { return c.ID.String() })},
			"name":      {Type: graphql.NewNonNull(graphql.String), Resolve: field(customerOf, func(c *models.Customer) any { return c.Name })},
			"email":     {Type: graphql.NewNonNull(graphql.String), Resolve: field(customerOf, func(c *models.Customer) any { return c.Email })},
			"phone":     {Type: graphql.String, Resolve: field(customerOf, func(c *models.Customer) any { return c.Phone })},
			"createdAt": {Type: graphql.DateTime, Resolve: field(customerOf, func(c *models.Customer) any { return c.CreatedAt })},
		},
	})

	t.product = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":        {Type: graphql.NewNonNull(graphql.ID), Resolve: field(productOf, func(p *models.Product) any { return p.ID.String() })},
			"name":      {Type: graphql.NewNonNull(graphql.String), Resolve: field(productOf, func(p *models.Product) any { return p.Name })},
			"price":     {Type: graphql.NewNonNull(Decimal), Resolve: field(productOf, func(p *models.Product) any { return p.Price })},
			"stock":     {Type: graphql.NewNonNull(graphql.Int), Resolve: field(productOf, func(p *models.Product) any { return p.Stock })},
			"createdAt": {Type: graphql.DateTime, Resolve: field(productOf, func(p *models.Product) any { return p.CreatedAt })},
		},
	})

	t.order = graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id": {Type: graphql.NewNonNull(graphql.ID), Resolve: field(orderOf, func(o *models.Order) any { return o.ID.String() })},
			"customer": {Type: t.customer, Resolve: field(orderOf, func(o *models.Order) any {
				if o.Customer == nil {
					return nil
				}
				return o.Customer
			})},
			"products":    {Type: graphql.NewList(t.product), Resolve: field(orderOf, func(o *models.Order) any { return o.Products })},
			"totalAmount": {Type: graphql.NewNonNull(Decimal), Resolve: field(orderOf, func(o *models.Order) any { return o.TotalAmount })},
			"orderDate":   {Type: graphql.DateTime, Resolve: field(orderOf, func(o *models.Order) any { return o.OrderDate })},
			"createdAt":   {Type: graphql.DateTime, Resolve: field(orderOf, func(o *models.Order) any { return o.CreatedAt })},
		},
	})

	t.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage": {Type: graphql.NewNonNull(graphql.Boolean)},
			"endCursor":   {Type: graphql.String},
		},
	})

	t.customerConnection = t.connection("Customer", t.customer)
	t.productConnection = t.connection("Product", t.product)
	t.orderConnection = t.connection("Order", t.order)
	return t
}

func (t *objectTypes) connection(name string, node *graphql.Object) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"cursor": {Type: graphql.NewNonNull(graphql.String)},
			"node":   {Type: node},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"edges":      {Type: graphql.NewNonNull(graphql.NewList(edge))},
			"pageInfo":   {Type: graphql.NewNonNull(t.pageInfo)},
			"totalCount": {Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

// connectionOf renders a page as the map shape the connection types resolve from.
func connectionOf[T any](page pagination.Page[T], total int64) map[string]any {
	edges := make([]map[string]any, 0, len(page.Items))
	for i := range page.Items {
		edges = append(edges, map[string]any{
			"cursor": page.PageInfo.CursorFor(i),
			"node":   &page.Items[i],
		})
	}
	var endCursor any
	if page.PageInfo.EndCursor != "" {
		endCursor = page.PageInfo.EndCursor
	}
	return map[string]any{
		"edges": edges,
		"pageInfo": map[string]any{
			"hasNextPage": page.PageInfo.HasNextPage,
			"endCursor":   endCursor,
		},
		"totalCount": int(total),
	}
}
