package graph

import (
	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/graphql-go/graphql"
)

func payloadType(name string, fields graphql.Fields) *graphql.Object {
	fields["errors"] = &graphql.Field{Type: graphql.NewList(graphql.String)}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func (r *resolver) mutationType(objects *objectTypes, inputs *inputTypes) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": {
				Type: payloadType("CreateCustomerPayload", graphql.Fields{
					"customer": {Type: objects.customer},
					"message":  {Type: graphql.String},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(inputs.customerInput)},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": {
				Type: payloadType("BulkCreateCustomersPayload", graphql.Fields{
					"customers": {Type: graphql.NewList(objects.customer)},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(inputs.customerInput)))},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": {
				Type: payloadType("CreateProductPayload", graphql.Fields{
					"product": {Type: objects.product},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(inputs.productInput)},
				},
				Resolve: r.createProduct,
			},
			"createOrder": {
				Type: payloadType("CreateOrderPayload", graphql.Fields{
					"order": {Type: objects.order},
				}),
				Args: graphql.FieldConfigArgument{
					"input": {Type: graphql.NewNonNull(inputs.orderInput)},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": {
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "UpdateLowStockProductsPayload",
					Fields: graphql.Fields{
						"ok":       {Type: graphql.Boolean},
						"message":  {Type: graphql.String},
						"products": {Type: graphql.NewList(objects.product)},
					},
				}),
				Resolve: r.updateLowStockProducts,
			},
		},
	})
}

func (r *resolver) createCustomer(p graphql.ResolveParams) (any, error) {
	res, err := r.customers.CreateCustomer(p.Context, customerInput(asMap(p.Args["input"])))
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	payload := map[string]any{"message": res.Message, "errors": res.Errors}
	if res.Customer != nil {
		payload["customer"] = res.Customer
	}
	return payload, nil
}

func (r *resolver) bulkCreateCustomers(p graphql.ResolveParams) (any, error) {
	var rows []customers.CreateInput
	for _, item := range asList(p.Args["input"]) {
		rows = append(rows, customerInput(asMap(item)))
	}
	res, err := r.customers.BulkCreateCustomers(p.Context, rows)
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	return map[string]any{"customers": res.Customers, "errors": res.Errors}, nil
}

func (r *resolver) createProduct(p graphql.ResolveParams) (any, error) {
	res, err := r.products.CreateProduct(p.Context, productInput(asMap(p.Args["input"])))
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	payload := map[string]any{"errors": res.Errors}
	if res.Product != nil {
		payload["product"] = res.Product
	}
	return payload, nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (any, error) {
	res, err := r.orders.CreateOrder(p.Context, orderInput(asMap(p.Args["input"])))
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	payload := map[string]any{"errors": res.Errors}
	if res.Order != nil {
		payload["order"] = res.Order
	}
	return payload, nil
}

func (r *resolver) updateLowStockProducts(p graphql.ResolveParams) (any, error) {
	res, err := r.products.RestockLowStock(p.Context)
	if err != nil {
		return nil, r.publicError(p.Context, err)
	}
	return map[string]any{"ok": true, "message": res.Message, "products": res.Products}, nil
}
