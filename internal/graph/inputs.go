package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/angelmondragon/crm-backend/internal/orders"
	product "github.com/angelmondragon/crm-backend/internal/products"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
)

type inputTypes struct {
	customerFilter *graphql.InputObject
	productFilter  *graphql.InputObject
	orderFilter    *graphql.InputObject

	customerInput *graphql.InputObject
	productInput  *graphql.InputObject
	orderInput    *graphql.InputObject
}

func newInputTypes() *inputTypes {
	return &inputTypes{
		customerFilter: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CustomerFilter",
			Fields: graphql.InputObjectConfigFieldMap{
				"name":         {Type: graphql.String},
				"email":        {Type: graphql.String},
				"createdAtGte": {Type: graphql.DateTime},
				"createdAtLte": {Type: graphql.DateTime},
				"phonePattern": {Type: graphql.String},
			},
		}),
		productFilter: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "ProductFilter",
			Fields: graphql.InputObjectConfigFieldMap{
				"name":     {Type: graphql.String},
				"priceGte": {Type: Decimal},
				"priceLte": {Type: Decimal},
				"stockGte": {Type: graphql.Int},
				"stockLte": {Type: graphql.Int},
			},
		}),
		orderFilter: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "OrderFilter",
			Fields: graphql.InputObjectConfigFieldMap{
				"totalAmountGte": {Type: Decimal},
				"totalAmountLte": {Type: Decimal},
				"orderDateGte":   {Type: graphql.DateTime},
				"orderDateLte":   {Type: graphql.DateTime},
				"customerName":   {Type: graphql.String},
				"productName":    {Type: graphql.String},
				"productId":      {Type: graphql.ID},
			},
		}),
		customerInput: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CustomerInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"name":  {Type: graphql.NewNonNull(graphql.String)},
				"email": {Type: graphql.NewNonNull(graphql.String)},
				"phone": {Type: graphql.String},
			},
		}),
		productInput: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "ProductInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"name":  {Type: graphql.NewNonNull(graphql.String)},
				"price": {Type: graphql.NewNonNull(Decimal)},
				"stock": {Type: graphql.Int, DefaultValue: 0},
			},
		}),
		orderInput: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "OrderInput",
			Fields: graphql.InputObjectConfigFieldMap{
				"customerId": {Type: graphql.NewNonNull(graphql.ID)},
				"productIds": {Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				"orderDate":  {Type: graphql.DateTime},
			},
		}),
	}
}

// listArgs are shared by every allX query field.
func listArgs(filter *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"filter":  {Type: filter},
		"orderBy": {Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"first":   {Type: graphql.Int},
		"after":   {Type: graphql.String},
	}
}

type listParams struct {
	filter     map[string]any
	orderBy    []string
	pagination pagination.Params
}

func parseListArgs(args map[string]any) listParams {
	out := listParams{filter: asMap(args["filter"])}
	for _, v := range asList(args["orderBy"]) {
		if s, ok := v.(string); ok {
			out.orderBy = append(out.orderBy, s)
		}
	}
	if first, ok := args["first"].(int); ok {
		out.pagination.Limit = first
	}
	if after, ok := args["after"].(string); ok {
		out.pagination.Cursor = after
	}
	return out
}

func customerFilter(m map[string]any) customers.Filter {
	return customers.Filter{
		Name:         optString(m, "name"),
		Email:        optString(m, "email"),
		CreatedAtGte: optTime(m, "createdAtGte"),
		CreatedAtLte: optTime(m, "createdAtLte"),
		PhonePattern: optString(m, "phonePattern"),
	}
}

func productFilter(m map[string]any) (product.Filter, error) {
	gte, err := optDecimal(m, "priceGte")
	if err != nil {
		return product.Filter{}, err
	}
	lte, err := optDecimal(m, "priceLte")
	if err != nil {
		return product.Filter{}, err
	}
	return product.Filter{
		Name:     optString(m, "name"),
		PriceGte: gte,
		PriceLte: lte,
		StockGte: optInt(m, "stockGte"),
		StockLte: optInt(m, "stockLte"),
	}, nil
}

func orderFilter(m map[string]any) (orders.Filter, error) {
	gte, err := optDecimal(m, "totalAmountGte")
	if err != nil {
		return orders.Filter{}, err
	}
	lte, err := optDecimal(m, "totalAmountLte")
	if err != nil {
		return orders.Filter{}, err
	}
	return orders.Filter{
		TotalAmountGte: gte,
		TotalAmountLte: lte,
		OrderDateGte:   optTime(m, "orderDateGte"),
		OrderDateLte:   optTime(m, "orderDateLte"),
		CustomerName:   optString(m, "customerName"),
		ProductName:    optString(m, "productName"),
		ProductID:      optString(m, "productId"),
	}, nil
}

func customerInput(m map[string]any) customers.CreateInput {
	return customers.CreateInput{
		Name:  str(m, "name"),
		Email: str(m, "email"),
		Phone: optString(m, "phone"),
	}
}

func productInput(m map[string]any) product.CreateProductInput {
	return product.CreateProductInput{
		Name:  str(m, "name"),
		Price: str(m, "price"),
		Stock: optInt(m, "stock"),
	}
}

func orderInput(m map[string]any) orders.CreateOrderInput {
	in := orders.CreateOrderInput{
		CustomerID: str(m, "customerId"),
		OrderDate:  optTime(m, "orderDate"),
	}
	for _, v := range asList(m["productIds"]) {
		if s, ok := v.(string); ok {
			in.ProductIDs = append(in.ProductIDs, s)
		}
	}
	return in
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func optInt(m map[string]any, key string) *int {
	if i, ok := m[key].(int); ok {
		return &i
	}
	return nil
}

func optTime(m map[string]any, key string) *time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}

func optDecimal(m map[string]any, key string) (*decimal.Decimal, error) {
	s, ok := m[key].(string)
	if !ok {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid decimal for %s: %s", key, s))
	}
	return &d, nil
}
