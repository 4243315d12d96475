package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// Decimal is serialized as a two-decimal string. Inputs are accepted as strings
// or numbers and handed to resolvers as text so the services can report
// malformed values themselves.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "Fixed-point amount with two decimal places.",
	Serialize:   serializeDecimal,
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case float32:
			return strconv.FormatFloat(float64(v), 'f', -1, 32)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return v.Value
		case *ast.FloatValue:
			return v.Value
		case *ast.IntValue:
			return v.Value
		}
		return nil
	},
})

func serializeDecimal(value any) any {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.StringFixed(2)
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return v.StringFixed(2)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		return d.StringFixed(2)
	case float64:
		return decimal.NewFromFloat(v).StringFixed(2)
	}
	return nil
}
