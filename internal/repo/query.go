package repo

import (
	"fmt"
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFields maps the public (snake_case) ordering names of an entity to columns.
type OrderFields map[string]string

// LikeEscape is the ESCAPE clause matching the patterns built by Contains and StartsWith.
const LikeEscape = `ESCAPE '\'`

// ApplyOrdering translates an order_by list into ORDER BY clauses on table.
// A leading "-" sorts descending. Names may be snake_case or camelCase. The id
// column is always appended so paging is stable; without any entries rows come
// back in insertion order.
func ApplyOrdering(q *gorm.DB, table string, allowed OrderFields, orderBy []string) (*gorm.DB, error) {
	applied := 0
	for _, raw := range orderBy {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		name = ToSnake(strings.TrimPrefix(name, "-"))

		column, ok := allowed[name]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Unknown order field: %s", strings.TrimSpace(raw)))
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: column}, Desc: desc})
		applied++
	}
	if applied == 0 {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "created_at"}})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}}), nil
}

// ToSnake converts camelCase names ("totalAmount") to snake_case ("total_amount").
func ToSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Contains builds a lower-cased LIKE pattern matching value anywhere.
func Contains(value string) string {
	return "%" + escapeLike(strings.ToLower(value)) + "%"
}

// StartsWith builds a LIKE pattern matching values beginning with prefix.
func StartsWith(prefix string) string {
	return escapeLike(prefix) + "%"
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
