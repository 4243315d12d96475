// Package validation holds the business rules shared by the CRM mutations:
// customer and product input checks and order total aggregation.
package validation

import (
	"context"
	"regexp"
	"strings"

	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

const (
	MsgNameRequired     = "Name is required."
	MsgInvalidPhone     = "Invalid phone format."
	MsgEmailExists      = "Email already exists."
	MsgInvalidPrice     = "Invalid price."
	MsgPriceNotPositive = "Price must be positive."
	MsgNegativeStock    = "Stock cannot be negative."
)

var phonePattern = regexp.MustCompile(`^\+?\d[\d\-]{6,}$`)

// CustomerInput is the raw customer payload before persistence.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// EmailChecker looks up whether an email is already registered.
type EmailChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ValidateName rejects blank names.
func ValidateName(name string) []string {
	if strings.TrimSpace(name) == "" {
		return []string{MsgNameRequired}
	}
	return nil
}

// ValidPhone reports whether phone matches the accepted loose format. Empty is valid.
func ValidPhone(phone string) bool {
	return phone == "" || phonePattern.MatchString(phone)
}

// ValidateNewCustomer collects every rule violation for a new customer. The
// error return is reserved for lookup failures.
func ValidateNewCustomer(ctx context.Context, emails EmailChecker, in CustomerInput) ([]string, error) {
	errs := ValidateName(in.Name)
	if !ValidPhone(in.Phone) {
		errs = append(errs, MsgInvalidPhone)
	}
	exists, err := emails.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		errs = append(errs, MsgEmailExists)
	}
	return errs, nil
}

// ValidateNewProduct parses price and checks price and stock. The returned
// price is rounded to cents and only meaningful when no messages are returned.
func ValidateNewProduct(price string, stock *int) (decimal.Decimal, []string) {
	var errs []string

	parsed, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		errs = append(errs, MsgInvalidPrice)
	} else {
		parsed = parsed.Round(2)
		if !parsed.IsPositive() {
			errs = append(errs, MsgPriceNotPositive)
		}
	}
	if stock != nil && *stock < 0 {
		errs = append(errs, MsgNegativeStock)
	}
	return parsed, errs
}

// ComputeOrderTotal sums product prices exactly. An empty set totals zero.
func ComputeOrderTotal(products []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}
