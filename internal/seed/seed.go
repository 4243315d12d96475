// Package seed loads the sample CRM dataset used for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/angelmondragon/crm-backend/internal/orders"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRow struct {
	Name, Email, Phone string
}

type productRow struct {
	Name  string
	Price string
	Stock int
}

var sampleCustomers = []customerRow{
	{"Alice Johnson", "alice@example.com", "+1234567890"},
	{"Bob Smith", "bob@example.com", "123-456-7890"},
	{"Carol Baker", "carol@example.com", "+14445556666"},
	{"Dave Wilson", "dave@example.com", "+15105551234"},
	{"Eve Cooper", "eve@example.com", "555-000-1212"},
}

var sampleProducts = []productRow{
	{"Laptop", "999.99", 10},
	{"Phone", "699.00", 15},
	{"Headphones", "149.99", 25},
	{"Monitor", "229.00", 8},
	{"Keyboard", "89.50", 30},
}

const (
	sampleOrders   = 5
	sampleDaysBack = 7
)

type Params struct {
	DB        *gorm.DB
	Customers customers.Service
	Orders    orders.Service
	Logger    *logger.Logger
	Now       func() time.Time
	// FakeSeed fixes the gofakeit source; zero picks a random one.
	FakeSeed uint64
}

type Seeder struct {
	db        *gorm.DB
	customers customers.Service
	orders    orders.Service
	logg      *logger.Logger
	now       func() time.Time
	faker     *gofakeit.Faker
}

type Options struct {
	FakeCustomers int
}

// Summary reports table sizes after seeding plus the generated customers
// that were rejected.
type Summary struct {
	Customers    int64
	Products     int64
	Orders       int64
	FakeRejected []string
}

func (s Summary) String() string {
	return fmt.Sprintf("Seed complete. Customers=%d, Products=%d, Orders=%d", s.Customers, s.Products, s.Orders)
}

func New(params Params) (*Seeder, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Seeder{
		db:        params.DB,
		customers: params.Customers,
		orders:    params.Orders,
		logg:      params.Logger,
		now:       now,
		faker:     gofakeit.New(params.FakeSeed),
	}, nil
}

// Run is idempotent for the sample rows: customers match by email, products by
// name, and orders are only created while the orders table is empty.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	conn := s.db.WithContext(ctx)

	seededCustomers, err := s.ensureCustomers(conn)
	if err != nil {
		return nil, err
	}
	seededProducts, err := s.ensureProducts(conn)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := conn.Model(&models.Order{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if existing == 0 {
		if err := s.createOrders(ctx, seededCustomers, seededProducts); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	if opts.FakeCustomers > 0 {
		rejected, err := s.fakeCustomers(ctx, opts.FakeCustomers)
		if err != nil {
			return nil, err
		}
		summary.FakeRejected = rejected
	}

	if err := conn.Model(&models.Customer{}).Count(&summary.Customers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := conn.Model(&models.Product{}).Count(&summary.Products).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if err := conn.Model(&models.Order{}).Count(&summary.Orders).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customers": summary.Customers,
		"products":  summary.Products,
		"orders":    summary.Orders,
	}), "seed complete")
	return summary, nil
}

func (s *Seeder) ensureCustomers(conn *gorm.DB) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(sampleCustomers))
	for _, row := range sampleCustomers {
		c := models.Customer{}
		err := conn.Where(models.Customer{Email: row.Email}).
			Attrs(models.Customer{Name: row.Name, Phone: row.Phone}).
			FirstOrCreate(&c).Error
		if err != nil {
			return nil, fmt.Errorf("seed customer %s: %w", row.Email, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Seeder) ensureProducts(conn *gorm.DB) ([]models.Product, error) {
	out := make([]models.Product, 0, len(sampleProducts))
	for _, row := range sampleProducts {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", row.Name, err)
		}
		p := models.Product{}
		err = conn.Where(models.Product{Name: row.Name}).
			Attrs(models.Product{Price: price, Stock: row.Stock}).
			FirstOrCreate(&p).Error
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", row.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// createOrders gives order i to customer i (mod n) with (i mod 3)+1 products,
// dated i days back.
func (s *Seeder) createOrders(ctx context.Context, cs []models.Customer, ps []models.Product) error {
	now := s.now()
	for i := 0; i < sampleOrders; i++ {
		customer := cs[i%len(cs)]
		count := min(len(ps), i%3+1)
		ids := make([]string, 0, count)
		for k := 0; k < count; k++ {
			ids = append(ids, ps[(i+k)%len(ps)].ID.String())
		}
		when := now.AddDate(0, 0, -(i % sampleDaysBack))

		res, err := s.orders.CreateOrder(ctx, orders.CreateOrderInput{
			CustomerID: customer.ID.String(),
			ProductIDs: ids,
			OrderDate:  &when,
		})
		if err != nil {
			return fmt.Errorf("seed order %d: %w", i, err)
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("seed order %d rejected: %v", i, res.Errors)
		}
	}
	return nil
}

func (s *Seeder) fakeCustomers(ctx context.Context, n int) ([]string, error) {
	rows := make([]customers.CreateInput, 0, n)
	for i := 0; i < n; i++ {
		phone := s.faker.Numerify("+1##########")
		rows = append(rows, customers.CreateInput{
			Name:  s.faker.Name(),
			Email: s.faker.Email(),
			Phone: &phone,
		})
	}
	res, err := s.customers.BulkCreateCustomers(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("fake customers: %w", err)
	}
	if len(res.Errors) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "rejected", len(res.Errors)), "some generated customers were rejected")
	}
	return res.Errors, nil
}
