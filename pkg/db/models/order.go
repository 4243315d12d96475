package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order belongs to one customer and references one or more products through
// the order_products join table. TotalAmount is fixed at creation.
type Order struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID"`
	Products    []Product       `gorm:"many2many:order_products;joinForeignKey:OrderID;joinReferences:ProductID"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	OrderDate   time.Time       `gorm:"column:order_date;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderProductsTable is the many-to-many join table between orders and products.
const OrderProductsTable = "order_products"

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{&Customer{}, &Product{}, &Order{}}
}
