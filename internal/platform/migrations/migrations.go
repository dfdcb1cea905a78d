package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter. The composite index
// serves status-filtered listings in created_at order.
type orderRecord struct {
	ID                string          `gorm:"primaryKey;column:id;type:varchar(64)"`
	CustomerFirstName string          `gorm:"column:customer_first_name"`
	CustomerLastName  string          `gorm:"column:customer_last_name"`
	CustomerEmail     string          `gorm:"column:customer_email;index"`
	LineItems         []lineItem      `gorm:"column:line_items;type:jsonb;serializer:json"`
	TotalAmount       decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status            string          `gorm:"column:status;type:varchar(32);index:idx_orders_status_created,priority:1"`
	Version           int64           `gorm:"column:version;not null;default:1"`
	CreatedAt         time.Time       `gorm:"column:created_at;index:idx_orders_status_created,priority:2;index"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}
