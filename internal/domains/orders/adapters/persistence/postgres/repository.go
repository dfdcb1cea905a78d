package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

const uniqueViolation = "23505"

// Repository persists orders in PostgreSQL. Status writes are conditional
// updates guarded by status and version.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB
// lifecycle and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID                string           `gorm:"primaryKey;column:id;type:varchar(64)"`
	CustomerFirstName string           `gorm:"column:customer_first_name"`
	CustomerLastName  string           `gorm:"column:customer_last_name"`
	CustomerEmail     string           `gorm:"column:customer_email;index"`
	LineItems         []lineItemRecord `gorm:"column:line_items;type:jsonb;serializer:json"`
	TotalAmount       decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2)"`
	Status            string           `gorm:"column:status;type:varchar(32);index:idx_orders_status_created,priority:1"`
	Version           int64            `gorm:"column:version;not null;default:1"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime:false;index:idx_orders_status_created,priority:2;index"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (orderRecord) TableName() string { return "orders" }

type lineItemRecord struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("cannot create nil order")
	}
	record := newOrderRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return toDomain(&record), nil
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, mapStoreError(err)
	}
	return toDomain(&record), nil
}

// UpdateStatus applies the change only while the row still carries the
// expected status and version, returning the committed row.
func (r *Repository) UpdateStatus(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	result := r.db.WithContext(ctx).
		Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ? AND version = ?", change.OrderID, string(change.ExpectedStatus), change.ExpectedVersion).
		Updates(map[string]any{
			"status":     string(change.NextStatus),
			"updated_at": change.UpdatedAt.UTC(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, mapStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrStaleWrite
	}
	return toDomain(&record), nil
}

// List returns one page of matching orders, newest first, and the total
// number of matches.
func (r *Repository) List(ctx context.Context, query ports.ListQuery) ([]*domain.Order, int, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	filter := listFilter(query)

	var total int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, mapStoreError(err)
	}

	tx := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC").
		Order("id ASC").
		Offset(max(query.Offset, 0))
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	var records []orderRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, 0, mapStoreError(err)
	}

	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, toDomain(&records[i]))
	}
	return orders, int(total), nil
}

func listFilter(query ports.ListQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if query.Status != nil {
			tx = tx.Where("status = ?", string(*query.Status))
		}
		if query.CreatedFrom != nil {
			tx = tx.Where("created_at >= ?", query.CreatedFrom.UTC())
		}
		if query.CreatedUntil != nil {
			tx = tx.Where("created_at < ?", query.CreatedUntil.UTC())
		}
		if term := strings.TrimSpace(query.Search); term != "" {
			pattern := "%" + escapeLike(term) + "%"
			tx = tx.Where(
				"(id ILIKE ? OR customer_first_name ILIKE ? OR customer_last_name ILIKE ? OR customer_email ILIKE ?)",
				pattern, pattern, pattern, pattern,
			)
		}
		return tx
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func mapStoreError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return fmt.Errorf("%w: %w", ports.ErrStoreTimeout, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ports.ErrDuplicateID, err)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%w: %w", ports.ErrDuplicateID, err)
	}
	return err
}

func newOrderRecord(o *domain.Order) orderRecord {
	items := make([]lineItemRecord, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		items = append(items, lineItemRecord{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return orderRecord{
		ID:                o.ID,
		CustomerFirstName: o.Customer.FirstName,
		CustomerLastName:  o.Customer.LastName,
		CustomerEmail:     o.Customer.Email,
		LineItems:         items,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		Version:           o.Version,
		CreatedAt:         o.CreatedAt.UTC(),
		UpdatedAt:         o.UpdatedAt.UTC(),
	}
}

func toDomain(rec *orderRecord) *domain.Order {
	items := make([]domain.LineItem, 0, len(rec.LineItems))
	for _, item := range rec.LineItems {
		items = append(items, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return &domain.Order{
		ID: rec.ID,
		Customer: domain.Customer{
			FirstName: rec.CustomerFirstName,
			LastName:  rec.CustomerLastName,
			Email:     rec.CustomerEmail,
		},
		LineItems:   items,
		TotalAmount: rec.TotalAmount,
		Status:      domain.Status(rec.Status),
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}
