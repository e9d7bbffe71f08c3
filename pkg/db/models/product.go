package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a supplier's ingredient listing.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID        uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name              string          `gorm:"column:name;not null"`
	Category          string          `gorm:"column:category;not null;index"`
	Description       *string         `gorm:"column:description"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Unit              string          `gorm:"column:unit;not null"`
	AvailableQuantity int             `gorm:"column:available_quantity;not null;check:available_quantity >= 0"`
	MinimumOrder      int             `gorm:"column:minimum_order;not null;default:1"`
	ExpiryDate        *time.Time      `gorm:"column:expiry_date"`
	ImageURL          *string         `gorm:"column:image_url"`
	Supplier          *User           `gorm:"foreignKey:SupplierID"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
