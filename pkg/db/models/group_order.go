package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/pkg/enums"
)

// GroupOrder represents a group buy that vendors join to unlock a bulk
// discount before the deadline.
type GroupOrder struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID       uuid.UUID               `gorm:"column:creator_id;type:uuid;not null;index"`
	SupplierID      uuid.UUID               `gorm:"column:supplier_id;type:uuid;not null;index"`
	ProductID       uuid.UUID               `gorm:"column:product_id;type:uuid;not null"`
	TargetQuantity  int                     `gorm:"column:target_quantity;not null"`
	CurrentQuantity int                     `gorm:"column:current_quantity;not null;default:0"`
	UnitPrice       decimal.Decimal         `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountPrice   decimal.Decimal         `gorm:"column:discount_price;type:numeric(12,2);not null"`
	Status          enums.GroupOrderStatus  `gorm:"column:status;type:text;not null;default:'open'"`
	Deadline        time.Time               `gorm:"column:deadline;not null"`
	DeliveryAddress string                  `gorm:"column:delivery_address;not null"`
	Participants    []GroupOrderParticipant `gorm:"foreignKey:GroupOrderID;constraint:OnDelete:CASCADE"`
	Creator         *User                   `gorm:"foreignKey:CreatorID"`
	Supplier        *User                   `gorm:"foreignKey:SupplierID"`
	Product         *Product                `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// GroupOrderParticipant records one vendor's stake in a group order.
// A vendor joins a given group order at most once.
type GroupOrderParticipant struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupOrderID uuid.UUID `gorm:"column:group_order_id;type:uuid;not null;uniqueIndex:idx_group_order_vendor"`
	VendorID     uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_group_order_vendor"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Vendor       *User     `gorm:"foreignKey:VendorID"`
	JoinedAt     time.Time `gorm:"column:joined_at;autoCreateTime"`
}
