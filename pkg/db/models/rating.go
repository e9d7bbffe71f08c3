package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a vendor's review of a supplier, tied to a delivered order.
type Rating struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID   uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;index"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5"`
	Comment    *string   `gorm:"column:comment"`
	Vendor     *User     `gorm:"foreignKey:VendorID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
