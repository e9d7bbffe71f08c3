package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/pkg/enums"
)

// User represents the canonical identity entity. Vendors run street food
// stalls and buy ingredients; suppliers sell them.
type User struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string              `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string              `gorm:"column:password_hash;not null"`
	Name         string              `gorm:"column:name;not null"`
	Phone        *string             `gorm:"column:phone"`
	Location     *string             `gorm:"column:location"`
	Role         enums.UserRole      `gorm:"column:role;type:text;not null"`
	StallName    *string             `gorm:"column:stall_name"`
	BusinessType *enums.BusinessType `gorm:"column:business_type;type:text"`
	Rating       *decimal.Decimal    `gorm:"column:rating;type:numeric(2,1)"`
	TotalRatings int                 `gorm:"column:total_ratings;not null;default:0"`
	LastLoginAt  *time.Time          `gorm:"column:last_login_at"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
